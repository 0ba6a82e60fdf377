package restock

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/quickbasket/order-svc/internal/dal/interfaces/iproduct"
	"github.com/quickbasket/order-svc/internal/dal/interfaces/irestock"
	"github.com/spf13/viper"
)

// Worker retries stock restorations that failed during order cancellation
// or deletion. Entries past their retry budget are logged and dropped so a
// poisoned row cannot wedge the queue.
type Worker struct {
	restockRepo  irestock.Repository
	productRepo  iproduct.Repository
	pollInterval time.Duration
	batchSize    int
	stopCh       chan struct{}
}

// NewWorker creates a new restock worker.
func NewWorker(
	restockRepo irestock.Repository,
	productRepo iproduct.Repository,
) *Worker {
	pollIntervalSeconds := viper.GetInt("restock.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 15
	}

	batchSize := viper.GetInt("restock.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	return &Worker{
		restockRepo:  restockRepo,
		productRepo:  productRepo,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		stopCh:       make(chan struct{}),
	}
}

// Start begins processing pending restorations.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Restock worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Restock worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Restock worker stopped")

			return
		case <-ticker.C:
			w.processEntries(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// processEntries retries pending stock restorations.
func (w *Worker) processEntries(ctx context.Context) {
	entries, err := w.restockRepo.GetPending(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending restock entries", "error", err)

		return
	}

	if len(entries) == 0 {
		return
	}

	slog.Info("Processing restock entries", "count", len(entries))

	for _, entry := range entries {
		err := w.productRepo.IncrementStock(ctx, entry.ProductID, entry.Quantity)
		if err != nil {
			newRetryCount := entry.RetryCount + 1

			if newRetryCount >= entry.MaxRetries {
				slog.Error("Restock entry exhausted its retries, dropping",
					"restock_id", entry.ID,
					"order_id", entry.OrderID,
					"product_id", entry.ProductID,
					"quantity", entry.Quantity,
					"error", err,
				)

				if err := w.restockRepo.Delete(ctx, entry.ID); err != nil {
					slog.Error("Failed to drop exhausted restock entry", "restock_id", entry.ID, "error", err)
				}

				continue
			}

			backoffSeconds := math.Pow(2, float64(newRetryCount)) * 30
			nextRetryAt := time.Now().Add(time.Duration(backoffSeconds) * time.Second)

			slog.Warn("Failed to restore stock, will retry",
				"restock_id", entry.ID,
				"product_id", entry.ProductID,
				"retry_count", newRetryCount,
				"next_retry", nextRetryAt,
				"error", err,
			)

			if err := w.restockRepo.UpdateRetry(ctx, entry.ID, newRetryCount, err.Error(), nextRetryAt); err != nil {
				slog.Error("Failed to update restock retry information", "restock_id", entry.ID, "error", err)
			}
		} else {
			if err := w.restockRepo.Delete(ctx, entry.ID); err != nil {
				slog.Error("Failed to delete restock entry after successful restore",
					"restock_id", entry.ID,
					"error", err,
				)
			} else {
				slog.Info("Stock restored from restock queue",
					"restock_id", entry.ID,
					"product_id", entry.ProductID,
					"quantity", entry.Quantity,
				)
			}
		}
	}
}
