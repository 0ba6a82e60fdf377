package irestock

import (
	"context"
	"time"

	"github.com/quickbasket/order-svc/internal/service/models/restock"
)

// Repository defines the interface for the stock-restoration retry queue.
type Repository interface {
	// Enqueue records a failed stock restoration for later retry
	Enqueue(ctx context.Context, entry restock.Entry) error

	// GetPending retrieves entries that are ready for retry
	GetPending(ctx context.Context, limit int) ([]restock.Entry, error)

	// Delete removes an entry after stock was restored
	Delete(ctx context.Context, id int64) error

	// UpdateRetry updates retry count and error information
	UpdateRetry(
		ctx context.Context,
		id int64,
		retryCount int,
		lastError string,
		nextRetryAt time.Time,
	) error
}
