package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/service/models/restock"
)

// CancelOrder cancels a non-terminal order on behalf of its buyer or an
// admin and restores the ordered stock. The status flip and the
// stock_restored claim happen in one conditional update, so a concurrent
// second cancel cannot restore stock twice. Restoration itself is
// best-effort per item: a failed increment is logged and queued for retry,
// never allowed to block the cancellation the caller sees.
func (s *OrderService) CancelOrder(
	ctx context.Context,
	act actor.Actor,
	orderID int64,
) (*order.Order, error) {
	var cancelled *order.Order

	err := s.runTx(ctx, func(ctx context.Context, work unitOfWork) error {
		o, err := work.OrderRepository().GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		if !act.IsAdmin() && !act.Owns(o.BuyerID) {
			return fmt.Errorf("%w: you cannot cancel this order", order.ErrForbidden)
		}
		if !o.Status.Cancellable() {
			return fmt.Errorf("%w: order already %s", order.ErrInvalidTransition, o.Status)
		}

		changed, err := work.OrderRepository().MarkCancelled(ctx, orderID)
		if err != nil {
			return err
		}
		if !changed {
			// Lost the race to another cancel or a concurrent terminal move.
			return fmt.Errorf("%w: order state changed concurrently", order.ErrInvalidTransition)
		}

		if err := s.attachItems(ctx, work, []*order.Order{o}); err != nil {
			return err
		}

		o.Status = order.StatusCancelled
		o.PaymentStatus = order.PaymentStatusFailed
		o.DeliveredAt = nil
		o.StockRestored = true
		cancelled = o

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.restoreStock(ctx, cancelled)

	return cancelled, nil
}

// restoreStock increments each item's product stock by its ordered
// quantity. Items are independent: one failure does not stop the loop, the
// failed restoration is queued for the restock worker instead.
func (s *OrderService) restoreStock(ctx context.Context, o *order.Order) {
	work := s.newUOW()

	for _, item := range o.OrderItems {
		err := work.ProductRepository().IncrementStock(ctx, item.ProductID, item.Quantity)
		if err == nil {
			continue
		}

		slog.Error("Failed to restore stock, queueing for retry",
			"order_id", o.ID,
			"product_id", item.ProductID,
			"quantity", item.Quantity,
			"error", err,
		)

		now := time.Now()
		entry := restock.Entry{
			OrderID:     o.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			MaxRetries:  s.restockMaxRetries,
			LastError:   err.Error(),
			CreatedAt:   now,
			UpdatedAt:   now,
			NextRetryAt: now,
		}
		if qErr := work.RestockRepository().Enqueue(ctx, entry); qErr != nil {
			slog.Error("Failed to queue stock restoration",
				"order_id", o.ID,
				"product_id", item.ProductID,
				"error", qErr,
			)
		}
	}
}
