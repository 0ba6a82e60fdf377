package ordersvc

import (
	"context"
	"fmt"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/notification"
	"github.com/quickbasket/order-svc/internal/service/models/order"
)

// DeleteOrder removes an order record entirely. Admin only, and a paid
// order must be refunded first. Stock is restored before the record goes
// away, behind the same stock_restored claim the cancel path uses, so a
// concurrent cancel or second delete cannot restore twice. The buyer is
// notified through the outbox.
func (s *OrderService) DeleteOrder(
	ctx context.Context,
	act actor.Actor,
	orderID int64,
) error {
	if !act.IsAdmin() {
		return fmt.Errorf("%w: only admins delete orders", order.ErrForbidden)
	}

	var target *order.Order

	err := s.runStore(ctx, func(ctx context.Context, work unitOfWork) error {
		o, err := work.OrderRepository().GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		if o.PaymentStatus == order.PaymentStatusCompleted && o.Status != order.StatusRefunded {
			return fmt.Errorf(
				"%w: cannot delete paid order without proper refund",
				order.ErrInvalidState,
			)
		}

		if err := s.attachItems(ctx, work, []*order.Order{o}); err != nil {
			return err
		}
		target = o

		return nil
	})
	if err != nil {
		return err
	}

	// Already-cancelled orders restored their stock at cancellation time.
	// The conditional claim makes sure a restoration that commits between
	// the read above and this point is not repeated.
	if !target.StockRestored {
		var claimed bool
		err := s.runStore(ctx, func(ctx context.Context, work unitOfWork) error {
			changed, err := work.OrderRepository().MarkStockRestored(ctx, orderID)
			if err != nil {
				return err
			}
			claimed = changed

			return nil
		})
		if err != nil {
			return err
		}

		if claimed {
			s.restoreStock(ctx, target)
		}
	}

	return s.runTx(ctx, func(ctx context.Context, work unitOfWork) error {
		if err := work.OrderRepository().Delete(ctx, orderID); err != nil {
			return err
		}

		return s.enqueueNotification(ctx, work, notification.Notification{
			RecipientID: target.BuyerID,
			SenderID:    act.ID,
			Type:        notification.TypeOrder,
			Message:     fmt.Sprintf("Your order with ID %d has been deleted by admin.", orderID),
			OrderID:     orderID,
		})
	})
}
