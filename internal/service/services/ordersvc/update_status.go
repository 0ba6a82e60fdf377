package ordersvc

import (
	"context"
	"fmt"
	"time"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/notification"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/service/models/outbox"
)

// UpdateOrderStatus is the admin transition along the fulfillment path.
// Moves are strictly forward: same-state and backward moves are rejected,
// and nothing leaves a terminal state. Reaching Delivered settles the
// payment. Refunded sits outside the fulfillment path: an admin may move a
// paid non-terminal order there, which is what later permits its deletion.
// The buyer and every distinct seller in the order are notified through
// the outbox in the same transaction.
func (s *OrderService) UpdateOrderStatus(
	ctx context.Context,
	act actor.Actor,
	orderID int64,
	newStatus order.Status,
) (*order.Order, error) {
	if !act.IsAdmin() {
		return nil, fmt.Errorf("%w: admins only", order.ErrForbidden)
	}

	var updated *order.Order

	err := s.runTx(ctx, func(ctx context.Context, work unitOfWork) error {
		o, err := work.OrderRepository().GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		if o.Status.Terminal() {
			return fmt.Errorf("%w: order already %s", order.ErrInvalidTransition, o.Status)
		}
		switch {
		case newStatus == order.StatusRefunded:
			if o.PaymentStatus != order.PaymentStatusCompleted {
				return fmt.Errorf(
					"%w: only paid orders can be refunded",
					order.ErrInvalidState,
				)
			}
		case !o.Status.CanAdvanceTo(newStatus):
			return fmt.Errorf(
				"%w: cannot move %s to %s",
				order.ErrInvalidTransition, o.Status, newStatus,
			)
		}

		o.Status = newStatus
		if newStatus == order.StatusDelivered {
			now := time.Now()
			o.DeliveredAt = &now
			o.PaymentStatus = order.PaymentStatusCompleted
			o.IsPaid = true
		}

		if err := work.OrderRepository().Update(ctx, o); err != nil {
			return err
		}

		if err := s.attachItems(ctx, work, []*order.Order{o}); err != nil {
			return err
		}

		if err := s.notifyStatusChange(ctx, work, act, o, newStatus); err != nil {
			return err
		}
		updated = o

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// notifyStatusChange queues one notification for the buyer and one for each
// distinct seller whose product appears in the order. Delivery is the outbox
// worker's problem; a queued message never blocks the status change.
func (s *OrderService) notifyStatusChange(
	ctx context.Context,
	work unitOfWork,
	act actor.Actor,
	o *order.Order,
	newStatus order.Status,
) error {
	err := s.enqueueNotification(ctx, work, notification.Notification{
		RecipientID: o.BuyerID,
		SenderID:    act.ID,
		Type:        notification.TypeOrder,
		Message:     fmt.Sprintf("Your order status has been changed to %s", newStatus),
		OrderID:     o.ID,
	})
	if err != nil {
		return err
	}

	sellerByProduct, err := s.sellersForItems(ctx, work, o.OrderItems)
	if err != nil {
		return err
	}

	for _, sellerID := range o.SellerIDs(sellerByProduct) {
		err := s.enqueueNotification(ctx, work, notification.Notification{
			RecipientID: sellerID,
			SenderID:    act.ID,
			Type:        notification.TypeOrder,
			Message:     fmt.Sprintf("An order containing your product has been marked as %s", newStatus),
			OrderID:     o.ID,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *OrderService) enqueueNotification(
	ctx context.Context,
	work unitOfWork,
	n notification.Notification,
) error {
	payload, err := n.Payload()
	if err != nil {
		return err
	}

	now := time.Now()

	return work.OutboxRepository().Insert(ctx, outbox.OutboxMessage{
		QueueName:   s.notificationsQueue,
		RoutingKey:  s.notificationsQueue,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  s.outboxMaxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	})
}
