package ordersvc

import (
	"context"
	"fmt"
	"time"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/order"
)

// SellerStatusUpdate is one per-product status request from a seller.
type SellerStatusUpdate struct {
	ProductID int64
	Status    order.Status
}

// sellerStatuses are the values a seller may request.
var sellerStatuses = map[order.Status]struct{}{
	order.StatusProcessing: {},
	order.StatusShipped:    {},
	order.StatusDelivered:  {},
	order.StatusCancelled:  {},
}

// SellerUpdateOrderStatus applies a seller's per-product status updates to
// an order. Updates referencing products the seller does not own are
// silently skipped; if nothing matched, the seller has no business with this
// order. The order tracks a single status, so the last matching update wins.
func (s *OrderService) SellerUpdateOrderStatus(
	ctx context.Context,
	act actor.Actor,
	orderID int64,
	updates []SellerStatusUpdate,
) (*order.Order, error) {
	if !act.IsSeller() {
		return nil, fmt.Errorf("%w: sellers only", order.ErrForbidden)
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no updates provided", order.ErrInvalidState)
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

		if err := s.attachItems(ctx, work, []*order.Order{o}); err != nil {
			return err
		}

		sellerByProduct, err := s.sellersForItems(ctx, work, o.OrderItems)
		if err != nil {
			return err
		}

		ownsProduct := func(productID int64) bool {
			for _, item := range o.OrderItems {
				if item.ProductID == productID && sellerByProduct[productID] == act.ID {
					return true
				}
			}

			return false
		}

		matched := false
		for _, update := range updates {
			if _, ok := sellerStatuses[update.Status]; !ok {
				return fmt.Errorf("%w: invalid status %s", order.ErrInvalidTransition, update.Status)
			}

			if !ownsProduct(update.ProductID) {
				continue
			}

			o.Status = update.Status
			matched = true
		}

		if !matched {
			return fmt.Errorf(
				"%w: no products in this order belong to you",
				order.ErrForbidden,
			)
		}

		if o.Status == order.StatusDelivered {
			now := time.Now()
			o.DeliveredAt = &now
		}

		if err := work.OrderRepository().Update(ctx, o); err != nil {
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
