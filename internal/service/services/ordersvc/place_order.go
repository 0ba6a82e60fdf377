package ordersvc

import (
	"context"
	"fmt"
	"time"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/service/models/orderitem"
	"github.com/quickbasket/order-svc/internal/service/models/product"
)

// PlaceOrderItem is one requested line: the product, the quantity and the
// unit price as declared by the caller. The engine trusts the declared price
// snapshot but verifies the arithmetic against the declared total.
type PlaceOrderItem struct {
	ProductID      int64
	Quantity       int
	UnitPriceCents int64
}

// PlaceOrderModel carries the creation request into the engine.
type PlaceOrderModel struct {
	Items              []PlaceOrderItem
	ShippingInfo       order.ShippingInfo
	PaymentMethod      order.PaymentMethod
	DeclaredTotalCents int64
}

// PlaceOrder creates an order for the acting buyer. Stock verification,
// the total check, the order insert and the per-item conditional stock
// decrements all run inside one transaction: a failed decrement rolls back
// everything, so no partial decrement can ever be observed.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	act actor.Actor,
	model PlaceOrderModel,
) (*order.Order, error) {
	if !act.IsBuyer() {
		return nil, fmt.Errorf("%w: only buyers place orders", order.ErrForbidden)
	}
	if len(model.Items) == 0 {
		return nil, fmt.Errorf("%w: no items to order", order.ErrInvalidState)
	}
	for _, item := range model.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", order.ErrInvalidState)
		}
	}

	var created *order.Order

	err := s.runTx(ctx, func(ctx context.Context, work unitOfWork) error {
		products, err := s.fetchProducts(ctx, work, model.Items)
		if err != nil {
			return err
		}

		var computedTotal int64
		for _, item := range model.Items {
			p := products[item.ProductID]
			if item.Quantity > p.Stock {
				return fmt.Errorf("%w: %s", order.ErrInsufficientStock, p.Title)
			}
			computedTotal += int64(item.Quantity) * item.UnitPriceCents
		}

		if computedTotal != model.DeclaredTotalCents {
			return order.ErrTotalMismatch
		}

		now := time.Now()
		paymentStatus, isPaid := order.DerivePayment(model.PaymentMethod)

		inserted, err := work.OrderRepository().Insert(ctx, order.Order{
			BuyerID:       act.ID,
			ShippingInfo:  model.ShippingInfo,
			PaymentMethod: model.PaymentMethod,
			PaymentStatus: paymentStatus,
			Status:        order.StatusProcessing,
			TotalCents:    computedTotal,
			IsPaid:        isPaid,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return err
		}

		items := make([]orderitem.OrderItem, len(model.Items))
		for i, item := range model.Items {
			items[i] = orderitem.OrderItem{
				OrderID:        inserted.ID,
				ProductID:      item.ProductID,
				Quantity:       item.Quantity,
				ProductTitle:   products[item.ProductID].Title,
				UnitPriceCents: item.UnitPriceCents,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
		}
		items, err = work.OrderItemRepository().BulkInsert(ctx, items)
		if err != nil {
			return err
		}
		inserted.OrderItems = items

		// The guarded decrement is the correctness boundary against two
		// concurrent orders over-selling the same product.
		for _, item := range model.Items {
			ok, err := work.ProductRepository().DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", order.ErrInsufficientStock, products[item.ProductID].Title)
			}
		}

		created = &inserted

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// fetchProducts loads the products referenced by the request and fails with
// ErrNotFound when any reference is invalid.
func (s *OrderService) fetchProducts(
	ctx context.Context,
	work unitOfWork,
	items []PlaceOrderItem,
) (map[int64]product.Product, error) {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := work.ProductRepository().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, item := range items {
		if _, ok := byID[item.ProductID]; !ok {
			return nil, fmt.Errorf("%w: product %d", order.ErrNotFound, item.ProductID)
		}
	}

	return byID, nil
}
