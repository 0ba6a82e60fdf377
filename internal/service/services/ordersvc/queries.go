package ordersvc

import (
	"context"
	"fmt"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/service/models/orderitem"
)

// GetOrder returns a single order with its items. Only the buyer that placed
// the order and admins may read it.
func (s *OrderService) GetOrder(
	ctx context.Context,
	act actor.Actor,
	orderID int64,
) (*order.Order, error) {
	var result *order.Order

	err := s.runStore(ctx, func(ctx context.Context, work unitOfWork) error {
		o, err := work.OrderRepository().GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		if !act.IsAdmin() && !act.Owns(o.BuyerID) {
			return fmt.Errorf("%w: not your order", order.ErrForbidden)
		}

		if err := s.attachItems(ctx, work, []*order.Order{o}); err != nil {
			return err
		}
		result = o

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListMyOrders returns the acting buyer's orders, newest first.
func (s *OrderService) ListMyOrders(
	ctx context.Context,
	act actor.Actor,
) ([]order.Order, error) {
	if !act.IsBuyer() {
		return nil, fmt.Errorf("%w: buyer listing requires a buyer", order.ErrForbidden)
	}

	var result []order.Order

	err := s.runStore(ctx, func(ctx context.Context, work unitOfWork) error {
		orders, err := work.OrderRepository().Query(ctx, &order.QueryOrdersModel{
			BuyerIds: []int64{act.ID},
			SortBy:   "createdAt",
			SortDesc: true,
		})
		if err != nil {
			return err
		}

		if err := s.attachItemsToAll(ctx, work, orders); err != nil {
			return err
		}
		result = orders

		return nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []order.Order{}
	}

	return result, nil
}

// ListOrders is the admin listing with filters, sorting and pagination.
// It returns the page of orders and the total count of matches.
func (s *OrderService) ListOrders(
	ctx context.Context,
	act actor.Actor,
	query *order.QueryOrdersModel,
) ([]order.Order, int64, error) {
	if !act.IsAdmin() {
		return nil, 0, fmt.Errorf("%w: admins only", order.ErrForbidden)
	}

	var (
		result []order.Order
		total  int64
	)

	err := s.runStore(ctx, func(ctx context.Context, work unitOfWork) error {
		count, err := work.OrderRepository().Count(ctx, query)
		if err != nil {
			return err
		}

		orders, err := work.OrderRepository().Query(ctx, query)
		if err != nil {
			return err
		}

		if err := s.attachItemsToAll(ctx, work, orders); err != nil {
			return err
		}
		result = orders
		total = count

		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	if result == nil {
		result = []order.Order{}
	}

	return result, total, nil
}

// ListSellerOrders returns orders containing the acting seller's products,
// with each order's items narrowed down to that seller's own lines.
func (s *OrderService) ListSellerOrders(
	ctx context.Context,
	act actor.Actor,
) ([]order.Order, error) {
	if !act.IsSeller() {
		return nil, fmt.Errorf("%w: seller listing requires a seller", order.ErrForbidden)
	}

	var result []order.Order

	err := s.runStore(ctx, func(ctx context.Context, work unitOfWork) error {
		orders, err := work.OrderRepository().Query(ctx, &order.QueryOrdersModel{
			SellerID: act.ID,
			SortBy:   "createdAt",
			SortDesc: true,
		})
		if err != nil {
			return err
		}

		if err := s.attachItemsToAll(ctx, work, orders); err != nil {
			return err
		}

		for i := range orders {
			owned, err := s.ownedItems(ctx, work, act.ID, orders[i].OrderItems)
			if err != nil {
				return err
			}
			orders[i].OrderItems = owned
		}
		result = orders

		return nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []order.Order{}
	}

	return result, nil
}

// ownedItems filters items down to those whose product belongs to sellerID.
func (s *OrderService) ownedItems(
	ctx context.Context,
	work unitOfWork,
	sellerID int64,
	items []orderitem.OrderItem,
) ([]orderitem.OrderItem, error) {
	sellerByProduct, err := s.sellersForItems(ctx, work, items)
	if err != nil {
		return nil, err
	}

	owned := make([]orderitem.OrderItem, 0, len(items))
	for _, item := range items {
		if sellerByProduct[item.ProductID] == sellerID {
			owned = append(owned, item)
		}
	}

	return owned, nil
}

// sellersForItems resolves the owning seller of every product in items.
func (s *OrderService) sellersForItems(
	ctx context.Context,
	work unitOfWork,
	items []orderitem.OrderItem,
) (map[int64]int64, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := work.ProductRepository().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	sellerByProduct := make(map[int64]int64, len(products))
	for _, p := range products {
		sellerByProduct[p.ID] = p.SellerID
	}

	return sellerByProduct, nil
}

func (s *OrderService) attachItems(
	ctx context.Context,
	work unitOfWork,
	orders []*order.Order,
) error {
	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := work.OrderItemRepository().Query(ctx, &orderitem.QueryOrderItemsModel{
		OrderIds: ids,
	})
	if err != nil {
		return err
	}

	for _, o := range orders {
		for _, item := range items {
			if item.OrderID == o.ID {
				o.OrderItems = append(o.OrderItems, item)
			}
		}
	}

	return nil
}

func (s *OrderService) attachItemsToAll(
	ctx context.Context,
	work unitOfWork,
	orders []order.Order,
) error {
	if len(orders) == 0 {
		return nil
	}

	refs := make([]*order.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}

	return s.attachItems(ctx, work, refs)
}
