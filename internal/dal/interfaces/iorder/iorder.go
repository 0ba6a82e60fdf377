package iorder

import (
	"context"

	"github.com/quickbasket/order-svc/internal/service/models/order"
)

// Repository is the interface for the order postgres repository.
type Repository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	GetByID(ctx context.Context, id int64) (*order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	Count(ctx context.Context, filter *order.QueryOrdersModel) (int64, error)

	// Update persists the mutable lifecycle fields of the order: status,
	// payment status, paid flag and delivery timestamp.
	Update(ctx context.Context, o *order.Order) error

	// MarkCancelled atomically moves a non-terminal order to Cancelled and
	// claims the stock restoration. It reports false when no row changed,
	// i.e. the order was already terminal or cancelled concurrently.
	MarkCancelled(ctx context.Context, id int64) (bool, error)

	// MarkStockRestored claims the stock restoration for an order that has
	// not restored yet. It reports false when the claim is already taken.
	MarkStockRestored(ctx context.Context, id int64) (bool, error)

	Delete(ctx context.Context, id int64) error
}
