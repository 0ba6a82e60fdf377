package iorderitem

import (
	"context"

	"github.com/quickbasket/order-svc/internal/service/models/orderitem"
)

// Repository is the interface for the order item postgres repository.
type Repository interface {
	BulkInsert(ctx context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error)
	Query(ctx context.Context, filter *orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error)
}
