package iproduct

import (
	"context"

	"github.com/quickbasket/order-svc/internal/service/models/product"
)

// Repository is the catalog store adapter. Stock mutation discipline is
// "conditional decrement, unconditional increment": the decrement carries
// the stock >= quantity guard and is the sole correctness boundary against
// concurrent over-selling.
type Repository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]product.Product, error)

	// DecrementStock subtracts quantity from the product's stock only if
	// enough stock remains. It reports false when the guard rejected the
	// update; the product row is left untouched in that case.
	DecrementStock(ctx context.Context, productID int64, quantity int) (bool, error)

	// IncrementStock adds quantity back to the product's stock.
	IncrementStock(ctx context.Context, productID int64, quantity int) error
}
