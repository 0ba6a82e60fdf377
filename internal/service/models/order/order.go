package order

import (
	"errors"
	"time"

	"github.com/quickbasket/order-svc/internal/service/models/orderitem"
)

// Failure taxonomy of the order lifecycle. Handlers map these onto HTTP
// status codes; repositories wrap lower-level errors into ErrStoreUnavailable.
var (
	ErrNotFound          = errors.New("order not found")
	ErrForbidden         = errors.New("operation not permitted for this actor")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrInvalidState      = errors.New("order state does not permit this operation")
	ErrInsufficientStock = errors.New("insufficient product stock")
	ErrTotalMismatch     = errors.New("total amount mismatch")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// ShippingInfo is the delivery address captured at order creation.
// It is immutable for the lifetime of the order.
type ShippingInfo struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

// Order represents an order in the system.
type Order struct {
	ID            int64                 `json:"id"`
	BuyerID       int64                 `json:"buyerId"`
	ShippingInfo  ShippingInfo          `json:"shippingInfo"`
	PaymentMethod PaymentMethod         `json:"paymentMethod"`
	PaymentStatus PaymentStatus         `json:"paymentStatus"`
	Status        Status                `json:"orderStatus"`
	TotalCents    int64                 `json:"totalCents"`
	IsPaid        bool                  `json:"isPaid"`
	StockRestored bool                  `json:"-"`
	DeliveredAt   *time.Time            `json:"deliveredAt"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
	OrderItems    []orderitem.OrderItem `json:"orderItems"`
}

// TotalOf reproduces the order total from its items. The declared total of a
// creation request must match this exactly; the engine never corrects it.
func TotalOf(items []orderitem.OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += int64(item.Quantity) * item.UnitPriceCents
	}

	return total
}

// SellerIDs returns the distinct sellers whose products appear in the order,
// resolved through the product-to-seller mapping passed in.
func (o *Order) SellerIDs(sellerByProduct map[int64]int64) []int64 {
	seen := make(map[int64]struct{}, len(o.OrderItems))
	sellers := make([]int64, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		sellerID, ok := sellerByProduct[item.ProductID]
		if !ok {
			continue
		}
		if _, dup := seen[sellerID]; dup {
			continue
		}
		seen[sellerID] = struct{}{}
		sellers = append(sellers, sellerID)
	}

	return sellers
}
