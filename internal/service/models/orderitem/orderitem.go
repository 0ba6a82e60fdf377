package orderitem

import (
	"time"
)

// OrderItem represents a line within an order. UnitPriceCents is the price
// snapshot captured at purchase time; later catalog price changes never
// affect a placed order.
type OrderItem struct {
	ID             int64     `json:"id"`
	OrderID        int64     `json:"orderId"`
	ProductID      int64     `json:"productId"`
	Quantity       int       `json:"quantity"`
	ProductTitle   string    `json:"productTitle"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
