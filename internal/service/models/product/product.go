package product

import "time"

// Product is the catalog record as consumed by the order lifecycle.
// Stock is the only field the lifecycle ever writes: a conditional decrement
// on placement and an unconditional increment on cancellation or deletion.
type Product struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	PriceCents int64     `json:"priceCents"`
	Stock      int       `json:"stock"`
	SellerID   int64     `json:"sellerId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
