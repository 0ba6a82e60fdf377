package restock

import "time"

// Entry is a stock restoration that failed during cancellation or deletion
// and was queued for retry instead of being dropped. Quantity is added back
// to the product's stock by the restock worker.
type Entry struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	Quantity    int
	RetryCount  int
	MaxRetries  int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NextRetryAt time.Time
}
