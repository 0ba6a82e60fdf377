package outbox

import (
	"time"
)

// OutboxMessage is a queued publication to RabbitMQ. Messages are inserted
// in the same transaction as the order mutation that produced them and
// published asynchronously by the outbox worker.
type OutboxMessage struct {
	ID           int64
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}
