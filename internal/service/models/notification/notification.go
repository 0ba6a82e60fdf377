package notification

import (
	"encoding/json"
	"fmt"
)

// Type classifies a notification for the consuming side.
type Type string

const (
	TypeOrder Type = "order"
)

// Notification is the fire-and-forget message emitted on order status
// changes. It is written to the outbox in the same transaction as the status
// change and published to RabbitMQ by the outbox worker, so delivery failures
// never roll back the order mutation.
type Notification struct {
	RecipientID int64  `json:"recipientId"`
	SenderID    int64  `json:"senderId"`
	Type        Type   `json:"type"`
	Message     string `json:"message"`
	OrderID     int64  `json:"orderId"`
}

// Payload serializes the notification for queue transport.
func (n Notification) Payload() ([]byte, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}

	return payload, nil
}
