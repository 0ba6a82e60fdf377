package order

import "fmt"

// Status is the order-level status state machine:
// Processing -> Shipped -> Delivered, with Cancelled reachable from any
// non-terminal state and Refunded reachable administratively.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
	StatusRefunded   Status = "Refunded"
)

// forwardRank orders the fulfillment path. Statuses outside the path have no
// rank and can never be a target of an admin forward transition.
var forwardRank = map[Status]int{
	StatusProcessing: 0,
	StatusShipped:    1,
	StatusDelivered:  2,
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, raw)
	}
}

// Terminal reports whether no further transition is permitted out of s.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

// CanAdvanceTo reports whether s may move forward to next along the
// fulfillment path. Same-state and backward moves are rejected.
func (s Status) CanAdvanceTo(next Status) bool {
	from, ok := forwardRank[s]
	if !ok {
		return false
	}
	to, ok := forwardRank[next]
	if !ok {
		return false
	}

	return to > from
}

// Cancellable reports whether a cancel is permitted from s.
func (s Status) Cancellable() bool {
	return !s.Terminal()
}

// PaymentMethod is how the buyer pays for the order.
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodOnline PaymentMethod = "Online"
)

func (m PaymentMethod) String() string {
	return string(m)
}

// ParsePaymentMethod validates a raw payment method value.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(raw) {
	case PaymentMethodCOD, PaymentMethodOnline:
		return PaymentMethod(raw), nil
	default:
		return "", fmt.Errorf("unknown payment method %q", raw)
	}
}

// PaymentStatus tracks the payment side of the order.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

func (s PaymentStatus) String() string {
	return string(s)
}

// ParsePaymentStatus validates a raw payment status value.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch PaymentStatus(raw) {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return PaymentStatus(raw), nil
	default:
		return "", fmt.Errorf("unknown payment status %q", raw)
	}
}

// DerivePayment returns the initial payment status and paid flag for a new
// order: cash on delivery is treated as settled, online payment starts pending.
func DerivePayment(method PaymentMethod) (PaymentStatus, bool) {
	if method == PaymentMethodOnline {
		return PaymentStatusPending, false
	}

	return PaymentStatusCompleted, true
}
