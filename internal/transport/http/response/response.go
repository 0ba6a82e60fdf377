package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quickbasket/order-svc/internal/service/models/order"
)

// Envelope is the JSON shape of every response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Order   any    `json:"order,omitempty"`
	Orders  any    `json:"orders,omitempty"`
	Data    any    `json:"data,omitempty"`
	Total   *int64 `json:"total,omitempty"`
	Page    *int   `json:"page,omitempty"`
	Pages   *int   `json:"pages,omitempty"`
}

// JSON writes the envelope with the given status code.
func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

// BadRequest writes a 400 failure envelope with the given message.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, Envelope{Success: false, Message: message})
}

// Error maps a lifecycle failure onto an HTTP status and writes the failure
// envelope. Unexpected errors become an opaque 500; internals never reach
// the wire.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong"

	switch {
	case errors.Is(err, order.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, order.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrInvalidState),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrTotalMismatch):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, order.ErrStoreUnavailable):
		message = "Service temporarily unavailable"
	}

	JSON(w, status, Envelope{Success: false, Message: message})
}
