package updatestatus

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/transport/http/middleware/auth"
	"github.com/quickbasket/order-svc/internal/transport/http/response"
)

// service is an interface for the service layer.
type service interface {
	UpdateOrderStatus(
		ctx context.Context,
		act actor.Actor,
		orderID int64,
		newStatus order.Status,
	) (*order.Order, error)
}

// updateStatusRequest represents a status update request.
type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

var validate = validator.New()

// Validate validates the status update request.
func (r *updateStatusRequest) Validate() error {
	return validate.Struct(r)
}

// UpdateOrderStatus handles the admin status update request.
func UpdateOrderStatus(w http.ResponseWriter, r *http.Request, service service) {
	act, ok := auth.FromContext(r.Context())
	if !ok {
		response.JSON(w, http.StatusUnauthorized, response.Envelope{
			Success: false,
			Message: "Authentication required",
		})

		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid order id")

		return
	}

	req := updateStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		slog.Error("Error decoding request body for status update", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())

		return
	}

	newStatus, err := order.ParseStatus(req.Status)
	if err != nil {
		response.BadRequest(w, err.Error())

		return
	}

	updated, err := service.UpdateOrderStatus(r.Context(), act, orderID, newStatus)
	if err != nil {
		response.Error(w, err)
		slog.Error("Error updating order status", "error", err, "orderID", orderID)

		return
	}

	response.JSON(w, http.StatusOK, response.Envelope{
		Success: true,
		Message: "Order status updated successfully",
		Order:   updated,
	})
}
