package sellerorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/service/services/ordersvc"
	"github.com/quickbasket/order-svc/internal/transport/http/middleware/auth"
	"github.com/quickbasket/order-svc/internal/transport/http/response"
)

// service is an interface for the service layer.
type service interface {
	ListSellerOrders(ctx context.Context, act actor.Actor) ([]order.Order, error)
	SellerUpdateOrderStatus(
		ctx context.Context,
		act actor.Actor,
		orderID int64,
		updates []ordersvc.SellerStatusUpdate,
	) (*order.Order, error)
}

// itemInSellerUpdateRequest represents a per-product status in a seller update request.
type itemInSellerUpdateRequest struct {
	ProductID int64  `json:"productId" validate:"gt=0"`
	Status    string `json:"status"    validate:"required"`
}

// sellerUpdateRequest represents a seller status update request.
type sellerUpdateRequest struct {
	OrderID    int64                       `json:"orderId"    validate:"gt=0"`
	OrderItems []itemInSellerUpdateRequest `json:"orderItems" validate:"required,min=1,dive"`
}

var validate = validator.New()

// Validate validates the seller status update request.
func (r *sellerUpdateRequest) Validate() error {
	return validate.Struct(r)
}

// ListSellerOrders handles the seller order listing request.
func ListSellerOrders(w http.ResponseWriter, r *http.Request, service service) {
	act, ok := auth.FromContext(r.Context())
	if !ok {
		response.JSON(w, http.StatusUnauthorized, response.Envelope{
			Success: false,
			Message: "Authentication required",
		})

		return
	}

	orders, err := service.ListSellerOrders(r.Context(), act)
	if err != nil {
		response.Error(w, err)
		slog.Error("Error listing seller orders", "error", err, "sellerID", act.ID)

		return
	}

	response.JSON(w, http.StatusOK, response.Envelope{
		Success: true,
		Orders:  orders,
	})
}

// UpdateOrderStatus handles the seller per-product status update request.
func UpdateOrderStatus(w http.ResponseWriter, r *http.Request, service service) {
	act, ok := auth.FromContext(r.Context())
	if !ok {
		response.JSON(w, http.StatusUnauthorized, response.Envelope{
			Success: false,
			Message: "Authentication required",
		})

		return
	}

	req := sellerUpdateRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		slog.Error("Error decoding request body for seller update", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())

		return
	}

	updates := make([]ordersvc.SellerStatusUpdate, len(req.OrderItems))
	for i, item := range req.OrderItems {
		updates[i] = ordersvc.SellerStatusUpdate{
			ProductID: item.ProductID,
			Status:    order.Status(item.Status),
		}
	}

	updated, err := service.SellerUpdateOrderStatus(r.Context(), act, req.OrderID, updates)
	if err != nil {
		response.Error(w, err)
		slog.Error("Error updating order status by seller", "error", err, "orderID", req.OrderID)

		return
	}

	response.JSON(w, http.StatusOK, response.Envelope{
		Success: true,
		Message: "Order status updated successfully",
		Order:   updated,
	})
}
