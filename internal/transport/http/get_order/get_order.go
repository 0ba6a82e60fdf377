package getorder

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/transport/http/middleware/auth"
	"github.com/quickbasket/order-svc/internal/transport/http/response"
)

// service is an interface for the service layer.
type service interface {
	GetOrder(ctx context.Context, act actor.Actor, orderID int64) (*order.Order, error)
}

// GetOrder handles the single order lookup request.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
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

	found, err := service.GetOrder(r.Context(), act, orderID)
	if err != nil {
		response.Error(w, err)
		slog.Error("Error getting order", "error", err, "orderID", orderID)

		return
	}

	response.JSON(w, http.StatusOK, response.Envelope{
		Success: true,
		Order:   found,
	})
}
