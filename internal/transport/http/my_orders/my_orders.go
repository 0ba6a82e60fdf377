package myorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/transport/http/middleware/auth"
	"github.com/quickbasket/order-svc/internal/transport/http/response"
)

// service is an interface for the service layer.
type service interface {
	ListMyOrders(ctx context.Context, act actor.Actor) ([]order.Order, error)
}

// ListMyOrders handles the buyer order history request.
func ListMyOrders(w http.ResponseWriter, r *http.Request, service service) {
	act, ok := auth.FromContext(r.Context())
	if !ok {
		response.JSON(w, http.StatusUnauthorized, response.Envelope{
			Success: false,
			Message: "Authentication required",
		})

		return
	}

	orders, err := service.ListMyOrders(r.Context(), act)
	if err != nil {
		response.Error(w, err)
		slog.Error("Error listing buyer orders", "error", err, "buyerID", act.ID)

		return
	}

	response.JSON(w, http.StatusOK, response.Envelope{
		Success: true,
		Orders:  orders,
	})
}
