package deleteorder

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/transport/http/middleware/auth"
	"github.com/quickbasket/order-svc/internal/transport/http/response"
)

// service is an interface for the service layer.
type service interface {
	DeleteOrder(ctx context.Context, act actor.Actor, orderID int64) error
}

// DeleteOrder handles the admin order deletion request.
func DeleteOrder(w http.ResponseWriter, r *http.Request, service service) {
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

	if err := service.DeleteOrder(r.Context(), act, orderID); err != nil {
		response.Error(w, err)
		slog.Error("Error deleting order", "error", err, "orderID", orderID)

		return
	}

	response.JSON(w, http.StatusOK, response.Envelope{
		Success: true,
		Message: "Order deleted successfully",
	})
}
