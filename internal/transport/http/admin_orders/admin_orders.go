package adminorders

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/schema"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/transport/http/middleware/auth"
	"github.com/quickbasket/order-svc/internal/transport/http/response"
)

const defaultPageSize = 20

// service is an interface for the service layer.
type service interface {
	ListOrders(
		ctx context.Context,
		act actor.Actor,
		query *order.QueryOrdersModel,
	) ([]order.Order, int64, error)
}

// queryOrdersRequest represents an admin order listing query.
type queryOrdersRequest struct {
	Ids       []int64 `schema:"ids,omitempty"`
	BuyerIds  []int64 `schema:"buyerIds,omitempty"`
	Status    string  `schema:"status,omitempty"`
	StartDate string  `schema:"startDate,omitempty"`
	EndDate   string  `schema:"endDate,omitempty"`
	SortBy    string  `schema:"sortBy,omitempty"`
	SortDesc  bool    `schema:"sortDesc,omitempty"`
	Page      int     `schema:"page,omitempty"`
	Limit     int     `schema:"limit,omitempty"`
}

// toModel converts queryOrdersRequest to order.QueryOrdersModel.
func (q *queryOrdersRequest) toModel() (*order.QueryOrdersModel, error) {
	model := &order.QueryOrdersModel{
		Ids:      q.Ids,
		BuyerIds: q.BuyerIds,
		SortBy:   q.SortBy,
		SortDesc: q.SortDesc,
	}

	if q.Status != "" {
		status, err := order.ParseStatus(q.Status)
		if err != nil {
			return nil, err
		}

		model.Status = status
	}

	if q.StartDate != "" {
		start, err := time.Parse(time.RFC3339, q.StartDate)
		if err != nil {
			return nil, err
		}

		model.StartDate = &start
	}

	if q.EndDate != "" {
		end, err := time.Parse(time.RFC3339, q.EndDate)
		if err != nil {
			return nil, err
		}

		model.EndDate = &end
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	page := q.Page
	if page <= 0 {
		page = 1
	}

	model.Limit = limit
	model.Offset = (page - 1) * limit

	return model, nil
}

// ListOrders handles the admin order listing request.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	act, ok := auth.FromContext(r.Context())
	if !ok {
		response.JSON(w, http.StatusUnauthorized, response.Envelope{
			Success: false,
			Message: "Authentication required",
		})

		return
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		response.BadRequest(w, "Invalid query parameters")
		slog.Error("Error decoding admin order query", "error", err)

		return
	}

	model, err := query.toModel()
	if err != nil {
		response.BadRequest(w, err.Error())

		return
	}

	orders, total, err := service.ListOrders(r.Context(), act, model)
	if err != nil {
		response.Error(w, err)
		slog.Error("Error listing orders", "error", err)

		return
	}

	page := model.Offset/model.Limit + 1
	pages := int((total + int64(model.Limit) - 1) / int64(model.Limit))

	response.JSON(w, http.StatusOK, response.Envelope{
		Success: true,
		Orders:  orders,
		Total:   &total,
		Page:    &page,
		Pages:   &pages,
	})
}
