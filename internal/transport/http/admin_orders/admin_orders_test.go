package adminorders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/transport/http/middleware/auth"
)

type stubService struct {
	gotQuery *order.QueryOrdersModel
	orders   []order.Order
	total    int64
	err      error
}

func (s *stubService) ListOrders(
	_ context.Context,
	_ actor.Actor,
	query *order.QueryOrdersModel,
) ([]order.Order, int64, error) {
	s.gotQuery = query

	return s.orders, s.total, s.err
}

func doRequest(svc *stubService, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(auth.WithActor(req.Context(), actor.Admin(1)))
	rec := httptest.NewRecorder()
	ListOrders(rec, req, svc)

	return rec
}

func TestListOrdersHandler(t *testing.T) {
	svc := &stubService{
		orders: []order.Order{{ID: 1}, {ID: 2}},
		total:  45,
	}

	rec := doRequest(svc, "/api/admin/orders?status=Shipped&page=2&limit=20&sortBy=createdAt&sortDesc=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	if svc.gotQuery.Status != order.StatusShipped {
		t.Errorf("status filter = %s, want Shipped", svc.gotQuery.Status)
	}
	if svc.gotQuery.Limit != 20 || svc.gotQuery.Offset != 20 {
		t.Errorf("limit/offset = %d/%d, want 20/20", svc.gotQuery.Limit, svc.gotQuery.Offset)
	}
	if svc.gotQuery.SortBy != "createdAt" || !svc.gotQuery.SortDesc {
		t.Errorf("sort = %s desc=%v", svc.gotQuery.SortBy, svc.gotQuery.SortDesc)
	}

	var env struct {
		Success bool  `json:"success"`
		Total   int64 `json:"total"`
		Page    int   `json:"page"`
		Pages   int   `json:"pages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if env.Total != 45 || env.Page != 2 || env.Pages != 3 {
		t.Errorf("pagination = %+v, want total 45, page 2, pages 3", env)
	}
}

func TestListOrdersHandlerDefaults(t *testing.T) {
	svc := &stubService{}

	rec := doRequest(svc, "/api/admin/orders")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.gotQuery.Limit != defaultPageSize || svc.gotQuery.Offset != 0 {
		t.Errorf("defaults = %d/%d, want %d/0", svc.gotQuery.Limit, svc.gotQuery.Offset, defaultPageSize)
	}
}

func TestListOrdersHandlerBadQuery(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"bad status", "/api/admin/orders?status=Lost"},
		{"bad start date", "/api/admin/orders?startDate=yesterday"},
		{"bad end date", "/api/admin/orders?endDate=tomorrow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(&stubService{}, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestListOrdersHandlerForbidden(t *testing.T) {
	svc := &stubService{err: order.ErrForbidden}

	rec := doRequest(svc, "/api/admin/orders")
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
