package placeorder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/service/services/ordersvc"
	"github.com/quickbasket/order-svc/internal/transport/http/middleware/auth"
)

type stubService struct {
	gotActor actor.Actor
	gotModel ordersvc.PlaceOrderModel
	result   *order.Order
	err      error
}

func (s *stubService) PlaceOrder(
	_ context.Context,
	act actor.Actor,
	model ordersvc.PlaceOrderModel,
) (*order.Order, error) {
	s.gotActor = act
	s.gotModel = model

	return s.result, s.err
}

const validBody = `{
	"orderItems": [{"productId": 1, "quantity": 2, "unitPriceCents": 5000}],
	"shippingInfo": {
		"name": "Jo Doe", "address": "1 Main St", "city": "Springfield",
		"state": "IL", "postalCode": "62704", "phone": "555-0100"
	},
	"paymentMethod": "COD",
	"totalCents": 10000
}`

func doRequest(svc *stubService, act *actor.Actor, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	if act != nil {
		req = req.WithContext(auth.WithActor(req.Context(), *act))
	}
	rec := httptest.NewRecorder()
	PlaceOrder(rec, req, svc)

	return rec
}

func TestPlaceOrderHandler(t *testing.T) {
	svc := &stubService{result: &order.Order{ID: 1, BuyerID: 7, Status: order.StatusProcessing}}
	act := actor.Buyer(7)

	rec := doRequest(svc, &act, validBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !env.Success || env.Message != "Order placed successfully" {
		t.Errorf("envelope = %+v", env)
	}

	if svc.gotActor.ID != 7 {
		t.Errorf("actor id = %d, want 7", svc.gotActor.ID)
	}
	if svc.gotModel.PaymentMethod != order.PaymentMethodCOD {
		t.Errorf("payment method = %s, want COD", svc.gotModel.PaymentMethod)
	}
	if svc.gotModel.DeclaredTotalCents != 10000 {
		t.Errorf("declared total = %d, want 10000", svc.gotModel.DeclaredTotalCents)
	}
	if len(svc.gotModel.Items) != 1 || svc.gotModel.Items[0].Quantity != 2 {
		t.Errorf("items = %+v", svc.gotModel.Items)
	}
}

func TestPlaceOrderHandlerRejections(t *testing.T) {
	act := actor.Buyer(7)

	tests := []struct {
		name       string
		act        *actor.Actor
		body       string
		svcErr     error
		wantStatus int
	}{
		{"no actor", nil, validBody, nil, http.StatusUnauthorized},
		{"malformed body", &act, "{", nil, http.StatusBadRequest},
		{"empty items", &act, `{"orderItems": [], "paymentMethod": "COD", "totalCents": 1}`, nil, http.StatusBadRequest},
		{"bad payment method", &act, strings.Replace(validBody, "COD", "Barter", 1), nil, http.StatusBadRequest},
		{"insufficient stock", &act, validBody, order.ErrInsufficientStock, http.StatusBadRequest},
		{"total mismatch", &act, validBody, order.ErrTotalMismatch, http.StatusBadRequest},
		{"forbidden", &act, validBody, order.ErrForbidden, http.StatusForbidden},
		{"store down", &act, validBody, order.ErrStoreUnavailable, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.svcErr}
			rec := doRequest(svc, tt.act, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}
