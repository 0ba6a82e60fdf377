package placeorder

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
	PlaceOrder(
		ctx context.Context,
		act actor.Actor,
		model ordersvc.PlaceOrderModel,
	) (*order.Order, error)
}

// itemInPlaceOrderRequest represents an item in a place order request.
type itemInPlaceOrderRequest struct {
	ProductID      int64 `json:"productId"      validate:"gt=0"`
	Quantity       int   `json:"quantity"       validate:"gt=0"`
	UnitPriceCents int64 `json:"unitPriceCents" validate:"gt=0"`
}

// shippingInfoRequest represents the delivery address in a place order request.
type shippingInfoRequest struct {
	Name       string `json:"name"       validate:"required"`
	Address    string `json:"address"    validate:"required"`
	City       string `json:"city"       validate:"required"`
	State      string `json:"state"      validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Phone      string `json:"phone"      validate:"required"`
}

// placeOrderRequest represents a place order request.
type placeOrderRequest struct {
	OrderItems    []itemInPlaceOrderRequest `json:"orderItems"    validate:"required,min=1,dive"`
	ShippingInfo  shippingInfoRequest       `json:"shippingInfo"  validate:"required"`
	PaymentMethod string                    `json:"paymentMethod" validate:"required"`
	TotalCents    int64                     `json:"totalCents"    validate:"gt=0"`
}

var validate = validator.New()

// Validate validates the place order request.
func (r *placeOrderRequest) Validate() error {
	return validate.Struct(r)
}

// toModel converts placeOrderRequest to ordersvc.PlaceOrderModel.
func (r *placeOrderRequest) toModel() (*ordersvc.PlaceOrderModel, error) {
	method, err := order.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return nil, err
	}

	items := make([]ordersvc.PlaceOrderItem, len(r.OrderItems))
	for i, item := range r.OrderItems {
		items[i] = ordersvc.PlaceOrderItem{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		}
	}

	return &ordersvc.PlaceOrderModel{
		Items: items,
		ShippingInfo: order.ShippingInfo{
			Name:       r.ShippingInfo.Name,
			Address:    r.ShippingInfo.Address,
			City:       r.ShippingInfo.City,
			State:      r.ShippingInfo.State,
			PostalCode: r.ShippingInfo.PostalCode,
			Phone:      r.ShippingInfo.Phone,
		},
		PaymentMethod:      method,
		DeclaredTotalCents: r.TotalCents,
	}, nil
}

// PlaceOrder handles the order creation request.
func PlaceOrder(w http.ResponseWriter, r *http.Request, service service) {
	act, ok := auth.FromContext(r.Context())
	if !ok {
		response.JSON(w, http.StatusUnauthorized, response.Envelope{
			Success: false,
			Message: "Authentication required",
		})

		return
	}

	req := placeOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		slog.Error("Error decoding request body for place order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		slog.Error("Error validating request body for place order", "error", err)

		return
	}

	model, err := req.toModel()
	if err != nil {
		response.BadRequest(w, err.Error())
		slog.Error("Error converting place order request to model", "error", err)

		return
	}

	placed, err := service.PlaceOrder(r.Context(), act, *model)
	if err != nil {
		response.Error(w, err)
		slog.Error("Error placing order", "error", err)

		return
	}

	response.JSON(w, http.StatusCreated, response.Envelope{
		Success: true,
		Message: "Order placed successfully",
		Order:   placed,
	})
}
