package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/service/services/ordersvc"
	adminorders "github.com/quickbasket/order-svc/internal/transport/http/admin_orders"
	cancelorder "github.com/quickbasket/order-svc/internal/transport/http/cancel_order"
	deleteorder "github.com/quickbasket/order-svc/internal/transport/http/delete_order"
	getorder "github.com/quickbasket/order-svc/internal/transport/http/get_order"
	"github.com/quickbasket/order-svc/internal/transport/http/middleware/auth"
	myorders "github.com/quickbasket/order-svc/internal/transport/http/my_orders"
	placeorder "github.com/quickbasket/order-svc/internal/transport/http/place_order"
	sellerorders "github.com/quickbasket/order-svc/internal/transport/http/seller_orders"
	updatestatus "github.com/quickbasket/order-svc/internal/transport/http/update_status"
	"github.com/quickbasket/order-svc/pkg/http/middleware/trace"
	"github.com/quickbasket/order-svc/pkg/logger"
)

type service interface {
	PlaceOrder(ctx context.Context, act actor.Actor, model ordersvc.PlaceOrderModel) (*order.Order, error)
	GetOrder(ctx context.Context, act actor.Actor, orderID int64) (*order.Order, error)
	ListMyOrders(ctx context.Context, act actor.Actor) ([]order.Order, error)
	ListOrders(ctx context.Context, act actor.Actor, query *order.QueryOrdersModel) ([]order.Order, int64, error)
	ListSellerOrders(ctx context.Context, act actor.Actor) ([]order.Order, error)
	CancelOrder(ctx context.Context, act actor.Actor, orderID int64) (*order.Order, error)
	UpdateOrderStatus(ctx context.Context, act actor.Actor, orderID int64, newStatus order.Status) (*order.Order, error)
	SellerUpdateOrderStatus(ctx context.Context, act actor.Actor, orderID int64, updates []ordersvc.SellerStatusUpdate) (*order.Order, error)
	DeleteOrder(ctx context.Context, act actor.Actor, orderID int64) error
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
}

func NewHTTPTransport(service service) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	authenticate := auth.NewAuthMiddleware()

	h.router.Route("/api", func(r chi.Router) {
		r.Use(authenticate)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.placeOrder)
			r.Get("/mine", h.listMyOrders)
			r.Get("/{id}", h.getOrder)
			r.Put("/{id}/cancel", h.cancelOrder)
			r.Put("/{id}/status", h.updateOrderStatus)
			r.Delete("/{id}", h.deleteOrder)
		})

		r.Route("/seller/orders", func(r chi.Router) {
			r.Get("/", h.listSellerOrders)
			r.Patch("/", h.sellerUpdateOrderStatus)
		})

		r.Get("/admin/orders", h.listOrders)
	})
}

func (h *HTTPTransport) placeOrder(w http.ResponseWriter, r *http.Request) {
	placeorder.PlaceOrder(w, r, h.service)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.service)
}

func (h *HTTPTransport) listMyOrders(w http.ResponseWriter, r *http.Request) {
	myorders.ListMyOrders(w, r, h.service)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	adminorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) listSellerOrders(w http.ResponseWriter, r *http.Request) {
	sellerorders.ListSellerOrders(w, r, h.service)
}

func (h *HTTPTransport) cancelOrder(w http.ResponseWriter, r *http.Request) {
	cancelorder.CancelOrder(w, r, h.service)
}

func (h *HTTPTransport) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	updatestatus.UpdateOrderStatus(w, r, h.service)
}

func (h *HTTPTransport) sellerUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	sellerorders.UpdateOrderStatus(w, r, h.service)
}

func (h *HTTPTransport) deleteOrder(w http.ResponseWriter, r *http.Request) {
	deleteorder.DeleteOrder(w, r, h.service)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
