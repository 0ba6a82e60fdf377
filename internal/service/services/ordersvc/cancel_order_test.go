package ordersvc

import (
	"context"
	"errors"
	"testing"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/service/models/orderitem"
	"github.com/quickbasket/order-svc/internal/service/models/product"
)

func TestCancelOrder(t *testing.T) {
	store := newMemStore()
	store.addProduct(product.Product{ID: 1, Title: "Widget", Stock: 0, SellerID: 100})
	placed := store.addOrder(
		order.Order{BuyerID: 7, Status: order.StatusShipped, PaymentStatus: order.PaymentStatusPending},
		orderitem.OrderItem{ProductID: 1, Quantity: 3, UnitPriceCents: 1000},
	)
	svc := newTestService(store)

	cancelled, err := svc.CancelOrder(context.Background(), actor.Buyer(7), placed.ID)
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}

	if cancelled.Status != order.StatusCancelled {
		t.Errorf("status = %s, want Cancelled", cancelled.Status)
	}
	if cancelled.PaymentStatus != order.PaymentStatusFailed {
		t.Errorf("payment status = %s, want Failed", cancelled.PaymentStatus)
	}
	if cancelled.DeliveredAt != nil {
		t.Error("deliveredAt must be cleared")
	}

	if store.products[1].Stock != 3 {
		t.Errorf("stock = %d, want 3 after restore", store.products[1].Stock)
	}
	if !store.orders[placed.ID].StockRestored {
		t.Error("order must be marked stock_restored")
	}
}

func TestCancelOrderByAdmin(t *testing.T) {
	store := newMemStore()
	store.addProduct(product.Product{ID: 1, Title: "Widget", Stock: 0, SellerID: 100})
	placed := store.addOrder(
		order.Order{BuyerID: 7, Status: order.StatusProcessing},
		orderitem.OrderItem{ProductID: 1, Quantity: 1},
	)
	svc := newTestService(store)

	if _, err := svc.CancelOrder(context.Background(), actor.Admin(1), placed.ID); err != nil {
		t.Fatalf("admin cancel failed: %v", err)
	}
	if store.products[1].Stock != 1 {
		t.Errorf("stock = %d, want 1", store.products[1].Stock)
	}
}

func TestCancelOrderRejections(t *testing.T) {
	store := newMemStore()
	store.addProduct(product.Product{ID: 1, Title: "Widget", Stock: 0, SellerID: 100})
	open := store.addOrder(order.Order{BuyerID: 7, Status: order.StatusProcessing})
	delivered := store.addOrder(order.Order{BuyerID: 7, Status: order.StatusDelivered})
	cancelledTwice := store.addOrder(order.Order{BuyerID: 7, Status: order.StatusCancelled})
	svc := newTestService(store)

	tests := []struct {
		name    string
		act     actor.Actor
		orderID int64
		wantErr error
	}{
		{"unknown order", actor.Buyer(7), 999, order.ErrNotFound},
		{"other buyer", actor.Buyer(8), open.ID, order.ErrForbidden},
		{"seller cannot cancel", actor.Seller(100), open.ID, order.ErrForbidden},
		{"delivered is final", actor.Buyer(7), delivered.ID, order.ErrInvalidTransition},
		{"already cancelled", actor.Buyer(7), cancelledTwice.ID, order.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CancelOrder(context.Background(), tt.act, tt.orderID)
			requireErrIs(t, err, tt.wantErr)
		})
	}

	if store.products[1].Stock != 0 {
		t.Errorf("rejected cancels must not touch stock, got %d", store.products[1].Stock)
	}
}

func TestCancelOrderQueuesFailedRestorations(t *testing.T) {
	// Two items, one restoration fails: the other must still be applied
	// and the failed one must land in the restock queue.
	store := newMemStore()
	store.addProduct(product.Product{ID: 1, Title: "Widget", Stock: 0, SellerID: 100})
	store.addProduct(product.Product{ID: 2, Title: "Gadget", Stock: 0, SellerID: 100})
	store.incrementErrs[1] = errors.New("connection reset")
	placed := store.addOrder(
		order.Order{BuyerID: 7, Status: order.StatusProcessing},
		orderitem.OrderItem{ProductID: 1, Quantity: 2},
		orderitem.OrderItem{ProductID: 2, Quantity: 4},
	)
	svc := newTestService(store)

	cancelled, err := svc.CancelOrder(context.Background(), actor.Buyer(7), placed.ID)
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if cancelled.Status != order.StatusCancelled {
		t.Errorf("status = %s, want Cancelled", cancelled.Status)
	}

	if store.products[2].Stock != 4 {
		t.Errorf("product 2 stock = %d, want 4", store.products[2].Stock)
	}
	if len(store.restock) != 1 {
		t.Fatalf("got %d restock entries, want 1", len(store.restock))
	}
	entry := store.restock[0]
	if entry.OrderID != placed.ID || entry.ProductID != 1 || entry.Quantity != 2 {
		t.Errorf("restock entry = %+v", entry)
	}
}

func TestCancelOrderEmitsNoNotifications(t *testing.T) {
	store := newMemStore()
	store.addProduct(product.Product{ID: 1, Title: "Widget", Stock: 0, SellerID: 100})
	placed := store.addOrder(
		order.Order{BuyerID: 7, Status: order.StatusProcessing},
		orderitem.OrderItem{ProductID: 1, Quantity: 1},
	)
	svc := newTestService(store)

	if _, err := svc.CancelOrder(context.Background(), actor.Buyer(7), placed.ID); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if len(store.outbox) != 0 {
		t.Errorf("cancel must not queue notifications, got %d", len(store.outbox))
	}
}
