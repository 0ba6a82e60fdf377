package ordersvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/service/models/orderitem"
	"github.com/quickbasket/order-svc/internal/service/models/product"
)

func queriesFixture() *memStore {
	store := newMemStore()
	store.addProduct(product.Product{ID: 1, Title: "Widget", SellerID: 100})
	store.addProduct(product.Product{ID: 2, Title: "Gadget", SellerID: 200})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.addOrder(
		order.Order{ID: 1, BuyerID: 7, Status: order.StatusProcessing, CreatedAt: base},
		orderitem.OrderItem{ProductID: 1, Quantity: 1},
		orderitem.OrderItem{ProductID: 2, Quantity: 1},
	)
	store.addOrder(
		order.Order{ID: 2, BuyerID: 7, Status: order.StatusShipped, CreatedAt: base.Add(time.Hour)},
		orderitem.OrderItem{ProductID: 2, Quantity: 3},
	)
	store.addOrder(
		order.Order{ID: 3, BuyerID: 8, Status: order.StatusProcessing, CreatedAt: base.Add(2 * time.Hour)},
		orderitem.OrderItem{ProductID: 1, Quantity: 1},
	)

	return store
}

func TestGetOrder(t *testing.T) {
	store := queriesFixture()
	svc := newTestService(store)

	got, err := svc.GetOrder(context.Background(), actor.Buyer(7), 1)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if got.ID != 1 || len(got.OrderItems) != 2 {
		t.Errorf("got order %d with %d items, want order 1 with 2 items", got.ID, len(got.OrderItems))
	}

	if _, err := svc.GetOrder(context.Background(), actor.Admin(1), 1); err != nil {
		t.Errorf("admin read failed: %v", err)
	}

	_, err = svc.GetOrder(context.Background(), actor.Buyer(8), 1)
	requireErrIs(t, err, order.ErrForbidden)

	_, err = svc.GetOrder(context.Background(), actor.Seller(100), 1)
	requireErrIs(t, err, order.ErrForbidden)

	_, err = svc.GetOrder(context.Background(), actor.Buyer(7), 999)
	requireErrIs(t, err, order.ErrNotFound)
}

func TestListMyOrders(t *testing.T) {
	store := queriesFixture()
	svc := newTestService(store)

	orders, err := svc.ListMyOrders(context.Background(), actor.Buyer(7))
	if err != nil {
		t.Fatalf("ListMyOrders failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if orders[0].ID != 2 || orders[1].ID != 1 {
		t.Errorf("order ids = [%d %d], want newest first [2 1]", orders[0].ID, orders[1].ID)
	}
	if len(orders[0].OrderItems) != 1 || len(orders[1].OrderItems) != 2 {
		t.Error("items must be attached to every order")
	}

	empty, err := svc.ListMyOrders(context.Background(), actor.Buyer(99))
	if err != nil {
		t.Fatalf("ListMyOrders failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("buyer with no orders gets an empty list, got %v", empty)
	}

	_, err = svc.ListMyOrders(context.Background(), actor.Seller(100))
	requireErrIs(t, err, order.ErrForbidden)
}

func TestListOrders(t *testing.T) {
	store := queriesFixture()
	svc := newTestService(store)

	orders, total, err := svc.ListOrders(context.Background(), actor.Admin(1), &order.QueryOrdersModel{})
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if total != 3 || len(orders) != 3 {
		t.Errorf("got %d orders, total %d, want 3 and 3", len(orders), total)
	}

	filtered, total, err := svc.ListOrders(context.Background(), actor.Admin(1), &order.QueryOrdersModel{
		Status: order.StatusShipped,
	})
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if total != 1 || len(filtered) != 1 || filtered[0].ID != 2 {
		t.Errorf("status filter: got %d orders, total %d", len(filtered), total)
	}

	_, _, err = svc.ListOrders(context.Background(), actor.Buyer(7), &order.QueryOrdersModel{})
	requireErrIs(t, err, order.ErrForbidden)
}

func TestListSellerOrders(t *testing.T) {
	store := queriesFixture()
	svc := newTestService(store)

	orders, err := svc.ListSellerOrders(context.Background(), actor.Seller(200))
	if err != nil {
		t.Fatalf("ListSellerOrders failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}

	// Order 1 contains products of both sellers; seller 200 must only see
	// their own line.
	for _, o := range orders {
		for _, item := range o.OrderItems {
			if item.ProductID != 2 {
				t.Errorf("order %d leaked foreign item for product %d", o.ID, item.ProductID)
			}
		}
	}

	_, err = svc.ListSellerOrders(context.Background(), actor.Buyer(7))
	requireErrIs(t, err, order.ErrForbidden)
}

func TestStoreRetry(t *testing.T) {
	// A transient read failure is retried once; a persistent one surfaces
	// as ErrStoreUnavailable.
	store := queriesFixture()
	store.getOrderErr = errors.New("connection reset")
	store.getOrderFails = 1
	svc := newTestService(store)

	if _, err := svc.GetOrder(context.Background(), actor.Buyer(7), 1); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}

	store.getOrderErr = errors.New("connection reset")
	store.getOrderFails = 2

	_, err := svc.GetOrder(context.Background(), actor.Buyer(7), 1)
	requireErrIs(t, err, order.ErrStoreUnavailable)
}

func TestDomainErrorsAreNotRetried(t *testing.T) {
	store := queriesFixture()
	svc := newTestService(store)

	_, err := svc.GetOrder(context.Background(), actor.Buyer(8), 1)
	requireErrIs(t, err, order.ErrForbidden)

	if store.getOrderCalls != 1 {
		t.Errorf("domain failure was retried, %d reads instead of 1", store.getOrderCalls)
	}
}
