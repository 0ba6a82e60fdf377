package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/quickbasket/order-svc/internal/dal/interfaces/iorder"
	"github.com/quickbasket/order-svc/internal/dal/interfaces/iorderitem"
	"github.com/quickbasket/order-svc/internal/dal/interfaces/ioutbox"
	"github.com/quickbasket/order-svc/internal/dal/interfaces/iproduct"
	"github.com/quickbasket/order-svc/internal/dal/interfaces/irestock"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/service/models/orderitem"
	"github.com/quickbasket/order-svc/internal/service/models/outbox"
	"github.com/quickbasket/order-svc/internal/service/models/product"
	"github.com/quickbasket/order-svc/internal/service/models/restock"
)

// memStore is a transactional in-memory store shared by the fake
// repositories. Begin snapshots the state, Rollback restores it, so the
// engine's all-or-nothing guarantees are observable in tests.
type memStore struct {
	products map[int64]product.Product
	orders   map[int64]order.Order
	items    []orderitem.OrderItem
	outbox   []outbox.OutboxMessage
	restock  []restock.Entry

	nextOrderID int64
	nextItemID  int64

	// error hooks
	getOrderErr    error
	getOrderFails  int
	getOrderCalls  int
	incrementErrs  map[int64]error
	enqueueErr     error
	insertOrderErr error

	// markRestoredHook runs before a restoration claim is evaluated, to
	// emulate a concurrent writer committing in between.
	markRestoredHook func()

	begins    int
	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{
		products:      make(map[int64]product.Product),
		orders:        make(map[int64]order.Order),
		nextOrderID:   1,
		nextItemID:    1,
		incrementErrs: make(map[int64]error),
	}
}

func (m *memStore) addProduct(p product.Product) {
	m.products[p.ID] = p
}

func (m *memStore) addOrder(o order.Order, items ...orderitem.OrderItem) order.Order {
	if o.ID == 0 {
		o.ID = m.nextOrderID
		m.nextOrderID++
	}
	m.orders[o.ID] = o
	for _, item := range items {
		item.OrderID = o.ID
		if item.ID == 0 {
			item.ID = m.nextItemID
			m.nextItemID++
		}
		m.items = append(m.items, item)
	}

	return o
}

func (m *memStore) snapshot() *memStore {
	snap := &memStore{
		products:    make(map[int64]product.Product, len(m.products)),
		orders:      make(map[int64]order.Order, len(m.orders)),
		items:       append([]orderitem.OrderItem(nil), m.items...),
		outbox:      append([]outbox.OutboxMessage(nil), m.outbox...),
		restock:     append([]restock.Entry(nil), m.restock...),
		nextOrderID: m.nextOrderID,
		nextItemID:  m.nextItemID,
	}
	for id, p := range m.products {
		snap.products[id] = p
	}
	for id, o := range m.orders {
		snap.orders[id] = o
	}

	return snap
}

func (m *memStore) restore(snap *memStore) {
	m.products = snap.products
	m.orders = snap.orders
	m.items = snap.items
	m.outbox = snap.outbox
	m.restock = snap.restock
	m.nextOrderID = snap.nextOrderID
	m.nextItemID = snap.nextItemID
}

// memUOW adapts memStore to the unitOfWork interface.
type memUOW struct {
	store     *memStore
	snap      *memStore
	committed bool
}

func (u *memUOW) Begin(_ context.Context) error {
	u.store.begins++
	u.snap = u.store.snapshot()

	return nil
}

func (u *memUOW) Commit(_ context.Context) error {
	u.store.commits++
	u.committed = true

	return nil
}

func (u *memUOW) Rollback(_ context.Context) error {
	if u.committed || u.snap == nil {
		return nil
	}
	u.store.rollbacks++
	u.store.restore(u.snap)
	u.snap = nil

	return nil
}

func (u *memUOW) OrderRepository() iorder.Repository         { return iorderRepo{u.store} }
func (u *memUOW) OrderItemRepository() iorderitem.Repository { return iitemRepo{u.store} }
func (u *memUOW) ProductRepository() iproduct.Repository     { return iproductRepo{u.store} }
func (u *memUOW) OutboxRepository() ioutbox.Repository       { return ioutboxRepo{u.store} }
func (u *memUOW) RestockRepository() irestock.Repository     { return irestockRepo{u.store} }

type iorderRepo struct{ s *memStore }

func (r iorderRepo) Insert(_ context.Context, o order.Order) (order.Order, error) {
	if r.s.insertOrderErr != nil {
		return order.Order{}, r.s.insertOrderErr
	}
	o.ID = r.s.nextOrderID
	r.s.nextOrderID++
	r.s.orders[o.ID] = o

	return o, nil
}

func (r iorderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	r.s.getOrderCalls++
	if r.s.getOrderErr != nil && r.s.getOrderFails != 0 {
		r.s.getOrderFails--

		return nil, r.s.getOrderErr
	}
	o, ok := r.s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %d", order.ErrNotFound, id)
	}

	return &o, nil
}

func (r iorderRepo) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	var result []order.Order
	for _, o := range r.s.orders {
		if !r.matches(o, filter) {
			continue
		}
		result = append(result, o)
	}

	if filter.SortBy == "createdAt" && filter.SortDesc {
		sort.Slice(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	} else {
		sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	}

	return result, nil
}

func (r iorderRepo) matches(o order.Order, filter *order.QueryOrdersModel) bool {
	if len(filter.BuyerIds) > 0 {
		found := false
		for _, id := range filter.BuyerIds {
			if o.BuyerID == id {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if filter.Status != "" && o.Status != filter.Status {
		return false
	}
	if filter.SellerID != 0 {
		found := false
		for _, item := range r.s.items {
			if item.OrderID != o.ID {
				continue
			}
			if p, ok := r.s.products[item.ProductID]; ok && p.SellerID == filter.SellerID {
				found = true
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func (r iorderRepo) Count(ctx context.Context, filter *order.QueryOrdersModel) (int64, error) {
	orders, err := r.Query(ctx, filter)
	if err != nil {
		return 0, err
	}

	return int64(len(orders)), nil
}

func (r iorderRepo) Update(_ context.Context, o *order.Order) error {
	stored, ok := r.s.orders[o.ID]
	if !ok {
		return order.ErrNotFound
	}
	stored.Status = o.Status
	stored.PaymentStatus = o.PaymentStatus
	stored.IsPaid = o.IsPaid
	stored.DeliveredAt = o.DeliveredAt
	r.s.orders[o.ID] = stored

	return nil
}

func (r iorderRepo) MarkCancelled(_ context.Context, id int64) (bool, error) {
	stored, ok := r.s.orders[id]
	if !ok || stored.Status.Terminal() {
		return false, nil
	}
	stored.Status = order.StatusCancelled
	stored.PaymentStatus = order.PaymentStatusFailed
	stored.DeliveredAt = nil
	stored.StockRestored = true
	r.s.orders[id] = stored

	return true, nil
}

func (r iorderRepo) MarkStockRestored(_ context.Context, id int64) (bool, error) {
	if r.s.markRestoredHook != nil {
		r.s.markRestoredHook()
	}
	stored, ok := r.s.orders[id]
	if !ok || stored.StockRestored {
		return false, nil
	}
	stored.StockRestored = true
	r.s.orders[id] = stored

	return true, nil
}

func (r iorderRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.orders[id]; !ok {
		return order.ErrNotFound
	}
	delete(r.s.orders, id)

	kept := r.s.items[:0]
	for _, item := range r.s.items {
		if item.OrderID != id {
			kept = append(kept, item)
		}
	}
	r.s.items = kept

	return nil
}

type iitemRepo struct{ s *memStore }

func (r iitemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	for i := range items {
		items[i].ID = r.s.nextItemID
		r.s.nextItemID++
		r.s.items = append(r.s.items, items[i])
	}

	return items, nil
}

func (r iitemRepo) Query(_ context.Context, filter *orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error) {
	var result []orderitem.OrderItem
	for _, item := range r.s.items {
		for _, orderID := range filter.OrderIds {
			if item.OrderID == orderID {
				result = append(result, item)
			}
		}
	}

	return result, nil
}

type iproductRepo struct{ s *memStore }

func (r iproductRepo) GetByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	var result []product.Product
	seen := make(map[int64]struct{})
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := r.s.products[id]; ok {
			result = append(result, p)
		}
	}

	return result, nil
}

func (r iproductRepo) DecrementStock(_ context.Context, productID int64, quantity int) (bool, error) {
	p, ok := r.s.products[productID]
	if !ok || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	r.s.products[productID] = p

	return true, nil
}

func (r iproductRepo) IncrementStock(_ context.Context, productID int64, quantity int) error {
	if err, ok := r.s.incrementErrs[productID]; ok {
		return err
	}
	p, ok := r.s.products[productID]
	if !ok {
		return fmt.Errorf("product %d not found", productID)
	}
	p.Stock += quantity
	r.s.products[productID] = p

	return nil
}

type ioutboxRepo struct{ s *memStore }

func (r ioutboxRepo) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	msg.ID = int64(len(r.s.outbox) + 1)
	r.s.outbox = append(r.s.outbox, msg)

	return nil
}

func (r ioutboxRepo) GetPendingMessages(_ context.Context, limit int) ([]outbox.OutboxMessage, error) {
	if limit > len(r.s.outbox) {
		limit = len(r.s.outbox)
	}

	return append([]outbox.OutboxMessage(nil), r.s.outbox[:limit]...), nil
}

func (r ioutboxRepo) Delete(_ context.Context, id int64) error {
	kept := r.s.outbox[:0]
	for _, msg := range r.s.outbox {
		if msg.ID != id {
			kept = append(kept, msg)
		}
	}
	r.s.outbox = kept

	return nil
}

func (r ioutboxRepo) UpdateRetry(_ context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error {
	for i := range r.s.outbox {
		if r.s.outbox[i].ID == id {
			r.s.outbox[i].RetryCount = retryCount
			r.s.outbox[i].LastError = lastError
			r.s.outbox[i].NextRetryAt = nextRetryAt
		}
	}

	return nil
}

type irestockRepo struct{ s *memStore }

func (r irestockRepo) Enqueue(_ context.Context, entry restock.Entry) error {
	if r.s.enqueueErr != nil {
		return r.s.enqueueErr
	}
	entry.ID = int64(len(r.s.restock) + 1)
	r.s.restock = append(r.s.restock, entry)

	return nil
}

func (r irestockRepo) GetPending(_ context.Context, limit int) ([]restock.Entry, error) {
	if limit > len(r.s.restock) {
		limit = len(r.s.restock)
	}

	return append([]restock.Entry(nil), r.s.restock[:limit]...), nil
}

func (r irestockRepo) Delete(_ context.Context, id int64) error {
	kept := r.s.restock[:0]
	for _, entry := range r.s.restock {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	r.s.restock = kept

	return nil
}

func (r irestockRepo) UpdateRetry(_ context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error {
	for i := range r.s.restock {
		if r.s.restock[i].ID == id {
			r.s.restock[i].RetryCount = retryCount
			r.s.restock[i].LastError = lastError
			r.s.restock[i].NextRetryAt = nextRetryAt
		}
	}

	return nil
}

func newTestService(store *memStore) *OrderService {
	return &OrderService{
		newUOW: func() unitOfWork {
			return &memUOW{store: store}
		},
		storeTimeout:       time.Second,
		retryBackoff:       time.Millisecond,
		notificationsQueue: "notifications",
		outboxMaxRetries:   5,
		restockMaxRetries:  5,
	}
}

func requireErrIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("got error %v, want %v", err, target)
	}
}
