package uow

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickbasket/order-svc/internal/dal/interfaces/iorder"
	"github.com/quickbasket/order-svc/internal/dal/interfaces/iorderitem"
	"github.com/quickbasket/order-svc/internal/dal/interfaces/ioutbox"
	"github.com/quickbasket/order-svc/internal/dal/interfaces/iproduct"
	"github.com/quickbasket/order-svc/internal/dal/interfaces/irestock"
	"github.com/quickbasket/order-svc/internal/dal/postgres"
	orderrepo "github.com/quickbasket/order-svc/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/quickbasket/order-svc/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/quickbasket/order-svc/internal/dal/repositories/outbox/postgres"
	productrepo "github.com/quickbasket/order-svc/internal/dal/repositories/product/postgres"
	restockrepo "github.com/quickbasket/order-svc/internal/dal/repositories/restock/postgres"
)

// unitOfWork binds the repositories to a single connection source. After
// Begin, every repository runs on the same transaction, so a stock decrement
// and the order insert commit or roll back together.
type unitOfWork struct {
	pool *pgxpool.Pool
	tx   pgx.Tx

	orderRepo     iorder.Repository
	orderItemRepo iorderitem.Repository
	productRepo   iproduct.Repository
	outboxRepo    ioutbox.Repository
	restockRepo   irestock.Repository
}

func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	pool := client.Pool()

	return &unitOfWork{
		pool:          pool,
		orderRepo:     orderrepo.NewPostgresOrderRepository(pool),
		orderItemRepo: orderitemrepo.NewPostgresOrderItemRepository(pool),
		productRepo:   productrepo.NewPostgresProductRepository(pool),
		outboxRepo:    outboxrepo.NewOutboxRepository(pool),
		restockRepo:   restockrepo.NewRestockRepository(pool),
	}
}

func (u *unitOfWork) OrderRepository() iorder.Repository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitem.Repository {
	return u.orderItemRepo
}

func (u *unitOfWork) ProductRepository() iproduct.Repository {
	return u.productRepo
}

func (u *unitOfWork) OutboxRepository() ioutbox.Repository {
	return u.outboxRepo
}

func (u *unitOfWork) RestockRepository() irestock.Repository {
	return u.restockRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)
	u.productRepo = productrepo.NewPostgresProductRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)
	u.restockRepo = restockrepo.NewRestockRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback(ctx)
}
