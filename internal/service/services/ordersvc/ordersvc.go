package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/viper"

	"github.com/quickbasket/order-svc/internal/dal/interfaces/iorder"
	"github.com/quickbasket/order-svc/internal/dal/interfaces/iorderitem"
	"github.com/quickbasket/order-svc/internal/dal/interfaces/ioutbox"
	"github.com/quickbasket/order-svc/internal/dal/interfaces/iproduct"
	"github.com/quickbasket/order-svc/internal/dal/interfaces/irestock"
	"github.com/quickbasket/order-svc/internal/dal/postgres"
	"github.com/quickbasket/order-svc/internal/dal/uow"
	"github.com/quickbasket/order-svc/internal/service/models/order"
)

// OrderService is the order lifecycle engine. Every operation takes the
// acting caller explicitly and enforces role and ownership checks itself;
// transport middleware only resolves the actor, it is not trusted to gate.
type OrderService struct {
	pgClient *postgres.Client

	// newUOW is the unit-of-work factory, replaced in tests.
	newUOW func() unitOfWork

	storeTimeout time.Duration
	retryBackoff time.Duration

	notificationsQueue string
	outboxMaxRetries   int
	restockMaxRetries  int
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorder.Repository
	OrderItemRepository() iorderitem.Repository
	ProductRepository() iproduct.Repository
	OutboxRepository() ioutbox.Repository
	RestockRepository() irestock.Repository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	storeTimeoutSeconds := viper.GetInt("service.store_timeout_seconds")
	if storeTimeoutSeconds == 0 {
		storeTimeoutSeconds = 5
	}
	retryBackoffMillis := viper.GetInt("service.retry_backoff_ms")
	if retryBackoffMillis == 0 {
		retryBackoffMillis = 100
	}
	outboxMaxRetries := viper.GetInt("rabbitmq.outbox.max_retries")
	if outboxMaxRetries == 0 {
		outboxMaxRetries = 5
	}
	restockMaxRetries := viper.GetInt("restock.max_retries")
	if restockMaxRetries == 0 {
		restockMaxRetries = 5
	}

	s := &OrderService{
		storeTimeout:       time.Duration(storeTimeoutSeconds) * time.Second,
		retryBackoff:       time.Duration(retryBackoffMillis) * time.Millisecond,
		notificationsQueue: viper.GetString("rabbitmq.notifications.queue"),
		outboxMaxRetries:   outboxMaxRetries,
		restockMaxRetries:  restockMaxRetries,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// domainErrs are returned to the caller as-is and are never retried.
var domainErrs = []error{
	order.ErrNotFound,
	order.ErrForbidden,
	order.ErrInvalidTransition,
	order.ErrInvalidState,
	order.ErrInsufficientStock,
	order.ErrTotalMismatch,
}

func isDomainErr(err error) bool {
	for _, domainErr := range domainErrs {
		if errors.Is(err, domainErr) {
			return true
		}
	}

	return false
}

// runStore executes op against the store with a bounded timeout and a single
// retry for transient errors. Exhausted retries surface as
// order.ErrStoreUnavailable.
func (s *OrderService) runStore(
	ctx context.Context,
	op func(ctx context.Context, work unitOfWork) error,
) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(1, retry.NewConstant(s.retryBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := op(ctx, s.newUOW()); err != nil {
			if isDomainErr(err) {
				return err
			}

			return retry.RetryableError(err)
		}

		return nil
	})
	if err != nil && !isDomainErr(err) {
		return fmt.Errorf("%w: %v", order.ErrStoreUnavailable, err)
	}

	return err
}

// runTx is runStore with the op wrapped in a transaction. The whole
// transaction is retried as a unit: a rolled-back attempt leaves no state
// behind, so a second attempt is safe.
func (s *OrderService) runTx(
	ctx context.Context,
	op func(ctx context.Context, work unitOfWork) error,
) error {
	return s.runStore(ctx, func(ctx context.Context, work unitOfWork) error {
		if err := work.Begin(ctx); err != nil {
			return err
		}
		defer func() { _ = work.Rollback(ctx) }()

		if err := op(ctx, work); err != nil {
			return err
		}

		return work.Commit(ctx)
	})
}
