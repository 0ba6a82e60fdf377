package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/quickbasket/order-svc/internal/dal/postgres"
	"github.com/quickbasket/order-svc/internal/service/models/restock"
)

// RestockRepository implements the stock-restoration retry queue for
// PostgreSQL. Its shape mirrors the outbox: enqueue, poll pending, delete on
// success, bump retry on failure.
type RestockRepository struct {
	conn postgres.Querier
	sb   sq.StatementBuilderType
}

// NewRestockRepository creates a new restock repository.
func NewRestockRepository(conn postgres.Querier) *RestockRepository {
	return &RestockRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Enqueue records a failed stock restoration for later retry.
func (r *RestockRepository) Enqueue(ctx context.Context, entry restock.Entry) error {
	query, args, err := r.sb.Insert("restock_queue").
		Columns(
			"order_id",
			"product_id",
			"quantity",
			"retry_count",
			"max_retries",
			"last_error",
			"created_at",
			"updated_at",
			"next_retry_at",
		).
		Values(
			entry.OrderID,
			entry.ProductID,
			entry.Quantity,
			entry.RetryCount,
			entry.MaxRetries,
			entry.LastError,
			entry.CreatedAt,
			entry.UpdatedAt,
			entry.NextRetryAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build enqueue query: %w", err)
	}

	_, err = r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to enqueue restock entry: %w", err)
	}

	return nil
}

// GetPending retrieves entries that are ready for retry.
func (r *RestockRepository) GetPending(
	ctx context.Context,
	limit int,
) ([]restock.Entry, error) {
	query, args, err := r.sb.Select(
		"id",
		"order_id",
		"product_id",
		"quantity",
		"retry_count",
		"max_retries",
		"last_error",
		"created_at",
		"updated_at",
		"next_retry_at",
	).
		From("restock_queue").
		Where(sq.LtOrEq{"next_retry_at": time.Now()}).
		Where(sq.Expr("retry_count < max_retries")).
		OrderBy("next_retry_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query restock entries: %w", err)
	}
	defer rows.Close()

	var entries []restock.Entry
	for rows.Next() {
		var entry restock.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.OrderID,
			&entry.ProductID,
			&entry.Quantity,
			&entry.RetryCount,
			&entry.MaxRetries,
			&entry.LastError,
			&entry.CreatedAt,
			&entry.UpdatedAt,
			&entry.NextRetryAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan restock entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restock entries: %w", err)
	}

	return entries, nil
}

// Delete removes an entry after stock was restored.
func (r *RestockRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("restock_queue").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	_, err = r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete restock entry: %w", err)
	}

	return nil
}

// UpdateRetry updates retry count and error information.
func (r *RestockRepository) UpdateRetry(
	ctx context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	query, args, err := r.sb.Update("restock_queue").
		Set("retry_count", retryCount).
		Set("last_error", lastError).
		Set("next_retry_at", nextRetryAt).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	_, err = r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update restock entry: %w", err)
	}

	return nil
}
