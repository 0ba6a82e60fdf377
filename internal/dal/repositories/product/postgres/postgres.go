package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/quickbasket/order-svc/internal/dal/postgres"
	"github.com/quickbasket/order-svc/internal/service/models/product"
)

// ProductDal represents product data access layer model.
type ProductDal struct {
	Id         int64     `db:"id"`
	Title      string    `db:"title"`
	PriceCents int64     `db:"price_cents"`
	Stock      int       `db:"stock"`
	SellerId   int64     `db:"seller_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// ToModel converts ProductDal to service layer Product model.
func (p *ProductDal) ToModel() *product.Product {
	return &product.Product{
		ID:         p.Id,
		Title:      p.Title,
		PriceCents: p.PriceCents,
		Stock:      p.Stock,
		SellerID:   p.SellerId,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

type PostgresProductRepository struct {
	conn postgres.Querier
	sb   sq.StatementBuilderType
}

func NewPostgresProductRepository(conn postgres.Querier) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// GetByIDs retrieves products by id. Missing ids are simply absent from the
// result; the caller decides whether that is an error.
func (r *PostgresProductRepository) GetByIDs(
	ctx context.Context,
	ids []int64,
) ([]product.Product, error) {
	if len(ids) == 0 {
		return []product.Product{}, nil
	}

	query, args, err := r.sb.Select(
		"id",
		"title",
		"price_cents",
		"stock",
		"seller_id",
		"created_at",
		"updated_at",
	).
		From("products").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		var dal ProductDal
		err := rows.Scan(
			&dal.Id,
			&dal.Title,
			&dal.PriceCents,
			&dal.Stock,
			&dal.SellerId,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// DecrementStock applies the conditional decrement. The stock >= quantity
// guard runs inside the UPDATE, so two concurrent orders can never both
// consume the last unit: the second one sees zero rows affected.
func (r *PostgresProductRepository) DecrementStock(
	ctx context.Context,
	productID int64,
	quantity int,
) (bool, error) {
	query, args, err := r.sb.Update("products").
		Set("stock", sq.Expr("stock - ?", quantity)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": productID}).
		Where(sq.GtOrEq{"stock": quantity}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build decrement query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// IncrementStock restores quantity units to the product's stock.
func (r *PostgresProductRepository) IncrementStock(
	ctx context.Context,
	productID int64,
	quantity int,
) error {
	query, args, err := r.sb.Update("products").
		Set("stock", sq.Expr("stock + ?", quantity)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build increment query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d not found for stock restoration", productID)
	}

	return nil
}
