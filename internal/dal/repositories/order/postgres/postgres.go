package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/quickbasket/order-svc/internal/dal/postgres"
	"github.com/quickbasket/order-svc/internal/service/models/order"
	"github.com/quickbasket/order-svc/internal/service/models/orderitem"
)

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id             int64              `db:"id"`
	BuyerId        int64              `db:"buyer_id"`
	ShipName       string             `db:"ship_name"`
	ShipAddress    string             `db:"ship_address"`
	ShipCity       string             `db:"ship_city"`
	ShipState      string             `db:"ship_state"`
	ShipPostalCode string             `db:"ship_postal_code"`
	ShipPhone      string             `db:"ship_phone"`
	PaymentMethod  string             `db:"payment_method"`
	PaymentStatus  string             `db:"payment_status"`
	OrderStatus    string             `db:"order_status"`
	TotalCents     int64              `db:"total_cents"`
	IsPaid         bool               `db:"is_paid"`
	StockRestored  bool               `db:"stock_restored"`
	DeliveredAt    pgtype.Timestamptz `db:"delivered_at"`
	CreatedAt      time.Time          `db:"created_at"`
	UpdatedAt      time.Time          `db:"updated_at"`
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	method, err := order.ParsePaymentMethod(o.PaymentMethod)
	if err != nil {
		return nil, err
	}
	payStatus, err := order.ParsePaymentStatus(o.PaymentStatus)
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(o.OrderStatus)
	if err != nil {
		return nil, err
	}

	var deliveredAt *time.Time
	if o.DeliveredAt.Valid {
		t := o.DeliveredAt.Time
		deliveredAt = &t
	}

	return &order.Order{
		ID:      o.Id,
		BuyerID: o.BuyerId,
		ShippingInfo: order.ShippingInfo{
			Name:       o.ShipName,
			Address:    o.ShipAddress,
			City:       o.ShipCity,
			State:      o.ShipState,
			PostalCode: o.ShipPostalCode,
			Phone:      o.ShipPhone,
		},
		PaymentMethod: method,
		PaymentStatus: payStatus,
		Status:        status,
		TotalCents:    o.TotalCents,
		IsPaid:        o.IsPaid,
		StockRestored: o.StockRestored,
		DeliveredAt:   deliveredAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		OrderItems:    []orderitem.OrderItem{}, // populated separately
	}, nil
}

var orderColumns = []string{
	"id",
	"buyer_id",
	"ship_name",
	"ship_address",
	"ship_city",
	"ship_state",
	"ship_postal_code",
	"ship_phone",
	"payment_method",
	"payment_status",
	"order_status",
	"total_cents",
	"is_paid",
	"stock_restored",
	"delivered_at",
	"created_at",
	"updated_at",
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var dal OrderDal
	err := row.Scan(
		&dal.Id,
		&dal.BuyerId,
		&dal.ShipName,
		&dal.ShipAddress,
		&dal.ShipCity,
		&dal.ShipState,
		&dal.ShipPostalCode,
		&dal.ShipPhone,
		&dal.PaymentMethod,
		&dal.PaymentStatus,
		&dal.OrderStatus,
		&dal.TotalCents,
		&dal.IsPaid,
		&dal.StockRestored,
		&dal.DeliveredAt,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dal.ToModel()
}

type PostgresOrderRepository struct {
	conn postgres.Querier
	sb   sq.StatementBuilderType
}

func NewPostgresOrderRepository(conn postgres.Querier) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert inserts an order and returns it with the generated id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	var deliveredAt pgtype.Timestamptz
	if o.DeliveredAt != nil {
		deliveredAt = pgtype.Timestamptz{Time: *o.DeliveredAt, Valid: true}
	}

	query, args, err := r.sb.Insert("orders").
		Columns(
			"buyer_id",
			"ship_name",
			"ship_address",
			"ship_city",
			"ship_state",
			"ship_postal_code",
			"ship_phone",
			"payment_method",
			"payment_status",
			"order_status",
			"total_cents",
			"is_paid",
			"stock_restored",
			"delivered_at",
			"created_at",
			"updated_at",
		).
		Values(
			o.BuyerID,
			o.ShippingInfo.Name,
			o.ShippingInfo.Address,
			o.ShippingInfo.City,
			o.ShippingInfo.State,
			o.ShippingInfo.PostalCode,
			o.ShippingInfo.Phone,
			o.PaymentMethod.String(),
			o.PaymentStatus.String(),
			o.Status.String(),
			o.TotalCents,
			o.IsPaid,
			o.StockRestored,
			deliveredAt,
			o.CreatedAt,
			o.UpdatedAt,
		).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	inserted, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	inserted.OrderItems = o.OrderItems

	return *inserted, nil
}

// GetByID retrieves a single order without its items.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	query, args, err := r.sb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	o, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}

		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return o, nil
}

// sortColumns whitelists the sortable fields of the admin listing.
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"totalCents":  "total_cents",
	"orderStatus": "order_status",
}

func (r *PostgresOrderRepository) applyFilter(
	query sq.SelectBuilder,
	filter *order.QueryOrdersModel,
) sq.SelectBuilder {
	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.BuyerIds) > 0 {
		query = query.Where(sq.Eq{"buyer_id": filter.BuyerIds})
	}
	if filter.Status != "" {
		query = query.Where(sq.Eq{"order_status": filter.Status.String()})
	}
	if filter.StartDate != nil {
		query = query.Where(sq.GtOrEq{"created_at": *filter.StartDate})
	}
	if filter.EndDate != nil {
		query = query.Where(sq.LtOrEq{"created_at": *filter.EndDate})
	}
	if filter.SellerID != 0 {
		query = query.Where(sq.Expr(
			`id IN (
				SELECT oi.order_id FROM order_items oi
				JOIN products p ON p.id = oi.product_id
				WHERE p.seller_id = ?
			)`,
			filter.SellerID,
		))
	}

	return query
}

// Query retrieves orders based on filter criteria.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	query := r.applyFilter(r.sb.Select(orderColumns...).From("orders"), filter)

	sortColumn, ok := sortColumns[filter.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc || filter.SortBy == "" {
		direction = "DESC"
	}
	query = query.OrderBy(sortColumn + " " + direction)

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Count returns the number of orders matching the filter.
func (r *PostgresOrderRepository) Count(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) (int64, error) {
	sql, args, err := r.applyFilter(r.sb.Select("COUNT(*)").From("orders"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return total, nil
}

// Update persists the mutable lifecycle fields of the order.
func (r *PostgresOrderRepository) Update(ctx context.Context, o *order.Order) error {
	var deliveredAt pgtype.Timestamptz
	if o.DeliveredAt != nil {
		deliveredAt = pgtype.Timestamptz{Time: *o.DeliveredAt, Valid: true}
	}

	query, args, err := r.sb.Update("orders").
		Set("order_status", o.Status.String()).
		Set("payment_status", o.PaymentStatus.String()).
		Set("is_paid", o.IsPaid).
		Set("delivered_at", deliveredAt).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": o.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	return nil
}

// MarkCancelled atomically cancels a non-terminal order and claims the stock
// restoration. The WHERE guard makes a second concurrent cancel a no-op.
func (r *PostgresOrderRepository) MarkCancelled(ctx context.Context, id int64) (bool, error) {
	query, args, err := r.sb.Update("orders").
		Set("order_status", order.StatusCancelled.String()).
		Set("payment_status", order.PaymentStatusFailed.String()).
		Set("delivered_at", nil).
		Set("stock_restored", true).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		Where(sq.NotEq{"order_status": []string{
			order.StatusDelivered.String(),
			order.StatusCancelled.String(),
			order.StatusRefunded.String(),
		}}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build cancel query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to cancel order: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// MarkStockRestored claims the stock restoration for an order. The WHERE
// guard hands the claim to exactly one caller.
func (r *PostgresOrderRepository) MarkStockRestored(ctx context.Context, id int64) (bool, error) {
	query, args, err := r.sb.Update("orders").
		Set("stock_restored", true).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "stock_restored": false}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build restore claim query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to claim stock restoration: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes the order record. Items are removed by the cascade.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	return nil
}

func columnList() string {
	list := orderColumns[0]
	for _, c := range orderColumns[1:] {
		list += ", " + c
	}

	return list
}
