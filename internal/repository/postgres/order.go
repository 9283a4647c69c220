package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/daffodeal/marketplace/pkg/database"

	"github.com/daffodeal/marketplace/internal/domain"
)

// orderSelect returns orders with their line items aggregated as a JSON
// array in insertion order.
const orderSelect = `
	SELECT o.id, o.user_id, o.total_price, o.status, o.created_at,
		COALESCE(
			json_agg(json_build_object(
				'_id', i.product_id,
				'shopId', i.shop_id,
				'name', i.name,
				'qty', i.quantity,
				'discountPrice', i.price,
				'isReviewed', i.is_reviewed
			) ORDER BY i.id) FILTER (WHERE i.id IS NOT NULL),
			'[]'
		) AS cart
	FROM orders o
	LEFT JOIN order_items i ON i.order_id = o.id`

const shopOrderFilter = `
	WHERE EXISTS (SELECT 1 FROM order_items x WHERE x.order_id = o.id AND x.shop_id = $1)
	  AND o.created_at >= $2 AND o.created_at < $3`

// OrderRepository implements repository.OrderRepository on PostgreSQL.
type OrderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates an order repository.
func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// MarkLineItemReviewed flags the line item of orderID referencing productID.
func (r *OrderRepository) MarkLineItemReviewed(ctx context.Context, orderID, productID string) (matched bool, err error) {
	const query = `UPDATE order_items SET is_reviewed = TRUE WHERE order_id = $1 AND product_id = $2`
	ctx, end := database.TraceQuery(ctx, "order_items.mark_reviewed", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, orderID, productID)
	if err != nil {
		return false, fmt.Errorf("mark line item reviewed: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// ListByShopBetween returns orders of shopID created in [from, to).
func (r *OrderRepository) ListByShopBetween(ctx context.Context, shopID string, from, to time.Time) (orders []domain.Order, err error) {
	query := orderSelect + shopOrderFilter + ` GROUP BY o.id ORDER BY o.created_at DESC`
	ctx, end := database.TraceQuery(ctx, "orders.list_by_shop", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, shopID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list shop orders: %w", err)
	}
	defer rows.Close()

	orders = []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

// SalesByShopBetween counts and sums the orders of shopID in [from, to).
func (r *OrderRepository) SalesByShopBetween(ctx context.Context, shopID string, from, to time.Time) (count int, total int64, err error) {
	query := `SELECT COUNT(*), COALESCE(SUM(o.total_price), 0) FROM orders o` + shopOrderFilter
	ctx, end := database.TraceQuery(ctx, "orders.sales_by_shop", query)
	defer func() { end(err) }()

	if err = r.db.QueryRow(ctx, query, shopID, from, to).Scan(&count, &total); err != nil {
		return 0, 0, fmt.Errorf("sum shop sales: %w", err)
	}
	return count, total, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o    domain.Order
		cart []byte
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &o.CreatedAt, &cart); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(cart, &o.Cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	if o.Cart == nil {
		o.Cart = []domain.LineItem{}
	}
	return &o, nil
}
