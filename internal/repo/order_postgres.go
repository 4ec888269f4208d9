package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/shopspring/decimal"
)

type PostgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func getOrder(ctx context.Context, q queryer, id int64) (models.Order, error) {
	var o models.Order
	err := q.QueryRowContext(ctx, `SELECT id, customer_id, order_date, status, total_amount FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.CustomerID, &o.OrderDate, &o.Status, &o.TotalAmount)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, price_at_time_of_order
		FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.PriceAtTimeOfOrder); err != nil {
			return models.Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return getOrder(ctx, r.db, id)
}

func (r *PostgresOrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id FROM orders WHERE customer_id = $1 ORDER BY order_date, id`, customerID)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		o, err := getOrder(ctx, r.db, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *PostgresOrderRepository) ProductIDsOrderedBy(ctx context.Context, customerIDs []int64) ([]int64, error) {
	if len(customerIDs) == 0 {
		return nil, nil
	}
	return r.ids(ctx, `
		SELECT DISTINCT oi.product_id
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.customer_id = ANY($1)
		ORDER BY oi.product_id`, customerIDs)
}

func (r *PostgresOrderRepository) CustomersWhoOrdered(ctx context.Context, productIDs []int64) ([]int64, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	return r.ids(ctx, `
		SELECT DISTINCT o.customer_id
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE oi.product_id = ANY($1)
		ORDER BY o.customer_id`, productIDs)
}

func (r *PostgresOrderRepository) ids(ctx context.Context, query string, arg any) ([]int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *PostgresOrderRepository) WithTx(ctx context.Context, fn func(tx OrderTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&postgresOrderTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type postgresOrderTx struct {
	tx *sql.Tx
}

func (t *postgresOrderTx) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	return getOrder(ctx, t.tx, id)
}

func (t *postgresOrderTx) InsertOrder(ctx context.Context, o models.Order) (models.Order, error) {
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	if o.Status == "" {
		o.Status = models.OrderPending
	}
	query := `INSERT INTO orders (customer_id, order_date, status, total_amount) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := t.tx.QueryRowContext(ctx, query, o.CustomerID, o.OrderDate, o.Status, o.TotalAmount).Scan(&o.ID); err != nil {
		return models.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	o.Items = nil
	return o, nil
}

func (t *postgresOrderTx) InsertItem(ctx context.Context, item models.OrderItem) (models.OrderItem, error) {
	query := `INSERT INTO order_items (order_id, product_id, quantity, price_at_time_of_order) VALUES ($1, $2, $3, $4) RETURNING id`
	err := t.tx.QueryRowContext(ctx, query, item.OrderID, item.ProductID, item.Quantity, item.PriceAtTimeOfOrder).Scan(&item.ID)
	if err != nil {
		return models.OrderItem{}, fmt.Errorf("failed to insert order item: %w", err)
	}
	return item, nil
}

func (t *postgresOrderTx) AddToTotal(ctx context.Context, orderID int64, amount decimal.Decimal) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE orders SET total_amount = total_amount + $1 WHERE id = $2`, amount, orderID)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// DecrementStock relies on the row lock taken by UPDATE: a concurrent
// decrement of the same product waits and then re-checks quantity >= qty.
func (t *postgresOrderTx) DecrementStock(ctx context.Context, productID int64, qty int) (models.Inventory, error) {
	query := `
		UPDATE inventory
		SET quantity = quantity - $1
		WHERE product_id = $2 AND quantity >= $1
		RETURNING ` + inventoryColumns
	inv, err := scanInventory(t.tx.QueryRowContext(ctx, query, qty, productID))
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Inventory{}, err
	}

	var exists bool
	if err := t.tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM inventory WHERE product_id = $1)`, productID).Scan(&exists); err != nil {
		return models.Inventory{}, err
	}
	if !exists {
		return models.Inventory{}, ErrInventoryNotFound
	}
	return models.Inventory{}, ErrInvalidQuantityChange
}
