package repo

import (
	"context"
	"database/sql"
	"time"
)

type PostgresSalesRepository struct {
	db *sql.DB
}

func NewPostgresSalesRepository(db *sql.DB) *PostgresSalesRepository {
	return &PostgresSalesRepository{db: db}
}

func (r *PostgresSalesRepository) SaleLines(ctx context.Context, start, end time.Time) ([]SaleLine, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.order_date, c.id, c.country, p.id, p.name, cat.name,
		       oi.quantity, oi.price_at_time_of_order
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN customers c ON c.id = o.customer_id
		JOIN products p ON p.id = oi.product_id
		LEFT JOIN categories cat ON cat.id = p.category_id
		WHERE o.order_date BETWEEN $1 AND $2
		ORDER BY oi.id`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []SaleLine
	for rows.Next() {
		var (
			l       SaleLine
			catName sql.NullString
		)
		if err := rows.Scan(&l.OrderID, &l.OrderDate, &l.CustomerID, &l.Country, &l.ProductID, &l.ProductName,
			&catName, &l.Quantity, &l.PriceAtTimeOfOrder); err != nil {
			return nil, err
		}
		if catName.Valid {
			name := catName.String
			l.CategoryName = &name
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
