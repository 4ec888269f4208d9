package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/shopspring/decimal"
)

type PostgresCustomerRepository struct {
	db *sql.DB
}

func NewPostgresCustomerRepository(db *sql.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

func (r *PostgresCustomerRepository) Create(ctx context.Context, c models.Customer) (models.Customer, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if c.RegistrationDate.IsZero() {
		c.RegistrationDate = time.Now().UTC()
	}
	query := `INSERT INTO customers (name, email, country, registration_date) VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, c.Name, c.Email, c.Country, c.RegistrationDate).Scan(&c.ID)
	if err != nil {
		return models.Customer{}, translatePgError(err)
	}
	return c, nil
}

func (r *PostgresCustomerRepository) GetByID(ctx context.Context, id int64) (models.Customer, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var c models.Customer
	err := r.db.QueryRowContext(ctx, `SELECT id, name, email, country, registration_date FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Country, &c.RegistrationDate)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Customer{}, ErrCustomerNotFound
	}
	return c, err
}

func (r *PostgresCustomerRepository) Count(ctx context.Context) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n)
	return n, err
}

func (r *PostgresCustomerRepository) CountActiveBetween(ctx context.Context, since, until time.Time) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT customer_id) FROM orders WHERE order_date >= $1 AND order_date <= $2`,
		since, until).Scan(&n)
	return n, err
}

func (r *PostgresCustomerRepository) LifetimeValue(ctx context.Context, id int64) (decimal.Decimal, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return decimal.Zero, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE customer_id = $1`, id).Scan(&total)
	return total, err
}
