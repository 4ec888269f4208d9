package repo

import (
	"context"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/shopspring/decimal"
)

type CustomerRepository interface {
	Create(ctx context.Context, c models.Customer) (models.Customer, error)
	GetByID(ctx context.Context, id int64) (models.Customer, error)
	Count(ctx context.Context) (int, error)
	// CountActiveBetween counts distinct customers with at least one order
	// dated in [since, until].
	CountActiveBetween(ctx context.Context, since, until time.Time) (int, error)
	// LifetimeValue sums total_amount over all orders of the customer.
	LifetimeValue(ctx context.Context, id int64) (decimal.Decimal, error)
}
