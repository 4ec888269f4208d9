package repo

import (
	"context"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/shopspring/decimal"
)

type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (models.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error

	// ProductIDsOrderedBy returns the distinct ids of products ordered by any
	// of the given customers, ascending.
	ProductIDsOrderedBy(ctx context.Context, customerIDs []int64) ([]int64, error)
	// CustomersWhoOrdered returns the distinct ids of customers that ordered
	// any of the given products, ascending.
	CustomersWhoOrdered(ctx context.Context, productIDs []int64) ([]int64, error)

	// WithTx runs fn in a single transaction. If fn returns an error every
	// write made through tx is rolled back.
	WithTx(ctx context.Context, fn func(tx OrderTx) error) error
}

// OrderTx is the set of writes that must commit together when an order or an
// order item is created.
type OrderTx interface {
	GetOrder(ctx context.Context, id int64) (models.Order, error)
	InsertOrder(ctx context.Context, o models.Order) (models.Order, error)
	InsertItem(ctx context.Context, item models.OrderItem) (models.OrderItem, error)
	AddToTotal(ctx context.Context, orderID int64, amount decimal.Decimal) error
	// DecrementStock atomically removes qty units from the product inventory.
	// It returns ErrInvalidQuantityChange when fewer than qty units are
	// available and ErrInventoryNotFound when the product has no inventory.
	DecrementStock(ctx context.Context, productID int64, qty int) (models.Inventory, error)
}
