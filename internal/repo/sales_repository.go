package repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SaleLine is an order item flattened with the order, customer, product and
// category data the sales reports group by.
type SaleLine struct {
	OrderID            int64
	OrderDate          time.Time
	CustomerID         int64
	Country            string
	ProductID          int64
	ProductName        string
	CategoryName       *string
	Quantity           int
	PriceAtTimeOfOrder decimal.Decimal
}

type SalesRepository interface {
	// SaleLines returns every order item whose order date lies in
	// [start, end], both ends inclusive.
	SaleLines(ctx context.Context, start, end time.Time) ([]SaleLine, error)
}
