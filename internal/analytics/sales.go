// Package analytics computes sales reports over a date window: revenue per
// category, best sellers per country and the customer churn rate.
package analytics

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/repo"
	"github.com/shopspring/decimal"
)

// UncategorizedKey groups sales of products without a category.
const UncategorizedKey = "Uncategorized"

// DefaultChurnWindow is how far back an order keeps a customer active.
const DefaultChurnWindow = 180 * 24 * time.Hour

var ErrInvalidWindow = errors.New("start date must not be after end date")

type SalesSource interface {
	SaleLines(ctx context.Context, start, end time.Time) ([]repo.SaleLine, error)
}

type CustomerCounter interface {
	Count(ctx context.Context) (int, error)
	CountActiveBetween(ctx context.Context, since, until time.Time) (int, error)
}

// CategoryRevenue is one row of the revenue by category report. Category is
// nil for the uncategorized group.
type CategoryRevenue struct {
	Category *string         `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// Label is the category name, or UncategorizedKey.
func (c CategoryRevenue) Label() string {
	if c.Category == nil {
		return UncategorizedKey
	}
	return *c.Category
}

type CountrySales struct {
	Country       string `json:"country"`
	Product       string `json:"product"`
	TotalQuantity int    `json:"totalQuantity"`
}

// SalesAnalytics aggregates sales in the window [Start, End]; both ends are
// inclusive.
type SalesAnalytics struct {
	Start time.Time
	End   time.Time

	sales       SalesSource
	customers   CustomerCounter
	churnWindow time.Duration
}

type Option func(*SalesAnalytics)

// WithChurnWindow overrides DefaultChurnWindow.
func WithChurnWindow(d time.Duration) Option {
	return func(s *SalesAnalytics) {
		if d > 0 {
			s.churnWindow = d
		}
	}
}

func NewSalesAnalytics(start, end time.Time, sales SalesSource, customers CustomerCounter, opts ...Option) (*SalesAnalytics, error) {
	if start.After(end) {
		return nil, ErrInvalidWindow
	}
	s := &SalesAnalytics{
		Start:       start,
		End:         end,
		sales:       sales,
		customers:   customers,
		churnWindow: DefaultChurnWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RevenueByCategory sums quantity * price_at_time_of_order per category,
// highest revenue first. Ties are ordered by category name with the
// uncategorized group sorting as the empty name.
func (s *SalesAnalytics) RevenueByCategory(ctx context.Context) ([]CategoryRevenue, error) {
	lines, err := s.sales.SaleLines(ctx, s.Start, s.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	type group struct {
		category *string
		revenue  decimal.Decimal
	}
	groups := map[string]*group{}
	var uncategorized *group

	for _, l := range lines {
		subtotal := l.PriceAtTimeOfOrder.Mul(decimal.NewFromInt(int64(l.Quantity)))
		if l.CategoryName == nil {
			if uncategorized == nil {
				uncategorized = &group{revenue: decimal.Zero}
			}
			uncategorized.revenue = uncategorized.revenue.Add(subtotal)
			continue
		}
		g, ok := groups[*l.CategoryName]
		if !ok {
			name := *l.CategoryName
			g = &group{category: &name, revenue: decimal.Zero}
			groups[name] = g
		}
		g.revenue = g.revenue.Add(subtotal)
	}

	out := make([]CategoryRevenue, 0, len(groups)+1)
	for _, g := range groups {
		out = append(out, CategoryRevenue{Category: g.category, Revenue: g.revenue})
	}
	if uncategorized != nil {
		out = append(out, CategoryRevenue{Revenue: uncategorized.revenue})
	}

	slices.SortFunc(out, func(a, b CategoryRevenue) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(sortName(a.Category), sortName(b.Category))
	})
	return out, nil
}

func sortName(name *string) string {
	if name == nil {
		return ""
	}
	return *name
}

// TopSellingProductsByCountry sums quantities per (country, product name),
// highest total first, ties by country then product.
func (s *SalesAnalytics) TopSellingProductsByCountry(ctx context.Context) ([]CountrySales, error) {
	lines, err := s.sales.SaleLines(ctx, s.Start, s.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	type key struct{ country, product string }
	totals := map[key]int{}
	for _, l := range lines {
		totals[key{l.Country, l.ProductName}] += l.Quantity
	}

	out := make([]CountrySales, 0, len(totals))
	for k, qty := range totals {
		out = append(out, CountrySales{Country: k.country, Product: k.product, TotalQuantity: qty})
	}

	slices.SortFunc(out, func(a, b CountrySales) int {
		if c := cmp.Compare(b.TotalQuantity, a.TotalQuantity); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Country, b.Country); c != 0 {
			return c
		}
		return cmp.Compare(a.Product, b.Product)
	})
	return out, nil
}

// CustomerChurnRate is the share of customers without an order in the churn
// window ending at asOf. It is 0 when there are no customers.
func (s *SalesAnalytics) CustomerChurnRate(ctx context.Context, asOf time.Time) (float64, error) {
	total, err := s.customers.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	if total == 0 {
		return 0, nil
	}

	active, err := s.customers.CountActiveBetween(ctx, asOf.Add(-s.churnWindow), asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to count active customers: %w", err)
	}

	return float64(total-active) / float64(total), nil
}
