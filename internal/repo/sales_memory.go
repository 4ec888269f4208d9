package repo

import (
	"context"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
)

type InMemorySalesRepository struct {
	orders    *InMemoryOrderRepository
	customers *InMemoryCustomerRepository
	products  *InMemoryProductRepository
}

func NewInMemorySalesRepository() *InMemorySalesRepository {
	return &InMemorySalesRepository{}
}

func (s *InMemorySalesRepository) SetRepositories(
	orders *InMemoryOrderRepository,
	customers *InMemoryCustomerRepository,
	products *InMemoryProductRepository,
) {
	s.orders = orders
	s.customers = customers
	s.products = products
}

// SaleLines joins orders, customers and products the same way the SQL
// implementation does. Items whose customer or product no longer exists are
// dropped, matching the inner joins.
func (s *InMemorySalesRepository) SaleLines(ctx context.Context, start, end time.Time) ([]SaleLine, error) {
	customers := map[int64]models.Customer{}
	for _, c := range s.customers.snapshot() {
		customers[c.ID] = c
	}

	var lines []SaleLine
	for _, o := range s.orders.snapshot() {
		if o.OrderDate.Before(start) || o.OrderDate.After(end) {
			continue
		}
		c, ok := customers[o.CustomerID]
		if !ok {
			continue
		}
		for _, item := range o.Items {
			p, err := s.products.GetByID(ctx, item.ProductID)
			if err != nil {
				continue
			}
			line := SaleLine{
				OrderID:            o.ID,
				OrderDate:          o.OrderDate,
				CustomerID:         c.ID,
				Country:            c.Country,
				ProductID:          p.ID,
				ProductName:        p.Name,
				Quantity:           item.Quantity,
				PriceAtTimeOfOrder: item.PriceAtTimeOfOrder,
			}
			if p.Category != nil {
				name := p.Category.Name
				line.CategoryName = &name
			}
			lines = append(lines, line)
		}
	}
	return lines, nil
}
