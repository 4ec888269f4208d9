package repo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/shopspring/decimal"
)

type InMemoryCustomerRepository struct {
	mu        sync.RWMutex
	customers []models.Customer
	nextID    int64
	orders    *InMemoryOrderRepository
}

func NewInMemoryCustomerRepository() *InMemoryCustomerRepository {
	return &InMemoryCustomerRepository{
		customers: []models.Customer{},
		nextID:    1,
	}
}

// SetOrderRepository links the order store used for activity and lifetime
// value queries.
func (r *InMemoryCustomerRepository) SetOrderRepository(orders *InMemoryOrderRepository) {
	r.orders = orders
}

func (r *InMemoryCustomerRepository) Create(_ context.Context, c models.Customer) (models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.customers {
		if strings.EqualFold(existing.Email, c.Email) {
			return models.Customer{}, ErrDuplicatedValueUnique
		}
	}
	if c.RegistrationDate.IsZero() {
		c.RegistrationDate = time.Now().UTC()
	}
	c.ID = r.nextID
	r.nextID++
	r.customers = append(r.customers, c)
	return c, nil
}

func (r *InMemoryCustomerRepository) GetByID(_ context.Context, id int64) (models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Customer{}, ErrCustomerNotFound
}

func (r *InMemoryCustomerRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.customers), nil
}

func (r *InMemoryCustomerRepository) CountActiveBetween(_ context.Context, since, until time.Time) (int, error) {
	if r.orders == nil {
		return 0, nil
	}
	active := map[int64]struct{}{}
	for _, o := range r.orders.snapshot() {
		if !o.OrderDate.Before(since) && !o.OrderDate.After(until) {
			active[o.CustomerID] = struct{}{}
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, c := range r.customers {
		if _, ok := active[c.ID]; ok {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryCustomerRepository) LifetimeValue(ctx context.Context, id int64) (decimal.Decimal, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	if r.orders == nil {
		return total, nil
	}
	for _, o := range r.orders.snapshot() {
		if o.CustomerID == id {
			total = total.Add(o.TotalAmount)
		}
	}
	return total, nil
}

func (r *InMemoryCustomerRepository) snapshot() []models.Customer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Customer, len(r.customers))
	copy(out, r.customers)
	return out
}

func (r *InMemoryCustomerRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers = []models.Customer{}
}
