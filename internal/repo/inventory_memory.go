package repo

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
)

// InMemoryInventoryRepository keeps one inventory row per product. All stock
// changes happen under a single mutex, so a check-and-decrement cannot
// interleave with another.
type InMemoryInventoryRepository struct {
	mu     sync.Mutex
	items  []models.Inventory
	nextID int64
}

func NewInMemoryInventoryRepository() *InMemoryInventoryRepository {
	return &InMemoryInventoryRepository{
		items:  []models.Inventory{},
		nextID: 1,
	}
}

func (r *InMemoryInventoryRepository) Create(_ context.Context, inv models.Inventory) (models.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if inv.Quantity < 0 {
		return models.Inventory{}, ErrInvalidQuantityChange
	}
	for _, i := range r.items {
		if i.ProductID == inv.ProductID {
			return models.Inventory{}, ErrDuplicatedValueUnique
		}
	}
	inv.ID = r.nextID
	r.nextID++
	r.items = append(r.items, inv)
	return inv, nil
}

func (r *InMemoryInventoryRepository) GetByID(_ context.Context, id int64) (models.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, i := range r.items {
		if i.ID == id {
			return i, nil
		}
	}
	return models.Inventory{}, ErrInventoryNotFound
}

func (r *InMemoryInventoryRepository) GetByProductID(_ context.Context, productID int64) (models.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, i := range r.items {
		if i.ProductID == productID {
			return i, nil
		}
	}
	return models.Inventory{}, ErrInventoryNotFound
}

func (r *InMemoryInventoryRepository) Update(_ context.Context, inv models.Inventory) (models.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if inv.Quantity < 0 {
		return models.Inventory{}, ErrInvalidQuantityChange
	}
	for idx, i := range r.items {
		if i.ID == inv.ID {
			i.Quantity = inv.Quantity
			i.LastRestockedDate = inv.LastRestockedDate
			r.items[idx] = i
			return i, nil
		}
	}
	return models.Inventory{}, ErrInventoryNotFound
}

func (r *InMemoryInventoryRepository) InStock(_ context.Context) ([]models.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Inventory
	for _, i := range r.items {
		if i.Quantity > 0 {
			out = append(out, i)
		}
	}
	slices.SortFunc(out, func(a, b models.Inventory) int {
		if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	return out, nil
}

// adjust applies delta to the product's stock if the result stays
// non-negative.
func (r *InMemoryInventoryRepository) adjust(productID int64, delta int) (models.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx, i := range r.items {
		if i.ProductID == productID {
			if i.Quantity+delta < 0 {
				return models.Inventory{}, ErrInvalidQuantityChange
			}
			i.Quantity += delta
			r.items[idx] = i
			return i, nil
		}
	}
	return models.Inventory{}, ErrInventoryNotFound
}

func (r *InMemoryInventoryRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = []models.Inventory{}
}
