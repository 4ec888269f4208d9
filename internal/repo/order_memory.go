package repo

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/shopspring/decimal"
)

type InMemoryOrderRepository struct {
	mu         sync.RWMutex
	txMu       sync.Mutex
	orders     []models.Order
	nextID     int64
	nextItemID int64
	inventory  *InMemoryInventoryRepository
}

func NewInMemoryOrderRepository() *InMemoryOrderRepository {
	return &InMemoryOrderRepository{
		orders:     []models.Order{},
		nextID:     1,
		nextItemID: 1,
	}
}

// SetInventoryRepository links the stock store that DecrementStock works on.
func (r *InMemoryOrderRepository) SetInventoryRepository(inv *InMemoryInventoryRepository) {
	r.inventory = inv
}

// AddOrder stores an order and its items as is, without touching stock.
// Useful to seed historical data.
func (r *InMemoryOrderRepository) AddOrder(o models.Order) models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	o.ID = r.nextID
	r.nextID++
	if o.Status == "" {
		o.Status = models.OrderPending
	}
	items := make([]models.OrderItem, len(o.Items))
	for i, item := range o.Items {
		item.ID = r.nextItemID
		item.OrderID = o.ID
		r.nextItemID++
		items[i] = item
	}
	o.Items = items
	r.orders = append(r.orders, o)
	return o
}

func (r *InMemoryOrderRepository) GetByID(_ context.Context, id int64) (models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.ID == id {
			return cloneOrder(o), nil
		}
	}
	return models.Order{}, ErrOrderNotFound
}

func (r *InMemoryOrderRepository) ListByCustomer(_ context.Context, customerID int64) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (r *InMemoryOrderRepository) UpdateStatus(_ context.Context, id int64, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, o := range r.orders {
		if o.ID == id {
			r.orders[i].Status = status
			return nil
		}
	}
	return ErrOrderNotFound
}

func (r *InMemoryOrderRepository) ProductIDsOrderedBy(_ context.Context, customerIDs []int64) ([]int64, error) {
	seen := map[int64]struct{}{}
	for _, o := range r.snapshot() {
		if !slices.Contains(customerIDs, o.CustomerID) {
			continue
		}
		for _, item := range o.Items {
			seen[item.ProductID] = struct{}{}
		}
	}
	return sortedKeys(seen), nil
}

func (r *InMemoryOrderRepository) CustomersWhoOrdered(_ context.Context, productIDs []int64) ([]int64, error) {
	seen := map[int64]struct{}{}
	for _, o := range r.snapshot() {
		for _, item := range o.Items {
			if slices.Contains(productIDs, item.ProductID) {
				seen[o.CustomerID] = struct{}{}
				break
			}
		}
	}
	return sortedKeys(seen), nil
}

func (r *InMemoryOrderRepository) WithTx(ctx context.Context, fn func(tx OrderTx) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	tx := &inMemoryOrderTx{repo: r}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// snapshot returns a deep copy of all orders.
func (r *InMemoryOrderRepository) snapshot() []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, len(r.orders))
	for i, o := range r.orders {
		out[i] = cloneOrder(o)
	}
	return out
}

func (r *InMemoryOrderRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = []models.Order{}
}

type inMemoryOrderTx struct {
	repo *InMemoryOrderRepository
	undo []func()
}

func (tx *inMemoryOrderTx) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	return tx.repo.GetByID(ctx, id)
}

func (tx *inMemoryOrderTx) InsertOrder(_ context.Context, o models.Order) (models.Order, error) {
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	o.Items = nil
	created := tx.repo.AddOrder(o)
	tx.undo = append(tx.undo, func() { tx.repo.remove(created.ID) })
	return created, nil
}

func (tx *inMemoryOrderTx) InsertItem(_ context.Context, item models.OrderItem) (models.OrderItem, error) {
	r := tx.repo
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, o := range r.orders {
		if o.ID != item.OrderID {
			continue
		}
		item.ID = r.nextItemID
		r.nextItemID++
		r.orders[i].Items = append(r.orders[i].Items, item)
		itemID := item.ID
		tx.undo = append(tx.undo, func() { r.removeItem(item.OrderID, itemID) })
		return item, nil
	}
	return models.OrderItem{}, ErrOrderNotFound
}

func (tx *inMemoryOrderTx) AddToTotal(_ context.Context, orderID int64, amount decimal.Decimal) error {
	r := tx.repo
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, o := range r.orders {
		if o.ID == orderID {
			r.orders[i].TotalAmount = o.TotalAmount.Add(amount)
			tx.undo = append(tx.undo, func() { r.addToTotal(orderID, amount.Neg()) })
			return nil
		}
	}
	return ErrOrderNotFound
}

func (tx *inMemoryOrderTx) DecrementStock(_ context.Context, productID int64, qty int) (models.Inventory, error) {
	if tx.repo.inventory == nil {
		return models.Inventory{}, ErrInventoryNotFound
	}
	inv, err := tx.repo.inventory.adjust(productID, -qty)
	if err != nil {
		return models.Inventory{}, err
	}
	tx.undo = append(tx.undo, func() { _, _ = tx.repo.inventory.adjust(productID, qty) })
	return inv, nil
}

func (tx *inMemoryOrderTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
}

func (r *InMemoryOrderRepository) remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = slices.DeleteFunc(r.orders, func(o models.Order) bool { return o.ID == id })
}

func (r *InMemoryOrderRepository) removeItem(orderID, itemID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.orders {
		if o.ID == orderID {
			r.orders[i].Items = slices.DeleteFunc(o.Items, func(it models.OrderItem) bool { return it.ID == itemID })
		}
	}
}

func (r *InMemoryOrderRepository) addToTotal(orderID int64, amount decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.orders {
		if o.ID == orderID {
			r.orders[i].TotalAmount = o.TotalAmount.Add(amount)
		}
	}
}

func cloneOrder(o models.Order) models.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

func sortedKeys(m map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
