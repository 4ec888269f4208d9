package fulfillment_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/fulfillment"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/repo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	svc       *fulfillment.Service
	orders    *repo.InMemoryOrderRepository
	products  *repo.InMemoryProductRepository
	inventory *repo.InMemoryInventoryRepository
	customer  models.Customer

	mu     sync.Mutex
	events []models.LowStockEvent
}

func newEnv(t *testing.T, opts ...fulfillment.Option) *env {
	t.Helper()
	e := &env{
		orders:    repo.NewInMemoryOrderRepository(),
		products:  repo.NewInMemoryProductRepository(),
		inventory: repo.NewInMemoryInventoryRepository(),
	}
	e.orders.SetInventoryRepository(e.inventory)
	customers := repo.NewInMemoryCustomerRepository()

	c, err := customers.Create(context.Background(), models.Customer{Name: "John", Email: "john@example.com", Country: "US"})
	require.NoError(t, err)
	e.customer = c

	notifier := fulfillment.NotifierFunc(func(_ context.Context, ev models.LowStockEvent) error {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.events = append(e.events, ev)
		return nil
	})
	opts = append([]fulfillment.Option{fulfillment.WithNotifier(notifier)}, opts...)
	e.svc = fulfillment.NewService(e.orders, e.products, customers, e.inventory, opts...)
	return e
}

func (e *env) stocked(t *testing.T, sku, price string, qty int) (models.Product, models.Inventory) {
	t.Helper()
	ctx := context.Background()
	p, err := e.products.Create(ctx, models.Product{Name: sku, SKU: sku, Price: decimal.RequireFromString(price)})
	require.NoError(t, err)
	inv, err := e.inventory.Create(ctx, models.Inventory{ProductID: p.ID, Quantity: qty})
	require.NoError(t, err)
	return p, inv
}

func (e *env) quantity(t *testing.T, productID int64) int {
	t.Helper()
	inv, err := e.inventory.GetByProductID(context.Background(), productID)
	require.NoError(t, err)
	return inv.Quantity
}

func (e *env) lowStockEvents() []models.LowStockEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.LowStockEvent(nil), e.events...)
}

func TestPlaceOrder_DecrementsStock(t *testing.T) {
	e := newEnv(t)
	p, _ := e.stocked(t, "A", "10.00", 10)

	order, err := e.svc.PlaceOrder(context.Background(), e.customer.ID, []fulfillment.ItemRequest{{ProductID: p.ID, Quantity: 3}})
	require.NoError(t, err)

	assert.Equal(t, 7, e.quantity(t, p.ID))
	assert.Equal(t, models.OrderPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.True(t, order.Items[0].PriceAtTimeOfOrder.Equal(decimal.NewFromInt(10)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(30)))
	assert.Empty(t, e.lowStockEvents())
}

func TestPlaceOrder_InsufficientStockLeavesInventoryUntouched(t *testing.T) {
	e := newEnv(t)
	p, _ := e.stocked(t, "A", "10.00", 2)

	_, err := e.svc.PlaceOrder(context.Background(), e.customer.ID, []fulfillment.ItemRequest{{ProductID: p.ID, Quantity: 5}})
	require.ErrorIs(t, err, fulfillment.ErrInsufficientStock)

	var stockErr *fulfillment.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, p.ID, stockErr.ProductID)

	assert.Equal(t, 2, e.quantity(t, p.ID))
	orders, err := e.orders.ListByCustomer(context.Background(), e.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrder_RollsBackEarlierItems(t *testing.T) {
	e := newEnv(t)
	a, _ := e.stocked(t, "A", "1.00", 10)
	b, _ := e.stocked(t, "B", "1.00", 1)

	_, err := e.svc.PlaceOrder(context.Background(), e.customer.ID, []fulfillment.ItemRequest{
		{ProductID: a.ID, Quantity: 4},
		{ProductID: b.ID, Quantity: 2},
	})
	require.ErrorIs(t, err, fulfillment.ErrInsufficientStock)

	assert.Equal(t, 10, e.quantity(t, a.ID))
	assert.Equal(t, 1, e.quantity(t, b.ID))
	orders, err := e.orders.ListByCustomer(context.Background(), e.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrder_MissingInventoryIsOutOfStock(t *testing.T) {
	e := newEnv(t)
	p, err := e.products.Create(context.Background(), models.Product{Name: "ghost", SKU: "ghost", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	_, err = e.svc.PlaceOrder(context.Background(), e.customer.ID, []fulfillment.ItemRequest{{ProductID: p.ID, Quantity: 1}})
	assert.ErrorIs(t, err, fulfillment.ErrInsufficientStock)
}

func TestPlaceOrder_Validation(t *testing.T) {
	e := newEnv(t)
	p, _ := e.stocked(t, "A", "1.00", 10)
	ctx := context.Background()

	_, err := e.svc.PlaceOrder(ctx, e.customer.ID, nil)
	assert.ErrorIs(t, err, fulfillment.ErrEmptyOrder)

	_, err = e.svc.PlaceOrder(ctx, e.customer.ID, []fulfillment.ItemRequest{{ProductID: p.ID, Quantity: 0}})
	assert.ErrorIs(t, err, fulfillment.ErrInvalidQuantity)

	_, err = e.svc.PlaceOrder(ctx, 999, []fulfillment.ItemRequest{{ProductID: p.ID, Quantity: 1}})
	assert.ErrorIs(t, err, repo.ErrCustomerNotFound)

	_, err = e.svc.PlaceOrder(ctx, e.customer.ID, []fulfillment.ItemRequest{{ProductID: 999, Quantity: 1}})
	assert.ErrorIs(t, err, repo.ErrProductNotFound)

	assert.Equal(t, 10, e.quantity(t, p.ID))
}

func TestPlaceOrder_PriceOverride(t *testing.T) {
	e := newEnv(t)
	p, _ := e.stocked(t, "A", "1.00", 10)
	ctx := context.Background()

	for _, price := range []string{"-999.999", "0", "1.005"} {
		override := decimal.RequireFromString(price)
		_, err := e.svc.PlaceOrder(ctx, e.customer.ID, []fulfillment.ItemRequest{{ProductID: p.ID, Quantity: 1, Price: &override}})
		assert.ErrorIs(t, err, fulfillment.ErrInvalidPrice, "price %s", price)
	}
	orders, err := e.orders.ListByCustomer(ctx, e.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, 10, e.quantity(t, p.ID))

	override := decimal.RequireFromString("0.75")
	order, err := e.svc.PlaceOrder(ctx, e.customer.ID, []fulfillment.ItemRequest{{ProductID: p.ID, Quantity: 2, Price: &override}})
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("1.50")))

	bad := decimal.RequireFromString("-1")
	_, err = e.svc.AddOrderItem(ctx, order.ID, fulfillment.ItemRequest{ProductID: p.ID, Quantity: 1, Price: &bad})
	assert.ErrorIs(t, err, fulfillment.ErrInvalidPrice)
	assert.Equal(t, 8, e.quantity(t, p.ID))
}

func TestPlaceOrder_ConcurrentOrdersNeverOversell(t *testing.T) {
	e := newEnv(t)
	p, _ := e.stocked(t, "A", "1.00", 10)

	var ok, failed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.svc.PlaceOrder(context.Background(), e.customer.ID, []fulfillment.ItemRequest{{ProductID: p.ID, Quantity: 1}})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, fulfillment.ErrInsufficientStock):
				failed.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), ok.Load())
	assert.Equal(t, int32(15), failed.Load())
	assert.Equal(t, 0, e.quantity(t, p.ID))
}

func TestAddOrderItem(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, _ := e.stocked(t, "A", "2.50", 10)
	b, _ := e.stocked(t, "B", "4.00", 2)

	order, err := e.svc.PlaceOrder(ctx, e.customer.ID, []fulfillment.ItemRequest{{ProductID: a.ID, Quantity: 2}})
	require.NoError(t, err)

	snapshot := decimal.RequireFromString("3.00")
	item, err := e.svc.AddOrderItem(ctx, order.ID, fulfillment.ItemRequest{ProductID: b.ID, Quantity: 2, Price: &snapshot})
	require.NoError(t, err)
	assert.Equal(t, order.ID, item.OrderID)
	assert.True(t, item.PriceAtTimeOfOrder.Equal(snapshot))

	_, err = e.svc.AddOrderItem(ctx, order.ID, fulfillment.ItemRequest{ProductID: b.ID, Quantity: 1})
	assert.ErrorIs(t, err, fulfillment.ErrInsufficientStock)

	_, err = e.svc.AddOrderItem(ctx, 999, fulfillment.ItemRequest{ProductID: a.ID, Quantity: 1})
	assert.ErrorIs(t, err, repo.ErrOrderNotFound)
	assert.Equal(t, 8, e.quantity(t, a.ID))

	got, err := e.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, "11", got.TotalAmount.String())
}

func TestLowStockNotification(t *testing.T) {
	e := newEnv(t, fulfillment.WithThreshold(5))
	ctx := context.Background()
	p, inv := e.stocked(t, "A", "1.00", 6)

	_, err := e.svc.PlaceOrder(ctx, e.customer.ID, []fulfillment.ItemRequest{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)
	assert.Empty(t, e.lowStockEvents(), "5 is not below the threshold")

	_, err = e.svc.PlaceOrder(ctx, e.customer.ID, []fulfillment.ItemRequest{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)
	events := e.lowStockEvents()
	require.Len(t, events, 1)
	assert.Equal(t, p.ID, events[0].ProductID)
	assert.Equal(t, 4, events[0].Quantity)
	assert.Equal(t, 5, events[0].Threshold)

	_, err = e.svc.Restock(ctx, inv.ID, 50, time.Time{})
	require.NoError(t, err)
	assert.Len(t, e.lowStockEvents(), 1)
}

func TestLowStockNotifierErrorDoesNotFailSave(t *testing.T) {
	failing := fulfillment.NotifierFunc(func(context.Context, models.LowStockEvent) error {
		return errors.New("smtp down")
	})
	e := newEnv(t, fulfillment.WithNotifier(failing))
	p, _ := e.stocked(t, "A", "1.00", 3)

	_, err := e.svc.PlaceOrder(context.Background(), e.customer.ID, []fulfillment.ItemRequest{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, e.quantity(t, p.ID))
}

func TestRestock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, inv := e.stocked(t, "A", "1.00", 10)
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	updated, err := e.svc.Restock(ctx, inv.ID, 3, at)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)
	assert.Equal(t, at, updated.LastRestockedDate)
	assert.Equal(t, 3, e.quantity(t, p.ID))
	assert.Len(t, e.lowStockEvents(), 1)

	_, err = e.svc.Restock(ctx, inv.ID, -1, at)
	assert.ErrorIs(t, err, fulfillment.ErrNegativeStock)

	_, err = e.svc.Restock(ctx, 999, 1, at)
	assert.ErrorIs(t, err, repo.ErrInventoryNotFound)
}
