package recommend_test

import (
	"context"
	"testing"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/recommend"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/repo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	products  *repo.InMemoryProductRepository
	orders    *repo.InMemoryOrderRepository
	inventory *repo.InMemoryInventoryRepository

	electronics, books *models.Category
	laptop, phone, tablet, novel, cookbook, loose models.Product
}

// newFixture builds a catalog where customer 1 bought a laptop, customer 2
// bought a laptop and a novel, and customer 3 bought a cookbook.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		products:  repo.NewInMemoryProductRepository(),
		orders:    repo.NewInMemoryOrderRepository(),
		inventory: repo.NewInMemoryInventoryRepository(),
	}
	categories := repo.NewInMemoryCategoryRepository()

	cat := func(name string) *models.Category {
		c, err := categories.Create(ctx, models.Category{Name: name})
		require.NoError(t, err)
		return &c
	}
	prod := func(name string, c *models.Category) models.Product {
		p, err := f.products.Create(ctx, models.Product{Name: name, SKU: name, Price: decimal.NewFromInt(10), Category: c})
		require.NoError(t, err)
		return p
	}

	f.electronics, f.books = cat("Electronics"), cat("Books")
	f.laptop = prod("laptop", f.electronics)
	f.phone = prod("phone", f.electronics)
	f.tablet = prod("tablet", f.electronics)
	f.novel = prod("novel", f.books)
	f.cookbook = prod("cookbook", f.books)
	f.loose = prod("loose", nil)

	order := func(customerID int64, products ...models.Product) {
		var items []models.OrderItem
		for _, p := range products {
			items = append(items, models.OrderItem{ProductID: p.ID, Quantity: 1, PriceAtTimeOfOrder: p.Price})
		}
		f.orders.AddOrder(models.Order{CustomerID: customerID, OrderDate: time.Now(), Items: items})
	}
	order(1, f.laptop)
	order(1, f.laptop)
	order(2, f.laptop, f.novel)
	order(3, f.cookbook)
	return f
}

func (f *fixture) engine(customerID int64) *recommend.Engine {
	return recommend.NewEngine(customerID, f.orders, f.products, f.inventory)
}

func names(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestSuggestFromOrderHistory(t *testing.T) {
	f := newFixture(t)

	got, err := f.engine(1).SuggestFromOrderHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"phone", "tablet"}, names(got))

	got, err = f.engine(2).SuggestFromOrderHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"phone", "tablet", "cookbook"}, names(got))
}

func TestSuggestFromOrderHistory_UncategorizedAndNoHistory(t *testing.T) {
	f := newFixture(t)
	f.orders.AddOrder(models.Order{CustomerID: 9, Items: []models.OrderItem{{ProductID: f.loose.ID, Quantity: 1}}})

	got, err := f.engine(9).SuggestFromOrderHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = f.engine(42).SuggestFromOrderHistory(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSuggestFromSimilarCustomers(t *testing.T) {
	f := newFixture(t)

	got, err := f.engine(1).SuggestFromSimilarCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"novel"}, names(got))

	got, err = f.engine(3).SuggestFromSimilarCustomers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got, "nobody else bought a cookbook")
}

func TestSuggestions_NeverIncludeOrderedProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		ordered, err := f.orders.ProductIDsOrderedBy(ctx, []int64{id})
		require.NoError(t, err)

		e := f.engine(id)
		history, err := e.SuggestFromOrderHistory(ctx)
		require.NoError(t, err)
		similar, err := e.SuggestFromSimilarCustomers(ctx)
		require.NoError(t, err)

		for _, p := range append(history, similar...) {
			assert.NotContains(t, ordered, p.ID, "customer %d got product %s", id, p.Name)
		}
	}
}

func TestSuggestBasedOnInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, inv := range []models.Inventory{
		{ProductID: f.phone.ID, Quantity: 3},
		{ProductID: f.novel.ID, Quantity: 40},
		{ProductID: f.tablet.ID, Quantity: 0},
		{ProductID: f.laptop.ID, Quantity: 3},
	} {
		_, err := f.inventory.Create(ctx, inv)
		require.NoError(t, err)
	}

	got, err := f.engine(42).SuggestBasedOnInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"novel", "laptop", "phone"}, names(got))

	again, err := f.engine(42).SuggestBasedOnInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestAuto_FallsBackToInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.inventory.Create(ctx, models.Inventory{ProductID: f.phone.ID, Quantity: 8})
	require.NoError(t, err)

	got, err := f.engine(42).Auto(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"phone"}, names(got))

	got, err = f.engine(1).Auto(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"phone", "tablet", "novel"}, names(got))
}

func TestParseStrategy(t *testing.T) {
	s, err := recommend.ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, recommend.StrategySimilar, s)

	s, err = recommend.ParseStrategy("inventory")
	require.NoError(t, err)
	assert.Equal(t, recommend.StrategyInventory, s)

	_, err = recommend.ParseStrategy("random")
	assert.Error(t, err)
}
