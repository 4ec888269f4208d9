package handlers_integrated_test_suite

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/analytics"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/fulfillment"
	api "github.com/rogerio-castellano/ecommerce-analytics/internal/http"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/http/handlers"
	"github.com/shopspring/decimal"
)

func TestCreateOrder_RollsBackOnShortage(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	chair := mustCreateProduct(t, r, "Chair", "PG-CHR", "100.00", 2)
	lamp := mustCreateProduct(t, r, "Lamp", "PG-LMP", "30.00", 10)
	c := mustCreateCustomer(t, r, "Ana", "ana.pg@example.com", "PT")

	w := doJSON(r, http.MethodPost, "/orders", handlers.OrderRequest{CustomerID: c.ID, Items: []fulfillment.ItemRequest{
		{ProductID: lamp.ID, Quantity: 4},
		{ProductID: chair.ID, Quantity: 3},
	}})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 Conflict, got %d: %s", w.Code, w.Body.String())
	}
	if got := stockOf(t, lamp.ID); got != 10 {
		t.Errorf("expected lamp stock to be rolled back to 10, got %d", got)
	}
	if got := stockOf(t, chair.ID); got != 2 {
		t.Errorf("expected chair stock to stay 2, got %d", got)
	}

	var orders int
	database.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&orders)
	if orders != 0 {
		t.Errorf("expected no stored orders, got %d", orders)
	}
}

func TestCreateOrder_ConcurrentStock(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	p := mustCreateProduct(t, r, "Ticket", "PG-TKT", "5.00", 10)
	c := mustCreateCustomer(t, r, "Rui", "rui.pg@example.com", "PT")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		conflict int
	)
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := doJSON(r, http.MethodPost, "/orders", handlers.OrderRequest{CustomerID: c.ID, Items: []fulfillment.ItemRequest{
				{ProductID: p.ID, Quantity: 1},
			}})
			mu.Lock()
			defer mu.Unlock()
			switch w.Code {
			case http.StatusCreated:
				created++
			case http.StatusConflict:
				conflict++
			default:
				t.Errorf("unexpected status %d: %s", w.Code, w.Body.String())
			}
		}()
	}
	wg.Wait()

	if created != 10 || conflict != 15 {
		t.Errorf("expected 10 created and 15 conflicts, got %d and %d", created, conflict)
	}
	if got := stockOf(t, p.ID); got != 0 {
		t.Errorf("expected stock 0, got %d", got)
	}
}

func TestSalesHandler_Postgres(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	novel := mustCreateProduct(t, r, "Novel", "PG-NOV", "10.00", 0)
	c := mustCreateCustomer(t, r, "Eva", "eva.pg@example.com", "US")

	insertOrder(t, c.ID, novel.ID, 2, "10.00", time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC))
	insertOrder(t, c.ID, novel.ID, 1, "10.00", time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC))
	insertOrder(t, c.ID, novel.ID, 5, "10.00", time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))

	w := doJSON(r, http.MethodGet, "/sales?start_date=2024-01-01&end_date=2024-01-31", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var rows []analytics.CategoryRevenue
	if err := json.NewDecoder(w.Body).Decode(&rows); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single uncategorized row, got %+v", rows)
	}
	if rows[0].Category != nil || !rows[0].Revenue.Equal(decimal.NewFromInt(30)) {
		t.Errorf("expected uncategorized revenue 30, got %+v", rows[0])
	}
}

func TestCreateCustomer_EmailIsCaseInsensitive(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	mustCreateCustomer(t, r, "Nora", "nora.pg@example.com", "NO")
	w := doJSON(r, http.MethodPost, "/customers", handlers.CustomerRequest{Name: "Nora", Email: "NORA.pg@example.com", Country: "NO"})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for the same email in another case, got %d", w.Code)
	}
}

func TestSalesAnalytics_FutureOrdersDoNotCountAsActive(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	p := mustCreateProduct(t, r, "Calendar", "PG-CAL", "9.00", 0)
	future := mustCreateCustomer(t, r, "Future", "future.pg@example.com", "US")
	mustCreateCustomer(t, r, "Idle", "idle.pg@example.com", "US")
	insertOrder(t, future.ID, p.ID, 1, "9.00", time.Now().AddDate(1, 0, 0))

	w := doJSON(r, http.MethodGet, "/sales-analytics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var resp handlers.SalesAnalyticsResult
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.CustomerChurnRate != 1 {
		t.Errorf("expected churn 1, got %v", resp.CustomerChurnRate)
	}
}
