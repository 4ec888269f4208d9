package handlers_test_suite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/fulfillment"
	api "github.com/rogerio-castellano/ecommerce-analytics/internal/http"
	handler "github.com/rogerio-castellano/ecommerce-analytics/internal/http/handlers"
	"github.com/shopspring/decimal"
)

func postJSON(r http.Handler, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTokenHandler(t *testing.T) {
	r := api.NewRouter()

	tests := []struct {
		name  string
		creds handler.CredentialsRequest
		want  int
	}{
		{"valid", handler.CredentialsRequest{Username: "admin", Password: "secret"}, http.StatusOK},
		{"wrong password", handler.CredentialsRequest{Username: "admin", Password: "nope"}, http.StatusUnauthorized},
		{"unknown user", handler.CredentialsRequest{Username: "ghost", Password: "secret"}, http.StatusUnauthorized},
		{"missing credentials", handler.CredentialsRequest{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/token", tt.creds)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestRefreshTokenHandler(t *testing.T) {
	r := api.NewRouter()

	w := postJSON(r, "/token", handler.CredentialsRequest{Username: "admin", Password: "secret"})
	var first handler.TokenResult
	json.NewDecoder(w.Body).Decode(&first)
	if first.Refresh == "" {
		t.Fatal("expected a refresh token")
	}

	w = postJSON(r, "/token/refresh", handler.RefreshRequest{Refresh: first.Refresh})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var second handler.TokenResult
	json.NewDecoder(w.Body).Decode(&second)
	if second.Access == "" || second.Refresh == "" || second.Refresh == first.Refresh {
		t.Errorf("expected a new token pair, got %+v", second)
	}

	// Refresh tokens are single use.
	w = postJSON(r, "/token/refresh", handler.RefreshRequest{Refresh: first.Refresh})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 when reusing a refresh token, got %d", w.Code)
	}

	w = postJSON(r, "/token/refresh", handler.RefreshRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without a refresh token, got %d", w.Code)
	}
}

func TestCatalogChangesRequireAdmin(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	if err := authService.EnsureUser(t.Context(), "clerk", "clerk-pass", "user"); err != nil {
		t.Fatalf("register: %v", err)
	}
	userToken, err := generateToken(r, "clerk", "clerk-pass")
	if err != nil || userToken == "" {
		t.Fatalf("expected a token for clerk: %v", err)
	}

	p := mustCreateProduct(r, "Stapler", "STP-1", "8.00", 5)
	inv, _ := inventoryRepo.GetByProductID(t.Context(), p.ID)
	customer := mustCreateCustomer(r, "Clerk Customer", "clerk.customer@example.com", "US")

	asUser := func(method, path string, payload any) int {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+userToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	forbidden := []struct {
		method, path string
		payload      any
	}{
		{http.MethodPost, "/products", handler.ProductRequest{Name: "Glue", SKU: "GLU-1", Price: decimal.NewFromInt(2)}},
		{http.MethodPut, fmt.Sprintf("/products/%d", p.ID), handler.ProductRequest{Name: "Stapler", SKU: "STP-1", Price: decimal.NewFromInt(1)}},
		{http.MethodDelete, fmt.Sprintf("/products/%d", p.ID), nil},
		{http.MethodPost, fmt.Sprintf("/inventory/%d", inv.ID), handler.RestockRequest{Quantity: intPtr(100)}},
		{http.MethodPost, "/categories", handler.NameRequest{Name: "Office"}},
		{http.MethodPost, "/tags", handler.NameRequest{Name: "sale"}},
	}
	for _, tt := range forbidden {
		if code := asUser(tt.method, tt.path, tt.payload); code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403 Forbidden, got %d", tt.method, tt.path, code)
		}
	}
	if got := stockOf(t, p.ID); got != 5 {
		t.Errorf("expected stock to stay 5, got %d", got)
	}

	order := handler.OrderRequest{CustomerID: customer.ID, Items: []fulfillment.ItemRequest{{ProductID: p.ID, Quantity: 1}}}
	if code := asUser(http.MethodPost, "/orders", order); code != http.StatusCreated {
		t.Errorf("expected users to place orders, got %d", code)
	}
	if code := asUser(http.MethodGet, fmt.Sprintf("/inventory/%d", inv.ID), nil); code != http.StatusOK {
		t.Errorf("expected users to read inventory, got %d", code)
	}
}
