package handlers_test_suite

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	api "github.com/rogerio-castellano/ecommerce-analytics/internal/http"
	handler "github.com/rogerio-castellano/ecommerce-analytics/internal/http/handlers"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
)

func TestRestockInventoryHandler(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	p := mustCreateProduct(r, "Globe", "GLB-1", "30.00", 1)
	inv, err := inventoryRepo.GetByProductID(t.Context(), p.ID)
	if err != nil {
		t.Fatalf("expected inventory: %v", err)
	}
	path := fmt.Sprintf("/inventory/%d", inv.ID)

	w := doJSON(r, http.MethodPost, path, handler.RestockRequest{Quantity: intPtr(20), LastRestockedDate: "2024-05-01"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var updated models.Inventory
	json.NewDecoder(w.Body).Decode(&updated)
	if updated.Quantity != 20 {
		t.Errorf("expected quantity 20, got %d", updated.Quantity)
	}
	if !updated.LastRestockedDate.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected restock date %v", updated.LastRestockedDate)
	}

	w = doJSON(r, http.MethodGet, path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var got models.Inventory
	json.NewDecoder(w.Body).Decode(&got)
	if got.Quantity != 20 || got.ProductID != p.ID {
		t.Errorf("unexpected inventory %+v", got)
	}
}

func TestRestockInventoryHandler_Invalid(t *testing.T) {
	t.Cleanup(clearAll)
	r := api.NewRouter()

	p := mustCreateProduct(r, "Vase", "VAS-1", "12.00", 3)
	inv, _ := inventoryRepo.GetByProductID(t.Context(), p.ID)
	path := fmt.Sprintf("/inventory/%d", inv.ID)

	tests := []struct {
		name string
		path string
		body handler.RestockRequest
		want int
	}{
		{"missing quantity", path, handler.RestockRequest{}, http.StatusBadRequest},
		{"negative quantity", path, handler.RestockRequest{Quantity: intPtr(-4)}, http.StatusBadRequest},
		{"bad date", path, handler.RestockRequest{Quantity: intPtr(1), LastRestockedDate: "yesterday"}, http.StatusBadRequest},
		{"unknown inventory", "/inventory/9999", handler.RestockRequest{Quantity: intPtr(1)}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}

	if got := stockOf(t, p.ID); got != 3 {
		t.Errorf("expected stock to stay 3, got %d", got)
	}
}
