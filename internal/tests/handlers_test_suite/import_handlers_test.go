package handlers_test_suite

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	api "github.com/rogerio-castellano/ecommerce-analytics/internal/http"
	handler "github.com/rogerio-castellano/ecommerce-analytics/internal/http/handlers"
	"github.com/shopspring/decimal"
)

func importCSV(t *testing.T, r http.Handler, csvData, mode string) handler.ImportProductsResult {
	t.Helper()
	body, contentType := multipartCSV(csvData, "products.csv")

	path := "/products/import"
	if mode != "" {
		path += "?mode=" + mode
	}
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	var resp handler.ImportProductsResult
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestImportProductsHandler(t *testing.T) {
	r := api.NewRouter()

	t.Run("File with unique valid products", func(t *testing.T) {
		t.Cleanup(clearAll)
		csvData := `name,sku,price,quantity,category
Mouse,MOU-1,25.99,10,Peripherals
Keyboard,KEY-1,45.00,5,Peripherals`

		resp := importCSV(t, r, csvData, "")

		if resp.ImportedProductsCount != 2 {
			t.Errorf("expected 2 imported products, got %d", resp.ImportedProductsCount)
		}
		if len(resp.Errors) != 0 {
			t.Errorf("expected no errors, got %v", resp.Errors)
		}

		p, err := productRepo.GetBySKU(t.Context(), "KEY-1")
		if err != nil {
			t.Fatalf("expected KEY-1 to exist: %v", err)
		}
		if p.Category == nil || p.Category.Name != "Peripherals" {
			t.Errorf("expected category Peripherals, got %+v", p.Category)
		}
		inv, err := inventoryRepo.GetByProductID(t.Context(), p.ID)
		if err != nil || inv.Quantity != 5 {
			t.Errorf("expected stock 5, got %+v (%v)", inv, err)
		}
	})

	t.Run("File with one invalid product", func(t *testing.T) {
		t.Cleanup(clearAll)
		csvData := `name,sku,price,quantity
Mouse,MOU-1,25.99,10
InvalidProduct,BAD-1,0,3
Keyboard,KEY-1,45.00,5`

		resp := importCSV(t, r, csvData, "")

		if resp.ImportedProductsCount != 2 {
			t.Errorf("expected 2 imported products, got %d", resp.ImportedProductsCount)
		}
		if len(resp.Errors) != 1 {
			t.Fatalf("expected 1 error, got %d", len(resp.Errors))
		}
		if !strings.Contains(resp.Errors[0].Description, "row 3") {
			t.Errorf("expected error for row 3, got %v", resp.Errors[0])
		}
	})

	t.Run("Duplicated SKU in default mode (skip)", func(t *testing.T) {
		t.Cleanup(clearAll)
		csvData := `name,sku,price
Mouse,MOU-1,25.99
Keyboard,KEY-1,45.00
Mouse v2,MOU-1,19.00`

		resp := importCSV(t, r, csvData, "")

		if resp.ImportedProductsCount != 2 {
			t.Errorf("expected 2 imported products, got %d", resp.ImportedProductsCount)
		}
		if len(resp.Errors) != 1 || !strings.Contains(resp.Errors[0].Description, "already exists") {
			t.Errorf("expected an 'already exists' error, got %v", resp.Errors)
		}
		p, _ := productRepo.GetBySKU(t.Context(), "MOU-1")
		if p.Name != "Mouse" {
			t.Errorf("expected original Mouse to be kept, got %q", p.Name)
		}
	})

	t.Run("Duplicated SKU in update mode", func(t *testing.T) {
		t.Cleanup(clearAll)
		csvData := `name,sku,price,quantity
Mouse,MOU-1,25.99,10
Mouse v2,MOU-1,19.00,4`

		resp := importCSV(t, r, csvData, "update")

		if resp.ImportedProductsCount != 2 {
			t.Errorf("expected 2 imported rows, got %d", resp.ImportedProductsCount)
		}
		if len(resp.Errors) != 0 {
			t.Errorf("expected no errors, got %v", resp.Errors)
		}
		p, _ := productRepo.GetBySKU(t.Context(), "MOU-1")
		if p.Name != "Mouse v2" || !p.Price.Equal(decimal.RequireFromString("19")) {
			t.Errorf("expected updated product, got %+v", p)
		}
		inv, _ := inventoryRepo.GetByProductID(t.Context(), p.ID)
		if inv.Quantity != 4 {
			t.Errorf("expected stock 4, got %d", inv.Quantity)
		}
	})

	t.Run("Missing required column", func(t *testing.T) {
		body, contentType := multipartCSV("name,price\nMouse,1.00", "products.csv")
		req := httptest.NewRequest(http.MethodPost, "/products/import", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 Bad Request, got %d", w.Code)
		}
	})

	t.Run("Missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/products/import", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 Bad Request, got %d", w.Code)
		}
	})
}
