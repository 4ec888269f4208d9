package handlers_test_suite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/auth"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/fulfillment"
	api "github.com/rogerio-castellano/ecommerce-analytics/internal/http"
	handler "github.com/rogerio-castellano/ecommerce-analytics/internal/http/handlers"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/repo"
	"github.com/shopspring/decimal"
)

var (
	token         string
	productRepo   *repo.InMemoryProductRepository
	customerRepo  *repo.InMemoryCustomerRepository
	inventoryRepo *repo.InMemoryInventoryRepository
	orderRepo     *repo.InMemoryOrderRepository
	categoryRepo  *repo.InMemoryCategoryRepository
	authService   *auth.AuthService
)

func init() {
	setupTestRepos("secret")
	r := api.NewRouter()

	var err error
	token, err = generateToken(r, "admin", "secret")
	if err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
}

func setupTestRepos(password string) {
	productRepo = repo.NewInMemoryProductRepository()
	customerRepo = repo.NewInMemoryCustomerRepository()
	inventoryRepo = repo.NewInMemoryInventoryRepository()
	orderRepo = repo.NewInMemoryOrderRepository()
	categoryRepo = repo.NewInMemoryCategoryRepository()
	salesRepo := repo.NewInMemorySalesRepository()

	productRepo.SetInventoryRepository(inventoryRepo)
	customerRepo.SetOrderRepository(orderRepo)
	orderRepo.SetInventoryRepository(inventoryRepo)
	salesRepo.SetRepositories(orderRepo, customerRepo, productRepo)

	handler.SetProductRepo(productRepo)
	handler.SetCategoryRepo(categoryRepo)
	handler.SetTagRepo(repo.NewInMemoryTagRepository())
	handler.SetCustomerRepo(customerRepo)
	handler.SetInventoryRepo(inventoryRepo)
	handler.SetOrderRepo(orderRepo)
	handler.SetSalesRepo(salesRepo)
	handler.SetTaxTable(models.NewTaxTable(decimal.RequireFromString("0.05"), map[string]decimal.Decimal{
		"US": decimal.RequireFromString("0.07"),
	}))
	handler.SetFulfillmentService(fulfillment.NewService(orderRepo, productRepo, customerRepo, inventoryRepo))

	authService = auth.NewAuthService(repo.NewInMemoryUserRepository(), auth.NewMemoryRefreshStore())
	handler.SetAuthService(authService)
	if _, err := authService.Register(context.Background(), "admin", password, "admin"); err != nil {
		panic(fmt.Sprintf("error creating admin: %v", err))
	}
}

func clearAll() {
	orderRepo.Clear()
	inventoryRepo.Clear()
	productRepo.Clear()
	customerRepo.Clear()
}

func generateToken(r http.Handler, username, password string) (string, error) {
	payload := handler.CredentialsRequest{Username: username, Password: password}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/token", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp handler.TokenResult
	err := json.NewDecoder(w.Body).Decode(&resp)
	if err != nil {
		return "", fmt.Errorf("token decoding failed: %v", err)
	}
	return resp.Access, nil
}

func doJSON(r http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createProduct(r http.Handler, p handler.ProductRequest) *httptest.ResponseRecorder {
	return doJSON(r, http.MethodPost, "/products", p)
}

func mustCreateProduct(r http.Handler, name, sku, price string, quantity int) handler.ProductResponse {
	w := createProduct(r, handler.ProductRequest{
		Name:     name,
		SKU:      sku,
		Price:    decimal.RequireFromString(price),
		Quantity: &quantity,
	})
	if w.Code != http.StatusCreated {
		panic(fmt.Sprintf("creating product %s: status %d: %s", sku, w.Code, w.Body.String()))
	}
	var resp handler.ProductResponse
	_ = json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

func mustCreateCustomer(r http.Handler, name, email, country string) models.Customer {
	w := doJSON(r, http.MethodPost, "/customers", handler.CustomerRequest{Name: name, Email: email, Country: country})
	if w.Code != http.StatusCreated {
		panic(fmt.Sprintf("creating customer %s: status %d: %s", email, w.Code, w.Body.String()))
	}
	var c models.Customer
	_ = json.NewDecoder(w.Body).Decode(&c)
	return c
}

func placeOrder(r http.Handler, customerID int64, items ...fulfillment.ItemRequest) *httptest.ResponseRecorder {
	return doJSON(r, http.MethodPost, "/orders", handler.OrderRequest{CustomerID: customerID, Items: items})
}

// seedOrder stores a historical order directly, bypassing stock.
func seedOrder(customerID int64, at time.Time, items ...models.OrderItem) models.Order {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return orderRepo.AddOrder(models.Order{CustomerID: customerID, OrderDate: at, TotalAmount: total, Items: items})
}

func multipartCSV(csvContent string, filename string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, _ := writer.CreateFormFile("file", filename)
	part.Write([]byte(csvContent))

	writer.Close()
	return &buf, writer.FormDataContentType()
}
