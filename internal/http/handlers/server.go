package handlers

import (
	"context"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/analytics"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/auth"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/fulfillment"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/repo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Cache stores computed responses. A nil cache disables caching.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

var (
	productRepo   repo.ProductRepository
	categoryRepo  repo.CategoryRepository
	tagRepo       repo.TagRepository
	customerRepo  repo.CustomerRepository
	inventoryRepo repo.InventoryRepository
	orderRepo     repo.OrderRepository
	salesRepo     repo.SalesRepository

	authService    *auth.AuthService
	fulfillmentSvc *fulfillment.Service

	cache       Cache
	cacheTTL    = 5 * time.Minute
	churnWindow = analytics.DefaultChurnWindow
	taxTable    = models.NewTaxTable(decimal.RequireFromString("0.05"), nil)

	logger = zap.NewNop()
)

func SetProductRepo(r repo.ProductRepository) {
	productRepo = r
}

func SetCategoryRepo(r repo.CategoryRepository) {
	categoryRepo = r
}

func SetTagRepo(r repo.TagRepository) {
	tagRepo = r
}

func SetCustomerRepo(r repo.CustomerRepository) {
	customerRepo = r
}

func SetInventoryRepo(r repo.InventoryRepository) {
	inventoryRepo = r
}

func SetOrderRepo(r repo.OrderRepository) {
	orderRepo = r
}

func SetSalesRepo(r repo.SalesRepository) {
	salesRepo = r
}

func SetAuthService(s *auth.AuthService) {
	authService = s
}

func SetFulfillmentService(s *fulfillment.Service) {
	fulfillmentSvc = s
}

func SetCache(c Cache, ttl time.Duration) {
	cache = c
	if ttl > 0 {
		cacheTTL = ttl
	}
}

func SetChurnWindow(d time.Duration) {
	if d > 0 {
		churnWindow = d
	}
}

func SetTaxTable(t models.TaxTable) {
	taxTable = t
}

func SetLogger(l *zap.Logger) {
	logger = l
}
