package repo

import (
	"context"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
)

// ProductRepository defines the interface for product data operations.
type ProductRepository interface {
	Create(ctx context.Context, product models.Product) (models.Product, error)
	GetByID(ctx context.Context, id int64) (models.Product, error)
	GetBySKU(ctx context.Context, sku string) (models.Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	GetByCategoryIDs(ctx context.Context, categoryIDs []int64) ([]models.Product, error)
	Filter(ctx context.Context, pf ProductFilter) ([]models.Product, int, error)
	Update(ctx context.Context, product models.Product) (models.Product, error)
	Delete(ctx context.Context, id int64) error
}
