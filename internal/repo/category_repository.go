package repo

import (
	"context"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
)

type CategoryRepository interface {
	Create(ctx context.Context, c models.Category) (models.Category, error)
	GetByID(ctx context.Context, id int64) (models.Category, error)
	GetByName(ctx context.Context, name string) (models.Category, error)
	GetAll(ctx context.Context) ([]models.Category, error)
}

type TagRepository interface {
	Create(ctx context.Context, t models.Tag) (models.Tag, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Tag, error)
	GetAll(ctx context.Context) ([]models.Tag, error)
}
