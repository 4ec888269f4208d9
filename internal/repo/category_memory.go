package repo

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
)

type InMemoryCategoryRepository struct {
	mu         sync.RWMutex
	categories []models.Category
}

func NewInMemoryCategoryRepository() *InMemoryCategoryRepository {
	return &InMemoryCategoryRepository{categories: []models.Category{}}
}

func (r *InMemoryCategoryRepository) Create(_ context.Context, c models.Category) (models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.ID = int64(len(r.categories) + 1)
	r.categories = append(r.categories, c)
	return c, nil
}

func (r *InMemoryCategoryRepository) GetByID(_ context.Context, id int64) (models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Category{}, ErrCategoryNotFound
}

func (r *InMemoryCategoryRepository) GetByName(_ context.Context, name string) (models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.categories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return models.Category{}, ErrCategoryNotFound
}

func (r *InMemoryCategoryRepository) GetAll(_ context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.categories), nil
}

type InMemoryTagRepository struct {
	mu   sync.RWMutex
	tags []models.Tag
}

func NewInMemoryTagRepository() *InMemoryTagRepository {
	return &InMemoryTagRepository{tags: []models.Tag{}}
}

func (r *InMemoryTagRepository) Create(_ context.Context, t models.Tag) (models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = int64(len(r.tags) + 1)
	r.tags = append(r.tags, t)
	return t, nil
}

func (r *InMemoryTagRepository) GetByIDs(_ context.Context, ids []int64) ([]models.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Tag
	for _, t := range r.tags {
		if slices.Contains(ids, t.ID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *InMemoryTagRepository) GetAll(_ context.Context) ([]models.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.tags), nil
}
