package repo

import (
	"context"
	"sync"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
)

type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users []models.User
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users: []models.User{},
	}
}

func (r *InMemoryUserRepository) GetByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}

	return models.User{}, ErrUserNotFound
}

func (r *InMemoryUserRepository) CreateUser(_ context.Context, u models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Username == u.Username {
			return models.User{}, ErrDuplicatedValueUnique
		}
	}

	if u.Role == "" {
		u.Role = "user"
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	u.ID = int64(len(r.users) + 1)
	r.users = append(r.users, u)
	return u, nil
}
