package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshStore maps an opaque refresh token to the username it was issued to.
type RefreshStore interface {
	Save(ctx context.Context, token, username string, ttl time.Duration) error
	Username(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

type refreshEntry struct {
	username string
	expires  time.Time
}

type MemoryRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]refreshEntry
}

func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{tokens: map[string]refreshEntry{}}
}

func (s *MemoryRefreshStore) Save(_ context.Context, token, username string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = refreshEntry{username: username, expires: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryRefreshStore) Username(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tokens[token]
	if !ok || time.Now().After(e.expires) {
		return "", ErrRefreshTokenNotFound
	}
	return e.username, nil
}

func (s *MemoryRefreshStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

// StartCleaner drops expired tokens every interval until ctx is done.
func (s *MemoryRefreshStore) StartCleaner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.removeExpired(time.Now())
		}
	}
}

func (s *MemoryRefreshStore) removeExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, e := range s.tokens {
		if now.After(e.expires) {
			delete(s.tokens, token)
		}
	}
}

const refreshKeyPrefix = "auth:refresh:"

// RedisRefreshStore keeps tokens as keys that expire with the token.
type RedisRefreshStore struct {
	rdb *redis.Client
}

func NewRedisRefreshStore(rdb *redis.Client) *RedisRefreshStore {
	return &RedisRefreshStore{rdb: rdb}
}

func (s *RedisRefreshStore) Save(ctx context.Context, token, username string, ttl time.Duration) error {
	return s.rdb.Set(ctx, refreshKeyPrefix+token, username, ttl).Err()
}

func (s *RedisRefreshStore) Username(ctx context.Context, token string) (string, error) {
	username, err := s.rdb.Get(ctx, refreshKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrRefreshTokenNotFound
	}
	return username, err
}

func (s *RedisRefreshStore) Revoke(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, refreshKeyPrefix+token).Err()
}
