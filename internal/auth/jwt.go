package auth

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
)

var (
	mu         sync.RWMutex
	jwtSecret  = []byte("dev-secret-change-me")
	accessTTL  = 15 * time.Minute
	refreshTTL = 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

// Configure sets the signing secret and token lifetimes. Zero durations keep
// the current value.
func Configure(secret string, access, refresh time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if access > 0 {
		accessTTL = access
	}
	if refresh > 0 {
		refreshTTL = refresh
	}
}

func RefreshTTL() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return refreshTTL
}

func AccessTTL() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return accessTTL
}

func GenerateToken(user models.User) (string, error) {
	mu.RLock()
	secret, ttl := jwtSecret, accessTTL
	mu.RUnlock()

	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ParseToken(tokenStr string) (*jwt.Token, error) {
	mu.RLock()
	secret := jwtSecret
	mu.RUnlock()

	return jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
}

// TokenClaims parses a "Bearer <token>" Authorization header value.
func TokenClaims(authorization string) (*jwt.Token, jwt.MapClaims, error) {
	tokenStr, ok := strings.CutPrefix(authorization, "Bearer ")
	if !ok || tokenStr == "" {
		return nil, nil, ErrInvalidToken
	}

	token, err := ParseToken(tokenStr)
	if err != nil || !token.Valid {
		return nil, nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil, ErrInvalidToken
	}
	return token, claims, nil
}
