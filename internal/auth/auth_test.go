package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(models.User{ID: 7, Username: "alice", Role: "admin"})
	require.NoError(t, err)

	_, claims, err := TokenClaims("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, float64(7), claims["sub"])
}

func TestTokenClaims_Rejects(t *testing.T) {
	_, _, err := TokenClaims("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = TokenClaims("Token abc")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": 1, "exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString(jwtSecret)
	require.NoError(t, err)
	_, _, err = TokenClaims("Bearer " + signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": 1, "exp": time.Now().Add(time.Minute).Unix(),
	})
	signed, err = foreign.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, _, err = TokenClaims("Bearer " + signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLoginAndRefresh(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(repo.NewInMemoryUserRepository(), NewMemoryRefreshStore())
	require.NoError(t, svc.EnsureUser(ctx, "admin", "secret123", "admin"))
	require.NoError(t, svc.EnsureUser(ctx, "admin", "ignored", "admin"))

	_, err := svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	pair, err := svc.Login(ctx, "admin", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound, "refresh tokens are single use")
}

func TestMemoryRefreshStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryRefreshStore()
	require.NoError(t, s.Save(ctx, "old", "alice", time.Millisecond))
	require.NoError(t, s.Save(ctx, "new", "bob", time.Hour))

	s.removeExpired(time.Now().Add(time.Second))

	_, err := s.Username(ctx, "old")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
	name, err := s.Username(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "bob", name)
}
