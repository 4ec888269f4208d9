package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

type AuthService struct {
	users   repo.UserRepository
	refresh RefreshStore
}

func NewAuthService(users repo.UserRepository, refresh RefreshStore) *AuthService {
	return &AuthService{users: users, refresh: refresh}
}

// Register stores a user with a bcrypt hash of password.
func (a *AuthService) Register(ctx context.Context, username, password, role string) (models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	return a.users.CreateUser(ctx, models.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         role,
	})
}

// EnsureUser registers username unless it already exists.
func (a *AuthService) EnsureUser(ctx context.Context, username, password, role string) error {
	_, err := a.users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrUserNotFound) {
		return err
	}
	_, err = a.Register(ctx, username, password, role)
	if errors.Is(err, repo.ErrDuplicatedValueUnique) {
		return nil
	}
	return err
}

func (a *AuthService) Login(ctx context.Context, username, password string) (TokenPair, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrUserNotFound) {
		return TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return TokenPair{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	return a.issue(ctx, user)
}

// Refresh exchanges a refresh token for a new pair. The old refresh token is
// revoked.
func (a *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	username, err := a.refresh.Username(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return TokenPair{}, err
	}
	if err := a.refresh.Revoke(ctx, refreshToken); err != nil {
		return TokenPair{}, err
	}
	return a.issue(ctx, user)
}

func (a *AuthService) issue(ctx context.Context, user models.User) (TokenPair, error) {
	access, err := GenerateToken(user)
	if err != nil {
		return TokenPair{}, fmt.Errorf("could not generate token: %w", err)
	}
	refresh := uuid.NewString()
	if err := a.refresh.Save(ctx, refresh, user.Username, RefreshTTL()); err != nil {
		return TokenPair{}, fmt.Errorf("could not store refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
