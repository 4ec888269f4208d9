package handlers

import (
	"errors"
	"net/http"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/auth"
	"go.uber.org/zap"
)

// TokenHandler godoc
// @Summary Authenticate user and return an access and a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "username and password"
// @Success 200 {object} TokenResult
// @Failure 400 {string} string "Invalid input"
// @Failure 401 {string} string "Unauthorized"
// @Router /token [post]
func TokenHandler(w http.ResponseWriter, r *http.Request) {
	var credentials CredentialsRequest
	if err := readJSON(w, r, &credentials); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if credentials.Username == "" || credentials.Password == "" {
		http.Error(w, "Missing credentials", http.StatusBadRequest)
		return
	}

	pair, err := authService.Login(r.Context(), credentials.Username, credentials.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		logger.Error("login failed", zap.Error(err))
		http.Error(w, "could not generate token", http.StatusInternalServerError)
		return
	}

	respond(w, http.StatusOK, TokenResult{Access: pair.AccessToken, Refresh: pair.RefreshToken})
}

// RefreshTokenHandler godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body RefreshRequest true "refresh token"
// @Success 200 {object} TokenResult
// @Failure 400 {string} string "Invalid input"
// @Failure 401 {string} string "Unauthorized"
// @Router /token/refresh [post]
func RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := readJSON(w, r, &req); err != nil || req.Refresh == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	pair, err := authService.Refresh(r.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshTokenNotFound) {
			http.Error(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		logger.Error("token refresh failed", zap.Error(err))
		http.Error(w, "could not refresh token", http.StatusInternalServerError)
		return
	}

	respond(w, http.StatusOK, TokenResult{Access: pair.AccessToken, Refresh: pair.RefreshToken})
}
