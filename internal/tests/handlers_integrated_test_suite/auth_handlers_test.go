package handlers_integrated_test_suite

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/auth"
	api "github.com/rogerio-castellano/ecommerce-analytics/internal/http"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/http/handlers"
	rl "github.com/rogerio-castellano/ecommerce-analytics/internal/http/rate_limiter"
	"github.com/shopspring/decimal"
)

func runWithVisitorCleanup(t *testing.T, name string, testFunc func(t *testing.T)) {
	t.Run(name, func(t *testing.T) {
		rl.CleanupAllVisitors()
		testFunc(t)
	})
}

func login(r http.Handler, username, password string) (*httptest.ResponseRecorder, handlers.TokenResult) {
	body, _ := json.Marshal(handlers.CredentialsRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/token", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp handlers.TokenResult
	_ = json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp)
	return w, resp
}

func TestAuthFlow(t *testing.T) {
	r := api.NewRouter()

	runWithVisitorCleanup(t, "Login with valid credentials", func(t *testing.T) {
		w, resp := login(r, "admin", "secret")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		if resp.Access == "" {
			t.Error("expected access token in response")
		}
		if resp.Refresh == "" {
			t.Error("expected refresh token in response")
		}
	})

	runWithVisitorCleanup(t, "Login with wrong password is rejected", func(t *testing.T) {
		w, _ := login(r, "admin", "wrong")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 Unauthorized, got %d", w.Code)
		}
	})

	runWithVisitorCleanup(t, "Users stored in the database can log in but not edit the catalog", func(t *testing.T) {
		t.Cleanup(clearAllUsersExceptAdmin)
		svc := auth.NewAuthService(userRepo, auth.NewMemoryRefreshStore())
		if _, err := svc.Register(context.Background(), "analyst", "analyst-pass", "user"); err != nil {
			t.Fatalf("register: %v", err)
		}

		w, resp := login(r, "analyst", "analyst-pass")
		if w.Code != http.StatusOK || resp.Access == "" {
			t.Fatalf("expected a token, got %d", w.Code)
		}

		body, _ := json.Marshal(handlers.ProductRequest{Name: "Forbidden", SKU: "FRB-1", Price: decimal.NewFromInt(1)})
		req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+resp.Access)
		pw := httptest.NewRecorder()
		r.ServeHTTP(pw, req)
		if pw.Code != http.StatusForbidden {
			t.Errorf("expected 403 Forbidden for a non admin, got %d", pw.Code)
		}
	})

	runWithVisitorCleanup(t, "Protected route without token is rejected", func(t *testing.T) {
		body, _ := json.Marshal(handlers.ProductRequest{Name: "AuthBox", SKU: "AUTH-1", Price: decimal.NewFromInt(999)})
		req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 Unauthorized, got %d", w.Code)
		}
	})

	runWithVisitorCleanup(t, "Protected route with valid token succeeds", func(t *testing.T) {
		t.Cleanup(clearAll)
		_, resp := login(r, "admin", "secret")

		body, _ := json.Marshal(handlers.ProductRequest{Name: "SecureProduct", SKU: "SEC-1", Price: decimal.NewFromInt(10)})
		req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+resp.Access)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201 Created, got %d", w.Code)
		}
	})

	runWithVisitorCleanup(t, "Refresh token rotates once", func(t *testing.T) {
		_, first := login(r, "admin", "secret")

		refresh := func(tok string) int {
			body, _ := json.Marshal(handlers.RefreshRequest{Refresh: tok})
			req := httptest.NewRequest(http.MethodPost, "/token/refresh", bytes.NewReader(body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			return w.Code
		}

		if code := refresh(first.Refresh); code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", code)
		}
		if code := refresh(first.Refresh); code != http.StatusUnauthorized {
			t.Errorf("expected 401 on reuse, got %d", code)
		}
	})

	t.Run("Malformed JSON returns 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(`{invalid`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 Bad Request, got %d", w.Code)
		}
	})
}
