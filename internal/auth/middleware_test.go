package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gearshop/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoleFetcher is a mock implementation of RoleFetcher
type mockRoleFetcher struct {
	role models.Role
	err  error
}

func (m *mockRoleFetcher) GetRoleByID(ctx context.Context, userID int) (models.Role, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.role, nil
}

func TestMiddleware(t *testing.T) {
	tg := NewTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentity(r.Context())
		require.True(t, ok)
		assert.NotZero(t, identity.UserID)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid bearer token", func(t *testing.T) {
		accessToken, _, err := tg.GenerateTokens(5, models.RoleUser)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken)
		rec := httptest.NewRecorder()

		Middleware(tg)(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
		rec := httptest.NewRecorder()

		Middleware(tg)(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "authentication required")
	})

	t.Run("header without bearer prefix", func(t *testing.T) {
		accessToken, _, err := tg.GenerateTokens(5, models.RoleUser)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
		req.Header.Set("Authorization", accessToken)
		rec := httptest.NewRecorder()

		Middleware(tg)(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()

		Middleware(tg)(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid or expired token")
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenGenerator("access-secret", "refresh-secret", -1*time.Minute, 7*24*time.Hour)
		accessToken, _, err := expired.GenerateTokens(5, models.RoleUser)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken)
		rec := httptest.NewRecorder()

		Middleware(tg)(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid or expired token")
	})

	t.Run("refresh token rejected on access routes", func(t *testing.T) {
		_, refreshToken, err := tg.GenerateTokens(5, models.RoleUser)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
		req.Header.Set("Authorization", "Bearer "+refreshToken)
		rec := httptest.NewRecorder()

		Middleware(tg)(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("identity from token claims", func(t *testing.T) {
		accessToken, _, err := tg.GenerateTokens(77, models.RoleAdmin)
		require.NoError(t, err)

		var got Identity
		capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = GetIdentity(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken)
		rec := httptest.NewRecorder()

		Middleware(tg)(capture).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 77, got.UserID)
		assert.Equal(t, models.RoleAdmin, got.Role)
	})
}

func TestAdminMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	withIdentity := func(req *http.Request, identity Identity) *http.Request {
		ctx := context.WithValue(req.Context(), identityKey, identity)
		return req.WithContext(ctx)
	}

	t.Run("admin role from storage", func(t *testing.T) {
		roles := &mockRoleFetcher{role: models.RoleAdmin}

		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req = withIdentity(req, Identity{UserID: 1, Role: models.RoleAdmin})
		rec := httptest.NewRecorder()

		AdminMiddleware(roles)(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing identity", func(t *testing.T) {
		roles := &mockRoleFetcher{role: models.RoleAdmin}

		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		rec := httptest.NewRecorder()

		AdminMiddleware(roles)(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-admin role", func(t *testing.T) {
		roles := &mockRoleFetcher{role: models.RoleUser}

		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req = withIdentity(req, Identity{UserID: 2, Role: models.RoleUser})
		rec := httptest.NewRecorder()

		AdminMiddleware(roles)(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "insufficient permissions")
	})

	t.Run("stale admin token after role downgrade", func(t *testing.T) {
		// The token still claims admin but storage says the user was demoted.
		roles := &mockRoleFetcher{role: models.RoleUser}

		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req = withIdentity(req, Identity{UserID: 3, Role: models.RoleAdmin})
		rec := httptest.NewRecorder()

		AdminMiddleware(roles)(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("user no longer exists", func(t *testing.T) {
		roles := &mockRoleFetcher{err: errors.New("user not found")}

		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req = withIdentity(req, Identity{UserID: 4, Role: models.RoleAdmin})
		rec := httptest.NewRecorder()

		AdminMiddleware(roles)(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("storage failure is not an authentication failure", func(t *testing.T) {
		roles := &mockRoleFetcher{err: errors.New("connection refused")}

		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req = withIdentity(req, Identity{UserID: 5, Role: models.RoleAdmin})
		rec := httptest.NewRecorder()

		AdminMiddleware(roles)(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "internal server error")
	})
}
