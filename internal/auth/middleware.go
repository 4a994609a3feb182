package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gearshop/backend/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the verified caller identity exposed to handlers.
// It comes exclusively from a validated access token.
type Identity struct {
	UserID int
	Role   models.Role
}

// RoleFetcher loads the current role of a user from storage
type RoleFetcher interface {
	// GetRoleByID returns the current role of the user.
	//
	// If the user does not exist, the error will be returned together with zero value.
	GetRoleByID(ctx context.Context, userID int) (models.Role, error)
}

// Middleware validates the bearer access token and puts the caller identity
// into the request context. The access token is accepted from the
// Authorization header only; it is never read from cookies.
func Middleware(tokenGenerator *TokenGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				respondUnauthorized(w, "authentication required")
				return
			}

			// The client sees one generic message regardless of whether the
			// token is malformed, expired or carries a bad signature.
			claims, err := tokenGenerator.ValidateAccessToken(token)
			if err != nil {
				respondUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, Identity{
				UserID: claims.UserID,
				Role:   claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware gates admin-only routes. It is applied on top of Middleware
// and re-fetches the caller's current role from storage instead of trusting
// the role embedded in the token, so a stale token cannot keep admin
// privilege after a role change.
func AdminMiddleware(roles RoleFetcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r.Context())
			if !ok {
				respondUnauthorized(w, "authentication required")
				return
			}

			// A missing account means the token no longer maps to a user; any
			// other failure is a storage problem, not an authentication one.
			role, err := roles.GetRoleByID(r.Context(), identity.UserID)
			if err != nil {
				if strings.Contains(err.Error(), "not found") {
					respondUnauthorized(w, "authentication required")
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"internal server error"}`))
				return
			}

			if role != models.RoleAdmin {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"insufficient permissions"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentity retrieves the caller identity from context
func GetIdentity(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
