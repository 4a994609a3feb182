package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gearshop/backend/internal/auth"
	"github.com/gearshop/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// refreshCookieName is the cookie carrying the refresh token.
// The refresh token travels only in this HTTP-only cookie, never in bodies.
const refreshCookieName = "refreshToken"

// AuthService is the interface that wraps methods for authentication business logic
type AuthService interface {
	// Method Register performs user credentials validation and creation.
	//
	// "req" parameter contains name, email and password.
	//
	// If the credentials are invalid, or such user already exists, or some other error occurs,
	// the error will be returned together with "nil" value.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.SafeUser, error)
	// Method Login performs credential verification and starts a fresh session.
	//
	// "req" parameter contains email and password.
	//
	// If the credentials are invalid or some other error occurs, the error will be returned
	// together with empty tokens and "nil" user.
	Login(ctx context.Context, req *models.LoginRequest) (string, string, *models.SafeUser, error)
	// Method Refresh rotates the refresh token and returns a new token pair.
	//
	// "refreshToken" parameter is the token read from the cookie.
	//
	// If the refresh token is invalid, expired, reused or revoked, the error will be returned
	// together with empty strings for the new tokens.
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	// Method Logout revokes the server-side session for the presented refresh token.
	//
	// An absent or invalid token leaves nothing to revoke and is not an error.
	Logout(ctx context.Context, refreshToken string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService   AuthService
	refreshExpiry time.Duration
	secureCookie  bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService AuthService,
	refreshExpiry time.Duration,
	secureCookie bool,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler:   BaseHandler{Logger: logger},
		authService:   authService,
		refreshExpiry: refreshExpiry,
		secureCookie:  secureCookie,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/protected", h.Protected)
		})
	})
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Register a new user with name, email and password. Returns the created user.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} map[string]any "User registered successfully"
// @Failure 400 {object} map[string]string "Missing or invalid fields"
// @Failure 409 {object} map[string]string "Email already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.Logger.Error("failed to register user", zap.Error(err))
		switch {
		case strings.Contains(err.Error(), "already exists"):
			h.RespondError(w, http.StatusConflict, err.Error())
		case strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "invalid email"):
			h.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			h.RespondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.RespondJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// Login handles POST /auth/login
// @Summary Login user
// @Description Authenticate with email and password. Returns the access token and user in the body and the refresh token as an HTTP-only cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.LoginResponse "Login successful"
// @Failure 400 {object} map[string]string "Missing fields"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, refreshToken, user, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if strings.Contains(err.Error(), "required") {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Warn("failed login attempt", zap.Error(err))
		h.RespondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.setRefreshCookie(w, refreshToken)

	h.RespondJSON(w, http.StatusOK, models.LoginResponse{
		AccessToken: accessToken,
		User:        user,
	})
}

// Refresh handles POST /auth/refresh
// @Summary Refresh access token
// @Description Rotate the refresh token presented in the cookie and return a new access token. The refresh token is read from the cookie only.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "New access token"
// @Failure 401 {object} map[string]string "Missing, invalid, expired or reused refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	// Cookie only: reading the token from a body or URL would leak it into
	// logs and break the HTTP-only transport contract.
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		h.RespondError(w, http.StatusUnauthorized, "refresh token missing")
		return
	}

	accessToken, newRefreshToken, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		h.Logger.Warn("failed to refresh tokens", zap.Error(err))
		h.clearRefreshCookie(w)
		h.RespondError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	h.setRefreshCookie(w, newRefreshToken)

	h.RespondJSON(w, http.StatusOK, map[string]string{"accessToken": accessToken})
}

// Logout handles POST /auth/logout
// @Summary Logout user
// @Description Clear the refresh cookie and revoke the server-side session when the cookie is present.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]bool "Logged out"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			// Revocation is best-effort; the cookie is cleared regardless.
			h.Logger.Error("failed to revoke session", zap.Error(err))
		}
	}

	h.clearRefreshCookie(w)

	h.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Protected handles GET /auth/protected
// @Summary Echo the authenticated identity
// @Description Return the user ID and role decoded from the bearer access token.
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]any "Decoded identity"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /auth/protected [get]
func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"userId": identity.UserID,
		"role":   identity.Role.String(),
	})
}

// setRefreshCookie ships the refresh token as an HTTP-only cookie with a
// max-age matching the stored session expiry
func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(h.refreshExpiry.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearRefreshCookie expires the refresh cookie on the client
func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
