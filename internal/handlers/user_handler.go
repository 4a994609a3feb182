package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gearshop/backend/internal/auth"
	"github.com/gearshop/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserService is the interface that wraps methods for user profile business logic
type UserService interface {
	// Method GetMe retrieves the safe projection of the calling user.
	//
	// "userID" parameter identifies the user.
	//
	// If user with such ID does not exist, the error will be returned together with "nil" value.
	GetMe(ctx context.Context, userID int) (*models.SafeUser, error)
}

// UserHandler handles user profile HTTP requests
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{Logger: logger},
		userService: userService,
	}
}

// RegisterRoutes registers all user handler routes
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/user", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me", h.GetMe)
	})
}

// GetMe handles GET /user/me
// @Summary Get current user
// @Description Get the safe projection of the authenticated user.
// @Tags user
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]any "Current user"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "User not found"
// @Router /user/me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.userService.GetMe(r.Context(), identity.UserID)
	if err != nil {
		h.Logger.Error("failed to get user", zap.Error(err), zap.Int("userId", identity.UserID))
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "user not found")
			return
		}
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"user": user})
}
