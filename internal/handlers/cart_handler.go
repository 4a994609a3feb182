package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gearshop/backend/internal/auth"
	"github.com/gearshop/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CartService is the interface that wraps methods for cart business logic
type CartService interface {
	// Method Get retrieves the caller's cart with computed subtotals and total.
	//
	// "userID" parameter identifies the cart owner.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	Get(ctx context.Context, userID int) (*models.CartResponse, error)
	// Method AddItem adds a product to the caller's cart, incrementing an existing row.
	//
	// If the quantity is not positive, the product does not exist, or stock is insufficient,
	// the error will be returned.
	AddItem(ctx context.Context, userID int, req *models.AddCartItemRequest) error
	// Method UpdateItem sets the quantity of a cart row.
	//
	// If the row does not exist, the quantity is not positive, or stock is insufficient,
	// the error will be returned.
	UpdateItem(ctx context.Context, userID, productID, quantity int) error
	// Method RemoveItem removes a product from the caller's cart.
	//
	// If the row does not exist, the error will be returned.
	RemoveItem(ctx context.Context, userID, productID int) error
	// Method Clear removes every item from the caller's cart.
	//
	// If some error occurs during the delete, the error will be returned.
	Clear(ctx context.Context, userID int) error
}

// CartHandler handles cart HTTP requests
type CartHandler struct {
	BaseHandler
	cartService CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		BaseHandler: BaseHandler{Logger: logger},
		cartService: cartService,
	}
}

// RegisterRoutes registers all cart handler routes
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Get)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productId}", h.UpdateItem)
		r.Delete("/items/{productId}", h.RemoveItem)
	})
}

// Get handles GET /cart
// @Summary Get cart
// @Description Get the authenticated user's cart with subtotals and total.
// @Tags cart
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.CartResponse "Cart"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /cart [get]
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	cart, err := h.cartService.Get(r.Context(), identity.UserID)
	if err != nil {
		h.Logger.Error("failed to get cart", zap.Error(err), zap.Int("userId", identity.UserID))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.RespondJSON(w, http.StatusOK, cart)
}

// AddItem handles POST /cart/items
// @Summary Add item to cart
// @Description Add a product to the authenticated user's cart; an existing row is incremented.
// @Tags cart
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.AddCartItemRequest true "Item to add"
// @Success 201 {object} map[string]string "Item added"
// @Failure 400 {object} map[string]string "Invalid quantity"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 409 {object} map[string]string "Insufficient stock"
// @Router /cart/items [post]
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.cartService.AddItem(r.Context(), identity.UserID, &req); err != nil {
		h.respondCartError(w, err, identity.UserID)
		return
	}

	h.RespondJSON(w, http.StatusCreated, map[string]string{"message": "item added to cart"})
}

// UpdateItem handles PUT /cart/items/{productId}
// @Summary Update cart item quantity
// @Description Set the quantity of a product already in the cart.
// @Tags cart
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param productId path int true "Product ID"
// @Param request body models.UpdateCartItemRequest true "New quantity"
// @Success 200 {object} map[string]string "Item updated"
// @Failure 400 {object} map[string]string "Invalid quantity"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Item not in cart"
// @Failure 409 {object} map[string]string "Insufficient stock"
// @Router /cart/items/{productId} [put]
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	productID, err := strconv.Atoi(chi.URLParam(r, "productId"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req models.UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.cartService.UpdateItem(r.Context(), identity.UserID, productID, req.Quantity); err != nil {
		h.respondCartError(w, err, identity.UserID)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "cart item updated"})
}

// RemoveItem handles DELETE /cart/items/{productId}
// @Summary Remove cart item
// @Description Remove a product from the authenticated user's cart.
// @Tags cart
// @Produce json
// @Security ApiKeyAuth
// @Param productId path int true "Product ID"
// @Success 200 {object} map[string]string "Item removed"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Item not in cart"
// @Router /cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	productID, err := strconv.Atoi(chi.URLParam(r, "productId"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.cartService.RemoveItem(r.Context(), identity.UserID, productID); err != nil {
		h.respondCartError(w, err, identity.UserID)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "cart item removed"})
}

// Clear handles DELETE /cart
// @Summary Clear cart
// @Description Remove every item from the authenticated user's cart.
// @Tags cart
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string "Cart cleared"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /cart [delete]
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.cartService.Clear(r.Context(), identity.UserID); err != nil {
		h.Logger.Error("failed to clear cart", zap.Error(err), zap.Int("userId", identity.UserID))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}

// respondCartError maps cart service errors to status codes
func (h *CartHandler) respondCartError(w http.ResponseWriter, err error, userID int) {
	switch {
	case strings.Contains(err.Error(), "not found"):
		h.RespondError(w, http.StatusNotFound, err.Error())
	case strings.Contains(err.Error(), "insufficient stock"):
		h.RespondError(w, http.StatusConflict, err.Error())
	case strings.Contains(err.Error(), "must be positive"):
		h.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		h.Logger.Error("cart operation failed", zap.Error(err), zap.Int("userId", userID))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
