package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gearshop/backend/internal/auth"
	"github.com/gearshop/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderService is the interface that wraps methods for order business logic
type OrderService interface {
	// Method Checkout turns the caller's cart into a pending order.
	//
	// "userID" parameter identifies the caller.
	//
	// If the cart is empty, stock is insufficient, or some other error occurs,
	// the error will be returned together with "nil" value.
	Checkout(ctx context.Context, userID int) (*models.Order, error)
	// Method ListMine retrieves the caller's orders, newest first.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	ListMine(ctx context.Context, userID int) ([]models.Order, error)
	// Method Get retrieves one of the caller's orders with its items.
	//
	// Orders of other users are reported as not found.
	Get(ctx context.Context, userID, orderID int) (*models.Order, error)
}

// OrderHandler handles order HTTP requests
type OrderHandler struct {
	BaseHandler
	orderService OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		orderService: orderService,
	}
}

// RegisterRoutes registers all order handler routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Checkout)
		r.Get("/", h.ListMine)
		r.Get("/{id}", h.Get)
	})
}

// Checkout handles POST /orders
// @Summary Place an order
// @Description Turn the authenticated user's cart into a pending order. The cart is cleared and stock decremented atomically.
// @Tags orders
// @Produce json
// @Security ApiKeyAuth
// @Success 201 {object} models.Order "Created order"
// @Failure 400 {object} map[string]string "Cart is empty"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Insufficient stock"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /orders [post]
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	order, err := h.orderService.Checkout(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "cart is empty"):
			h.RespondError(w, http.StatusBadRequest, err.Error())
		case strings.Contains(err.Error(), "insufficient stock"):
			h.RespondError(w, http.StatusConflict, err.Error())
		default:
			h.Logger.Error("failed to checkout", zap.Error(err), zap.Int("userId", identity.UserID))
			h.RespondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.RespondJSON(w, http.StatusCreated, order)
}

// ListMine handles GET /orders
// @Summary List own orders
// @Description Get the authenticated user's orders, newest first.
// @Tags orders
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Order "Orders"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /orders [get]
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orders, err := h.orderService.ListMine(r.Context(), identity.UserID)
	if err != nil {
		h.Logger.Error("failed to list orders", zap.Error(err), zap.Int("userId", identity.UserID))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.RespondJSON(w, http.StatusOK, orders)
}

// Get handles GET /orders/{id}
// @Summary Get an order
// @Description Get one of the authenticated user's orders with its items.
// @Tags orders
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Order ID"
// @Success 200 {object} models.Order "Order"
// @Failure 400 {object} map[string]string "Invalid ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Order not found"
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orderID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orderService.Get(r.Context(), identity.UserID, orderID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "order not found")
			return
		}
		h.Logger.Error("failed to get order", zap.Error(err), zap.Int("orderId", orderID))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.RespondJSON(w, http.StatusOK, order)
}
