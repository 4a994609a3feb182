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

// AdminProductService is the interface that wraps admin catalog operations
type AdminProductService interface {
	// Method Create validates and creates a new product.
	//
	// If validation fails or some other error occurs, the error will be returned together with "nil" value.
	Create(ctx context.Context, req *models.ProductRequest) (*models.Product, error)
	// Method Update validates and updates an existing product.
	//
	// If product with such ID does not exist, the error will be returned together with "nil" value.
	Update(ctx context.Context, productID int, req *models.ProductRequest) (*models.Product, error)
	// Method Delete removes a product by ID.
	//
	// If product with such ID does not exist, the error will be returned.
	Delete(ctx context.Context, productID int) error
}

// AdminService is the interface that wraps admin-only user and order operations
type AdminService interface {
	// Method ListUsers retrieves safe projections of users with pagination and search.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	ListUsers(ctx context.Context, page, count int, search string) ([]models.SafeUser, error)
	// Method DeleteUser removes a user account; admins cannot delete themselves.
	//
	// If the caller targets itself or the user does not exist, the error will be returned.
	DeleteUser(ctx context.Context, callerID, userID int) error
	// Method ListOrders retrieves all orders with pagination and optional status filter.
	//
	// If the status is unknown or some error occurs, the error will be returned together with "nil" value.
	ListOrders(ctx context.Context, page, count int, status string) (*models.OrderListResponse, error)
	// Method UpdateOrderStatus transitions an order to a new status.
	//
	// If the status is unknown or the order does not exist, the error will be returned.
	UpdateOrderStatus(ctx context.Context, orderID int, status string) error
}

// AdminHandler handles admin panel HTTP requests
type AdminHandler struct {
	BaseHandler
	adminService   AdminService
	productService AdminProductService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService AdminService, productService AdminProductService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		adminService:   adminService,
		productService: productService,
	}
}

// RegisterRoutes registers all admin handler routes.
// The router group is expected to already carry the auth and admin middleware.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/products", h.CreateProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)
		r.Get("/orders", h.ListOrders)
		r.Put("/orders/{id}/status", h.UpdateOrderStatus)
		r.Get("/users", h.ListUsers)
		r.Delete("/users/{id}", h.DeleteUser)
	})
}

// CreateProduct handles POST /admin/products
// @Summary Create a product
// @Description Create a new catalog product. Admin only.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.ProductRequest true "Product data"
// @Success 201 {object} models.Product "Created product"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Router /admin/products [post]
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.Create(r.Context(), &req)
	if err != nil {
		h.respondAdminError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /admin/products/{id}
// @Summary Update a product
// @Description Update an existing catalog product. Admin only.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Product ID"
// @Param request body models.ProductRequest true "Product data"
// @Success 200 {object} models.Product "Updated product"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Product not found"
// @Router /admin/products/{id} [put]
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req models.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.Update(r.Context(), productID, &req)
	if err != nil {
		h.respondAdminError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /admin/products/{id}
// @Summary Delete a product
// @Description Delete a catalog product. Admin only.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Product ID"
// @Success 200 {object} map[string]string "Product deleted"
// @Failure 404 {object} map[string]string "Product not found"
// @Router /admin/products/{id} [delete]
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.productService.Delete(r.Context(), productID); err != nil {
		h.respondAdminError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// ListOrders handles GET /admin/orders
// @Summary List all orders
// @Description Get all orders with pagination and an optional status filter. Admin only.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number, default: 1"
// @Param count query int false "Items per page (1-100), default: 20"
// @Param status query string false "Status filter"
// @Success 200 {object} models.OrderListResponse "Order listing"
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Router /admin/orders [get]
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, count, err := paginationParams(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.adminService.ListOrders(r.Context(), page, count, r.URL.Query().Get("status"))
	if err != nil {
		h.respondAdminError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, list)
}

// UpdateOrderStatus handles PUT /admin/orders/{id}/status
// @Summary Update order status
// @Description Transition an order to a new status. Admin only.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Order ID"
// @Param request body models.UpdateOrderStatusRequest true "New status"
// @Success 200 {object} map[string]string "Status updated"
// @Failure 400 {object} map[string]string "Invalid status"
// @Failure 404 {object} map[string]string "Order not found"
// @Router /admin/orders/{id}/status [put]
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.adminService.UpdateOrderStatus(r.Context(), orderID, req.Status); err != nil {
		h.respondAdminError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "order status updated"})
}

// ListUsers handles GET /admin/users
// @Summary List users
// @Description Get users with pagination and optional name/email search. Admin only.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number, default: 1"
// @Param count query int false "Items per page (1-100), default: 20"
// @Param search query string false "Name or email search"
// @Success 200 {array} models.SafeUser "Users"
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, count, err := paginationParams(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	users, err := h.adminService.ListUsers(r.Context(), page, count, r.URL.Query().Get("search"))
	if err != nil {
		h.respondAdminError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}

// DeleteUser handles DELETE /admin/users/{id}
// @Summary Delete a user
// @Description Delete a user account. Admins cannot delete themselves. Admin only.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string "User deleted"
// @Failure 400 {object} map[string]string "Cannot delete own account"
// @Failure 404 {object} map[string]string "User not found"
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.adminService.DeleteUser(r.Context(), identity.UserID, userID); err != nil {
		h.respondAdminError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// respondAdminError maps admin service errors to status codes
func (h *AdminHandler) respondAdminError(w http.ResponseWriter, err error) {
	switch {
	case strings.Contains(err.Error(), "not found"):
		h.RespondError(w, http.StatusNotFound, err.Error())
	case strings.Contains(err.Error(), "required") ||
		strings.Contains(err.Error(), "invalid") ||
		strings.Contains(err.Error(), "cannot"):
		h.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		h.Logger.Error("admin operation failed", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
