package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gearshop/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductService is the interface that wraps methods for catalog business logic
type ProductService interface {
	// Method List retrieves a page of products.
	//
	// "page" and "count" parameters control pagination.
	// "category" and "search" parameters filter the listing when non-empty.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	List(ctx context.Context, page, count int, category, search string) (*models.ProductListResponse, error)
	// Method Get retrieves a product by ID.
	//
	// If product with such ID does not exist, the error will be returned together with "nil" value.
	Get(ctx context.Context, productID int) (*models.Product, error)
}

// ProductHandler handles public catalog HTTP requests
type ProductHandler struct {
	BaseHandler
	productService ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		productService: productService,
	}
}

// RegisterRoutes registers all public product handler routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
}

// List handles GET /products
// @Summary List products
// @Description Get a paginated product listing with optional category filter and name search.
// @Tags products
// @Produce json
// @Param page query int false "Page number, default: 1"
// @Param count query int false "Items per page (1-100), default: 20"
// @Param category query string false "Category filter"
// @Param search query string false "Name search"
// @Success 200 {object} models.ProductListResponse "Product listing"
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, count, err := paginationParams(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	category := r.URL.Query().Get("category")
	search := r.URL.Query().Get("search")

	list, err := h.productService.List(r.Context(), page, count, category, search)
	if err != nil {
		h.Logger.Error("failed to list products", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.RespondJSON(w, http.StatusOK, list)
}

// Get handles GET /products/{id}
// @Summary Get a product
// @Description Get a single product by ID.
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Product "Product"
// @Failure 400 {object} map[string]string "Invalid ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id} [get]
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.productService.Get(r.Context(), productID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "product not found")
			return
		}
		h.Logger.Error("failed to get product", zap.Error(err), zap.Int("productId", productID))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.RespondJSON(w, http.StatusOK, product)
}

// paginationParams parses the page and count query parameters with defaults
func paginationParams(r *http.Request) (int, int, error) {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil || parsed < 1 {
			return 0, 0, fmt.Errorf("invalid page parameter")
		}
		page = parsed
	}

	count := 20
	if countStr := r.URL.Query().Get("count"); countStr != "" {
		parsed, err := strconv.Atoi(countStr)
		if err != nil || parsed < 1 {
			return 0, 0, fmt.Errorf("invalid count parameter")
		}
		count = parsed
	}

	return page, count, nil
}
