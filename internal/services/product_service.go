package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gearshop/backend/internal/models"
	"go.uber.org/zap"
)

// ProductRepository is the interface that wraps methods for Product table data access
type ProductRepository interface {
	// Method List retrieves products with pagination, optional category filter and name search.
	//
	// "page" parameter is used to specify the page number.
	// "count" parameter is used to specify the number of items per page.
	// "category" parameter filters by category when non-empty.
	// "search" parameter filters by name substring when non-empty.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	List(ctx context.Context, page, count int, category, search string) ([]models.Product, error)
	// Method GetByID retrieves a product by ID.
	//
	// "productID" parameter is used to retrieve a product by ID.
	//
	// If product with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, productID int) (*models.Product, error)
	// Method Create inserts a new product into the database.
	//
	// "product" parameter is used to create a new product; its ID is set on success.
	//
	// If some error occurs during product creation, the error will be returned.
	Create(ctx context.Context, product *models.Product) error
	// Method Update updates a product by ID.
	//
	// "product" parameter carries the ID and the new field values.
	//
	// If product with such ID does not exist, the error will be returned.
	Update(ctx context.Context, product *models.Product) error
	// Method Delete removes a product by ID.
	//
	// If product with such ID does not exist, the error will be returned.
	Delete(ctx context.Context, productID int) error
}

// productService implements ProductService
type productService struct {
	productRepo ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(productRepo ProductRepository, logger *zap.Logger) *productService {
	return &productService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// List retrieves a page of products
func (s *productService) List(ctx context.Context, page, count int, category, search string) (*models.ProductListResponse, error) {
	if page < 1 {
		page = 1
	}
	if count < 1 || count > 100 {
		count = 20
	}

	products, err := s.productRepo.List(ctx, page, count, category, search)
	if err != nil {
		s.logger.Error("failed to list products", zap.Error(err))
		return nil, err
	}

	if products == nil {
		products = []models.Product{}
	}

	return &models.ProductListResponse{
		Products: products,
		Page:     page,
		Count:    count,
	}, nil
}

// Get retrieves a product by ID
func (s *productService) Get(ctx context.Context, productID int) (*models.Product, error) {
	return s.productRepo.GetByID(ctx, productID)
}

// Create validates and creates a new product
func (s *productService) Create(ctx context.Context, req *models.ProductRequest) (*models.Product, error) {
	product, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	return product, nil
}

// Update validates and updates an existing product
func (s *productService) Update(ctx context.Context, productID int, req *models.ProductRequest) (*models.Product, error) {
	product, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	product.ID = productID

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete removes a product by ID
func (s *productService) Delete(ctx context.Context, productID int) error {
	return s.productRepo.Delete(ctx, productID)
}

// productFromRequest validates a product request and builds the model
func productFromRequest(req *models.ProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("product price must be positive")
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("product stock cannot be negative")
	}

	return &models.Product{
		Name:        name,
		Description: req.Description,
		Price:       req.Price,
		Category:    strings.TrimSpace(req.Category),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Stock:       req.Stock,
	}, nil
}
