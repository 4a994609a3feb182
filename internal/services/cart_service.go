package services

import (
	"context"
	"fmt"

	"github.com/gearshop/backend/internal/models"
	"go.uber.org/zap"
)

// CartRepository is the interface that wraps methods for CartItem table data access
type CartRepository interface {
	// Method GetItems retrieves the cart rows of a user joined with product data.
	//
	// "userID" parameter identifies the cart owner.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetItems(ctx context.Context, userID int) ([]models.CartItemResponse, error)
	// Method GetQuantity returns the quantity of a cart row, zero when the row is absent.
	//
	// If some error occurs during data retrieval, the error will be returned together with zero value.
	GetQuantity(ctx context.Context, userID, productID int) (int, error)
	// Method Upsert inserts a cart row or increments the quantity of an existing one.
	//
	// "userID" parameter identifies the cart owner.
	// "productID" parameter identifies the product.
	// "quantity" parameter is the quantity to add.
	//
	// If some error occurs during the upsert, the error will be returned.
	Upsert(ctx context.Context, userID, productID, quantity int) error
	// Method UpdateQuantity sets the quantity of a cart row.
	//
	// If the row does not exist, the error will be returned.
	UpdateQuantity(ctx context.Context, userID, productID, quantity int) error
	// Method Delete removes a cart row.
	//
	// If the row does not exist, the error will be returned.
	Delete(ctx context.Context, userID, productID int) error
	// Method Clear removes all cart rows of a user.
	//
	// If some error occurs during the delete, the error will be returned.
	Clear(ctx context.Context, userID int) error
}

// cartService implements CartService
type cartService struct {
	cartRepo    CartRepository
	productRepo ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(cartRepo CartRepository, productRepo ProductRepository, logger *zap.Logger) *cartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Get retrieves the caller's cart with computed subtotals and total
func (s *cartService) Get(ctx context.Context, userID int) (*models.CartResponse, error) {
	items, err := s.cartRepo.GetItems(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get cart", zap.Error(err), zap.Int("userId", userID))
		return nil, err
	}

	if items == nil {
		items = []models.CartItemResponse{}
	}

	var total float64
	for _, item := range items {
		total += item.Subtotal
	}

	return &models.CartResponse{
		Items: items,
		Total: total,
	}, nil
}

// AddItem adds a product to the caller's cart, incrementing an existing row
func (s *cartService) AddItem(ctx context.Context, userID int, req *models.AddCartItemRequest) error {
	if req.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return err
	}

	// The upsert increments an existing row, so the ceiling is checked against
	// the quantity already in the cart plus the requested one.
	existing, err := s.cartRepo.GetQuantity(ctx, userID, req.ProductID)
	if err != nil {
		s.logger.Error("failed to get cart item quantity", zap.Error(err), zap.Int("userId", userID))
		return err
	}

	if existing+req.Quantity > product.Stock {
		return fmt.Errorf("insufficient stock")
	}

	if err := s.cartRepo.Upsert(ctx, userID, req.ProductID, req.Quantity); err != nil {
		s.logger.Error("failed to add cart item", zap.Error(err), zap.Int("userId", userID))
		return err
	}

	return nil
}

// UpdateItem sets the quantity of a cart row, capped by the product stock
func (s *cartService) UpdateItem(ctx context.Context, userID, productID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	if quantity > product.Stock {
		return fmt.Errorf("insufficient stock")
	}

	return s.cartRepo.UpdateQuantity(ctx, userID, productID, quantity)
}

// RemoveItem removes a product from the caller's cart
func (s *cartService) RemoveItem(ctx context.Context, userID, productID int) error {
	return s.cartRepo.Delete(ctx, userID, productID)
}

// Clear removes every item from the caller's cart
func (s *cartService) Clear(ctx context.Context, userID int) error {
	return s.cartRepo.Clear(ctx, userID)
}
