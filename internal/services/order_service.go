package services

import (
	"context"
	"fmt"

	"github.com/gearshop/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderRepository is the interface that wraps methods for Order table data access
type OrderRepository interface {
	// Method CreateWithItems creates an order with item snapshots, decrements stock
	// and clears the cart in a single transaction.
	//
	// "order" parameter carries the order and its items; IDs are set on success.
	//
	// If stock is insufficient for any item, or some other error occurs, the error will be returned.
	CreateWithItems(ctx context.Context, order *models.Order) error
	// Method GetByID retrieves an order with its items.
	//
	// "orderID" parameter identifies the order.
	// "ownerID" parameter restricts the lookup to that user's orders when non-zero.
	//
	// If no matching order exists, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, orderID, ownerID int) (*models.Order, error)
	// Method ListByUser retrieves a user's orders, newest first.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	ListByUser(ctx context.Context, userID int) ([]models.Order, error)
	// Method ListAll retrieves all orders with pagination and optional status filter.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	ListAll(ctx context.Context, page, count int, status string) ([]models.Order, error)
	// Method UpdateStatus sets the status of an order.
	//
	// If order with such ID does not exist, the error will be returned.
	UpdateStatus(ctx context.Context, orderID int, status string) error
}

// orderService implements OrderService
type orderService struct {
	orderRepo OrderRepository
	cartRepo  CartRepository
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo OrderRepository, cartRepo CartRepository, logger *zap.Logger) *orderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		logger:    logger,
	}
}

// Checkout turns the caller's cart into a pending order. Product names and
// prices are snapshotted into the order items; stock decrement, item
// creation and cart cleanup happen in one transaction in the repository.
func (s *orderService) Checkout(ctx context.Context, userID int) (*models.Order, error) {
	cartItems, err := s.cartRepo.GetItems(ctx, userID)
	if err != nil {
		s.logger.Error("failed to read cart for checkout", zap.Error(err), zap.Int("userId", userID))
		return nil, err
	}

	if len(cartItems) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	order := &models.Order{
		Number: uuid.New().String(),
		UserID: userID,
		Status: models.OrderStatusPending,
	}

	for _, item := range cartItems {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			UnitPrice:   item.Price,
			Quantity:    item.Quantity,
		})
		order.Total += item.Subtotal
	}

	if err := s.orderRepo.CreateWithItems(ctx, order); err != nil {
		s.logger.Error("failed to create order", zap.Error(err), zap.Int("userId", userID))
		return nil, err
	}

	return order, nil
}

// ListMine retrieves the caller's orders, newest first
func (s *orderService) ListMine(ctx context.Context, userID int) ([]models.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list orders", zap.Error(err), zap.Int("userId", userID))
		return nil, err
	}

	if orders == nil {
		orders = []models.Order{}
	}

	return orders, nil
}

// Get retrieves one of the caller's orders with its items.
// Orders of other users are reported as not found.
func (s *orderService) Get(ctx context.Context, userID, orderID int) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, orderID, userID)
}
