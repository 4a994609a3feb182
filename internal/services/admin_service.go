package services

import (
	"context"
	"fmt"

	"github.com/gearshop/backend/internal/models"
	"go.uber.org/zap"
)

// AdminUserRepository is the interface that wraps admin-only User table operations
type AdminUserRepository interface {
	// Method List retrieves users with pagination and optional name/email search.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	List(ctx context.Context, page, count int, search string) ([]models.User, error)
	// Method Delete removes a user by ID.
	//
	// If user with such ID does not exist, the error will be returned.
	Delete(ctx context.Context, userID int) error
}

// adminService implements AdminService
type adminService struct {
	userRepo  AdminUserRepository
	orderRepo OrderRepository
	logger    *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo AdminUserRepository, orderRepo OrderRepository, logger *zap.Logger) *adminService {
	return &adminService{
		userRepo:  userRepo,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// ListUsers retrieves safe projections of users with pagination and search
func (s *adminService) ListUsers(ctx context.Context, page, count int, search string) ([]models.SafeUser, error) {
	if page < 1 {
		page = 1
	}
	if count < 1 || count > 100 {
		count = 20
	}

	users, err := s.userRepo.List(ctx, page, count, search)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, err
	}

	safeUsers := make([]models.SafeUser, 0, len(users))
	for i := range users {
		safeUsers = append(safeUsers, *users[i].Safe())
	}

	return safeUsers, nil
}

// DeleteUser removes a user account. Admins cannot delete themselves.
func (s *adminService) DeleteUser(ctx context.Context, callerID, userID int) error {
	if callerID == userID {
		return fmt.Errorf("cannot delete own account")
	}

	return s.userRepo.Delete(ctx, userID)
}

// ListOrders retrieves all orders with pagination and optional status filter
func (s *adminService) ListOrders(ctx context.Context, page, count int, status string) (*models.OrderListResponse, error) {
	if page < 1 {
		page = 1
	}
	if count < 1 || count > 100 {
		count = 20
	}

	if status != "" && !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("invalid order status")
	}

	orders, err := s.orderRepo.ListAll(ctx, page, count, status)
	if err != nil {
		s.logger.Error("failed to list orders", zap.Error(err))
		return nil, err
	}

	if orders == nil {
		orders = []models.Order{}
	}

	return &models.OrderListResponse{
		Orders: orders,
		Page:   page,
		Count:  count,
	}, nil
}

// UpdateOrderStatus transitions an order to a new status
func (s *adminService) UpdateOrderStatus(ctx context.Context, orderID int, status string) error {
	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("invalid order status")
	}

	return s.orderRepo.UpdateStatus(ctx, orderID, status)
}
