package services

import (
	"context"
	"fmt"

	"github.com/gearshop/backend/internal/models"
)

// userService implements UserService
type userService struct {
	userRepo UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository) *userService {
	return &userService{
		userRepo: userRepo,
	}
}

// GetMe retrieves the safe projection of the calling user
func (s *userService) GetMe(ctx context.Context, userID int) (*models.SafeUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user.Safe(), nil
}
