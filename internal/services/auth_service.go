package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gearshop/backend/internal/auth"
	"github.com/gearshop/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user.
	//
	// If some error occurs during user creation, the error will be returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmail retrieves a user by exact email match, password hash included.
	//
	// "email" parameter is used to retrieve a user by email.
	//
	// If user with such email does not exist, the error will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// "userID" parameter is used to retrieve a user by ID.
	//
	// If user with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// "email" parameter is used to check if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// SessionRepository is the interface that wraps methods for the per-user
// refresh token session stored on the user record
type SessionRepository interface {
	// Method UpdateRefreshToken overwrites the stored refresh token and its expiry for a user.
	//
	// "userID" parameter identifies the user.
	// "token" parameter is the new refresh token value.
	// "expiresAt" parameter is the expiry written together with the token.
	//
	// If some error occurs during update, the error will be returned.
	UpdateRefreshToken(ctx context.Context, userID int, token string, expiresAt time.Time) error
	// Method GetByIDAndRefreshToken retrieves a user matching both ID and stored token value.
	//
	// "userID" parameter identifies the user.
	// "token" parameter is the exact refresh token value to match.
	//
	// If no user matches, the error will be returned together with "nil" value.
	GetByIDAndRefreshToken(ctx context.Context, userID int, token string) (*models.User, error)
	// Method ClearRefreshToken removes the stored session for a user.
	//
	// "userID" parameter identifies the user.
	//
	// If some error occurs during the update, the error will be returned.
	ClearRefreshToken(ctx context.Context, userID int) error
}

// authService implements AuthService
type authService struct {
	userRepo       UserRepository
	sessionRepo    SessionRepository
	tokenGenerator *auth.TokenGenerator
	isAdminEmail   func(email string) bool
	logger         *zap.Logger
}

// NewAuthService creates a new auth service. The isAdminEmail predicate
// decides which registrations receive the admin role; it is called with the
// normalized email and may be nil when no allow-list is configured.
func NewAuthService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	tokenGenerator *auth.TokenGenerator,
	isAdminEmail func(email string) bool,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:       userRepo,
		sessionRepo:    sessionRepo,
		tokenGenerator: tokenGenerator,
		isAdminEmail:   isAdminEmail,
		logger:         logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Register creates a new user account and returns its safe projection
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.SafeUser, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if name == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("name, email and password are required")
	}

	if !emailRegex.MatchString(email) {
		return nil, fmt.Errorf("invalid email format")
	}

	emailExists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if emailExists {
		return nil, fmt.Errorf("email already exists")
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The admin role is granted only at registration time, from the static
	// allow-list; it is immutable through this flow afterwards.
	role := models.RoleUser
	if s.isAdminEmail != nil && s.isAdminEmail(email) {
		role = models.RoleAdmin
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user.Safe(), nil
}

// Login authenticates a user and starts a fresh session.
// On success it returns the access token, the refresh token and the safe
// user projection; the refresh token is persisted server-side first,
// overwriting any existing session for the user.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (string, string, *models.SafeUser, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return "", "", nil, fmt.Errorf("email and password are required")
	}

	// An unknown email and a wrong password produce the same failure so the
	// endpoint cannot be used to enumerate accounts.
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", "", nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", "", nil, fmt.Errorf("invalid credentials")
	}

	accessToken, refreshToken, err := s.startSession(ctx, user.ID, user.Role)
	if err != nil {
		return "", "", nil, err
	}

	return accessToken, refreshToken, user.Safe(), nil
}

// Refresh rotates a refresh token: it validates the presented token, checks
// it against the stored session and replaces it with a brand-new pair. The
// old token becomes unusable the moment the new one is written.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	refreshToken = strings.TrimSpace(refreshToken)

	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("refresh token failed verification", zap.Error(err))
		return "", "", fmt.Errorf("invalid refresh token")
	}

	// The stored token must match exactly. A signature-valid token that no
	// longer matches was already rotated or revoked; the distinction is kept
	// in the server log while the client sees a generic failure.
	user, err := s.sessionRepo.GetByIDAndRefreshToken(ctx, claims.UserID, refreshToken)
	if err != nil {
		s.logger.Warn("refresh token reused or invalidated", zap.Int("userId", claims.UserID))
		return "", "", fmt.Errorf("refresh token reused or invalidated")
	}

	// The stored expiry is checked on top of the signature expiry; a stored
	// timestamp at or before now is rejected even if the token itself still
	// verifies.
	if user.RefreshTokenExpiresAt == nil || !user.RefreshTokenExpiresAt.After(time.Now()) {
		s.logger.Warn("stored refresh token expired", zap.Int("userId", user.ID))
		return "", "", fmt.Errorf("refresh token expired")
	}

	return s.startSession(ctx, user.ID, user.Role)
}

// Logout revokes the server-side session for the presented refresh token.
// It is best-effort: an absent, malformed or already-rotated token leaves
// nothing to revoke and is not an error.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}

	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil
	}

	if _, err := s.sessionRepo.GetByIDAndRefreshToken(ctx, claims.UserID, refreshToken); err != nil {
		return nil
	}

	if err := s.sessionRepo.ClearRefreshToken(ctx, claims.UserID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return nil
}

// startSession mints a fresh token pair and persists the refresh token with
// its expiry onto the user record, enforcing the single active session model.
func (s *authService) startSession(ctx context.Context, userID int, role models.Role) (string, string, error) {
	accessToken, refreshToken, err := s.tokenGenerator.GenerateTokens(userID, role)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	expiresAt := time.Now().Add(s.tokenGenerator.RefreshTokenExpiry())
	if err := s.sessionRepo.UpdateRefreshToken(ctx, userID, refreshToken, expiresAt); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}
