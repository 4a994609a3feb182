package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gearshop/backend/internal/auth"
	"github.com/gearshop/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// mockUserRepository is a mock implementation of UserRepository
type mockUserRepository struct {
	user                *models.User
	err                 error
	existsByEmailResult bool
	existsByEmailError  error
	createdUser         *models.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.err != nil {
		return m.err
	}
	user.ID = 1
	m.createdUser = user
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.user == nil {
		return nil, errors.New("user not found")
	}
	return m.user, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.user == nil {
		return nil, errors.New("user not found")
	}
	return m.user, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailError != nil {
		return false, m.existsByEmailError
	}
	return m.existsByEmailResult, nil
}

// mockSessionRepository is a mock implementation of SessionRepository
type mockSessionRepository struct {
	user           *models.User
	getErr         error
	updateErr      error
	clearErr       error
	storedToken    string
	storedExpiry   time.Time
	clearedUserID  int
	updateCalls    int
	matchStoredSet bool
}

func (m *mockSessionRepository) UpdateRefreshToken(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updateCalls++
	m.storedToken = token
	m.storedExpiry = expiresAt
	return nil
}

func (m *mockSessionRepository) GetByIDAndRefreshToken(ctx context.Context, userID int, token string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	// Exact match against the stored token mirrors the real lookup.
	if m.matchStoredSet && token != m.storedToken {
		return nil, errors.New("refresh token reused or invalidated")
	}
	if m.user == nil {
		return nil, errors.New("refresh token reused or invalidated")
	}
	return m.user, nil
}

func (m *mockSessionRepository) ClearRefreshToken(ctx context.Context, userID int) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.clearedUserID = userID
	m.storedToken = ""
	return nil
}

func newTestTokenGenerator() *auth.TokenGenerator {
	return auth.NewTokenGenerator("test-access-secret", "test-refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

// adminAllowList builds an admin email predicate matching config.IsAdminEmail
func adminAllowList(emails ...string) func(string) bool {
	return func(email string) bool {
		for _, allowed := range emails {
			if allowed == email {
				return true
			}
		}
		return false
	}
}

func TestNewAuthService(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	userRepo := &mockUserRepository{}
	sessionRepo := &mockSessionRepository{}
	tokenGen := newTestTokenGenerator()

	svc := NewAuthService(userRepo, sessionRepo, tokenGen, adminAllowList("admin@example.com"), logger)

	assert.NotNil(t, svc)
	assert.Equal(t, userRepo, svc.userRepo)
	assert.Equal(t, sessionRepo, svc.sessionRepo)
	assert.Equal(t, tokenGen, svc.tokenGenerator)
	assert.NotNil(t, svc.isAdminEmail)
	assert.Equal(t, logger, svc.logger)
}

func TestAuthService_Register(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	tokenGen := newTestTokenGenerator()

	tests := []struct {
		name          string
		req           *models.RegisterRequest
		userRepo      *mockUserRepository
		adminEmails   []string
		expectedError bool
		errorContains string
		expectedRole  models.Role
	}{
		{
			name:          "success",
			req:           &models.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "pw123"},
			userRepo:      &mockUserRepository{},
			expectedError: false,
			expectedRole:  models.RoleUser,
		},
		{
			name:          "missing name",
			req:           &models.RegisterRequest{Email: "alice@example.com", Password: "pw123"},
			userRepo:      &mockUserRepository{},
			expectedError: true,
			errorContains: "name, email and password are required",
		},
		{
			name:          "missing email",
			req:           &models.RegisterRequest{Name: "Alice", Password: "pw123"},
			userRepo:      &mockUserRepository{},
			expectedError: true,
			errorContains: "name, email and password are required",
		},
		{
			name:          "missing password",
			req:           &models.RegisterRequest{Name: "Alice", Email: "alice@example.com"},
			userRepo:      &mockUserRepository{},
			expectedError: true,
			errorContains: "name, email and password are required",
		},
		{
			name:          "invalid email format",
			req:           &models.RegisterRequest{Name: "Alice", Email: "not-an-email", Password: "pw123"},
			userRepo:      &mockUserRepository{},
			expectedError: true,
			errorContains: "invalid email format",
		},
		{
			name:          "email already exists",
			req:           &models.RegisterRequest{Name: "Alice", Email: "taken@example.com", Password: "pw123"},
			userRepo:      &mockUserRepository{existsByEmailResult: true},
			expectedError: true,
			errorContains: "email already exists",
		},
		{
			name:          "email normalization - uppercase and spaces",
			req:           &models.RegisterRequest{Name: "Alice", Email: "  ALICE@EXAMPLE.COM  ", Password: "pw123"},
			userRepo:      &mockUserRepository{},
			expectedError: false,
			expectedRole:  models.RoleUser,
		},
		{
			name:          "admin allow-list grants admin role",
			req:           &models.RegisterRequest{Name: "Root", Email: "admin@example.com", Password: "pw123"},
			userRepo:      &mockUserRepository{},
			adminEmails:   []string{"admin@example.com"},
			expectedError: false,
			expectedRole:  models.RoleAdmin,
		},
		{
			name:          "allow-list matches the normalized email",
			req:           &models.RegisterRequest{Name: "Root", Email: "  ADMIN@example.com ", Password: "pw123"},
			userRepo:      &mockUserRepository{},
			adminEmails:   []string{"admin@example.com"},
			expectedError: false,
			expectedRole:  models.RoleAdmin,
		},
		{
			name:          "database error checking email",
			req:           &models.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "pw123"},
			userRepo:      &mockUserRepository{existsByEmailError: errors.New("database error")},
			expectedError: true,
			errorContains: "failed to check email",
		},
		{
			name:          "database error on user creation",
			req:           &models.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "pw123"},
			userRepo:      &mockUserRepository{err: errors.New("database error")},
			expectedError: true,
			errorContains: "database error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(tt.userRepo, &mockSessionRepository{}, tokenGen, adminAllowList(tt.adminEmails...), logger)

			user, err := svc.Register(context.Background(), tt.req)

			if tt.expectedError {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tt.expectedRole.String(), user.Role)
				// Password hash never appears in the projection and the stored
				// hash is never the plaintext.
				require.NotNil(t, tt.userRepo.createdUser)
				assert.NotEqual(t, tt.req.Password, tt.userRepo.createdUser.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword(
					[]byte(tt.userRepo.createdUser.PasswordHash), []byte(tt.req.Password)))
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	tokenGen := newTestTokenGenerator()

	validPasswordHash, _ := bcrypt.GenerateFromPassword([]byte("pw123"), bcrypt.DefaultCost)
	validUser := &models.User{
		ID:           1,
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: string(validPasswordHash),
		Role:         models.RoleUser,
	}

	tests := []struct {
		name          string
		req           *models.LoginRequest
		userRepo      *mockUserRepository
		sessionRepo   *mockSessionRepository
		expectedError bool
		errorContains string
	}{
		{
			name:          "success",
			req:           &models.LoginRequest{Email: "alice@example.com", Password: "pw123"},
			userRepo:      &mockUserRepository{user: validUser},
			sessionRepo:   &mockSessionRepository{},
			expectedError: false,
		},
		{
			name:          "email trimmed and lowercased",
			req:           &models.LoginRequest{Email: "  ALICE@EXAMPLE.COM ", Password: "pw123"},
			userRepo:      &mockUserRepository{user: validUser},
			sessionRepo:   &mockSessionRepository{},
			expectedError: false,
		},
		{
			name:          "missing email",
			req:           &models.LoginRequest{Password: "pw123"},
			userRepo:      &mockUserRepository{user: validUser},
			sessionRepo:   &mockSessionRepository{},
			expectedError: true,
			errorContains: "email and password are required",
		},
		{
			name:          "missing password",
			req:           &models.LoginRequest{Email: "alice@example.com"},
			userRepo:      &mockUserRepository{user: validUser},
			sessionRepo:   &mockSessionRepository{},
			expectedError: true,
			errorContains: "email and password are required",
		},
		{
			name:          "unknown email",
			req:           &models.LoginRequest{Email: "nobody@example.com", Password: "pw123"},
			userRepo:      &mockUserRepository{},
			sessionRepo:   &mockSessionRepository{},
			expectedError: true,
			errorContains: "invalid credentials",
		},
		{
			name:          "wrong password",
			req:           &models.LoginRequest{Email: "alice@example.com", Password: "wrong"},
			userRepo:      &mockUserRepository{user: validUser},
			sessionRepo:   &mockSessionRepository{},
			expectedError: true,
			errorContains: "invalid credentials",
		},
		{
			name:          "database error",
			req:           &models.LoginRequest{Email: "alice@example.com", Password: "pw123"},
			userRepo:      &mockUserRepository{err: errors.New("database error")},
			sessionRepo:   &mockSessionRepository{},
			expectedError: true,
			errorContains: "invalid credentials",
		},
		{
			name:          "session persistence failure",
			req:           &models.LoginRequest{Email: "alice@example.com", Password: "pw123"},
			userRepo:      &mockUserRepository{user: validUser},
			sessionRepo:   &mockSessionRepository{updateErr: errors.New("update error")},
			expectedError: true,
			errorContains: "failed to save refresh token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(tt.userRepo, tt.sessionRepo, tokenGen, nil, logger)

			accessToken, refreshToken, user, err := svc.Login(context.Background(), tt.req)

			if tt.expectedError {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
				require.NotNil(t, user)
				assert.Equal(t, "alice@example.com", user.Email)
				// The issued refresh token is the one persisted.
				assert.Equal(t, refreshToken, tt.sessionRepo.storedToken)
				assert.True(t, tt.sessionRepo.storedExpiry.After(time.Now()))
			}
		})
	}

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		svc := NewAuthService(&mockUserRepository{}, &mockSessionRepository{}, tokenGen, nil, logger)
		_, _, _, errUnknown := svc.Login(context.Background(),
			&models.LoginRequest{Email: "nobody@example.com", Password: "pw123"})

		svc2 := NewAuthService(&mockUserRepository{user: validUser}, &mockSessionRepository{}, tokenGen, nil, logger)
		_, _, _, errWrongPass := svc2.Login(context.Background(),
			&models.LoginRequest{Email: "alice@example.com", Password: "wrong"})

		require.Error(t, errUnknown)
		require.Error(t, errWrongPass)
		assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	})
}

func TestAuthService_Refresh(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	tokenGen := newTestTokenGenerator()

	futureExpiry := time.Now().Add(24 * time.Hour)
	pastExpiry := time.Now().Add(-1 * time.Minute)

	sessionUser := func(expiry time.Time) *models.User {
		return &models.User{
			ID:                    1,
			Email:                 "alice@example.com",
			Role:                  models.RoleUser,
			RefreshTokenExpiresAt: &expiry,
		}
	}

	_, validRefreshToken, err := tokenGen.GenerateTokens(1, models.RoleUser)
	require.NoError(t, err)

	tests := []struct {
		name          string
		refreshToken  string
		sessionRepo   *mockSessionRepository
		expectedError bool
		errorContains string
	}{
		{
			name:          "success",
			refreshToken:  validRefreshToken,
			sessionRepo:   &mockSessionRepository{user: sessionUser(futureExpiry)},
			expectedError: false,
		},
		{
			name:          "empty token",
			refreshToken:  "",
			sessionRepo:   &mockSessionRepository{},
			expectedError: true,
			errorContains: "invalid refresh token",
		},
		{
			name:          "malformed token",
			refreshToken:  "not-a-token",
			sessionRepo:   &mockSessionRepository{},
			expectedError: true,
			errorContains: "invalid refresh token",
		},
		{
			name:          "token not matching stored session",
			refreshToken:  validRefreshToken,
			sessionRepo:   &mockSessionRepository{getErr: errors.New("refresh token reused or invalidated")},
			expectedError: true,
			errorContains: "refresh token reused or invalidated",
		},
		{
			name:          "stored expiry in the past",
			refreshToken:  validRefreshToken,
			sessionRepo:   &mockSessionRepository{user: sessionUser(pastExpiry)},
			expectedError: true,
			errorContains: "refresh token expired",
		},
		{
			// An expiry equal to now is already expired; only a strictly
			// future timestamp passes.
			name:          "stored expiry exactly now",
			refreshToken:  validRefreshToken,
			sessionRepo:   &mockSessionRepository{user: sessionUser(time.Now())},
			expectedError: true,
			errorContains: "refresh token expired",
		},
		{
			name:         "stored expiry missing",
			refreshToken: validRefreshToken,
			sessionRepo: &mockSessionRepository{user: &models.User{
				ID:   1,
				Role: models.RoleUser,
			}},
			expectedError: true,
			errorContains: "refresh token expired",
		},
		{
			name:          "session persistence failure",
			refreshToken:  validRefreshToken,
			sessionRepo:   &mockSessionRepository{user: sessionUser(futureExpiry), updateErr: errors.New("update error")},
			expectedError: true,
			errorContains: "failed to save refresh token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(&mockUserRepository{}, tt.sessionRepo, tokenGen, nil, logger)

			accessToken, refreshToken, err := svc.Refresh(context.Background(), tt.refreshToken)

			if tt.expectedError {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
				// Rotation persists the new token.
				assert.Equal(t, refreshToken, tt.sessionRepo.storedToken)
			}
		})
	}

	t.Run("rotation invalidates the previous token", func(t *testing.T) {
		sessionRepo := &mockSessionRepository{
			user:           sessionUser(futureExpiry),
			matchStoredSet: true,
			storedToken:    validRefreshToken,
		}
		svc := NewAuthService(&mockUserRepository{}, sessionRepo, tokenGen, nil, logger)

		// Different iat so the rotated token differs from the original.
		time.Sleep(1100 * time.Millisecond)

		_, newRefreshToken, err := svc.Refresh(context.Background(), validRefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, validRefreshToken, newRefreshToken)

		// Replaying the consumed token must fail.
		_, _, err = svc.Refresh(context.Background(), validRefreshToken)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "refresh token reused or invalidated")

		// The rotated token keeps working.
		sessionRepo.user = sessionUser(futureExpiry)
		_, _, err = svc.Refresh(context.Background(), newRefreshToken)
		assert.NoError(t, err)
	})
}

func TestAuthService_Logout(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	tokenGen := newTestTokenGenerator()

	futureExpiry := time.Now().Add(24 * time.Hour)
	_, validRefreshToken, err := tokenGen.GenerateTokens(1, models.RoleUser)
	require.NoError(t, err)

	t.Run("revokes matching session", func(t *testing.T) {
		sessionRepo := &mockSessionRepository{user: &models.User{
			ID:                    1,
			RefreshTokenExpiresAt: &futureExpiry,
		}}
		svc := NewAuthService(&mockUserRepository{}, sessionRepo, tokenGen, nil, logger)

		err := svc.Logout(context.Background(), validRefreshToken)
		require.NoError(t, err)
		assert.Equal(t, 1, sessionRepo.clearedUserID)
	})

	t.Run("empty token is a no-op", func(t *testing.T) {
		sessionRepo := &mockSessionRepository{}
		svc := NewAuthService(&mockUserRepository{}, sessionRepo, tokenGen, nil, logger)

		err := svc.Logout(context.Background(), "")
		assert.NoError(t, err)
		assert.Zero(t, sessionRepo.clearedUserID)
	})

	t.Run("malformed token is a no-op", func(t *testing.T) {
		sessionRepo := &mockSessionRepository{}
		svc := NewAuthService(&mockUserRepository{}, sessionRepo, tokenGen, nil, logger)

		err := svc.Logout(context.Background(), "garbage")
		assert.NoError(t, err)
		assert.Zero(t, sessionRepo.clearedUserID)
	})

	t.Run("already-rotated token is a no-op", func(t *testing.T) {
		sessionRepo := &mockSessionRepository{getErr: errors.New("refresh token reused or invalidated")}
		svc := NewAuthService(&mockUserRepository{}, sessionRepo, tokenGen, nil, logger)

		err := svc.Logout(context.Background(), validRefreshToken)
		assert.NoError(t, err)
		assert.Zero(t, sessionRepo.clearedUserID)
	})

	t.Run("clear failure surfaces", func(t *testing.T) {
		sessionRepo := &mockSessionRepository{
			user:     &models.User{ID: 1, RefreshTokenExpiresAt: &futureExpiry},
			clearErr: errors.New("database error"),
		}
		svc := NewAuthService(&mockUserRepository{}, sessionRepo, tokenGen, nil, logger)

		err := svc.Logout(context.Background(), validRefreshToken)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to clear session")
	})
}
