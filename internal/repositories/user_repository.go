package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gearshop/backend/internal/models"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// mysqlErrDuplicateEntry is the MySQL error number for a unique key violation
const mysqlErrDuplicateEntry = 1062

// userRepository implements UserRepository
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role)
	if err != nil {
		// A concurrent registration can slip past the service-level existence
		// check; the unique key on email catches it here.
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			return fmt.Errorf("email already exists")
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

// GetByEmail retrieves a user by exact email match, password hash included.
// This is the only read that loads the hash; it exists for the credential check.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM users
		WHERE email = ?
		LIMIT 1
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		r.logger.Error("failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID without credential or session fields
func (r *userRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	query := `
		SELECT id, name, email, role, created_at
		FROM users
		WHERE id = ?
		LIMIT 1
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		r.logger.Error("failed to get user by id", zap.Error(err), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// ExistsByEmail checks if a user exists with the given email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM users WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check email existence", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// GetRoleByID retrieves the current role of a user
func (r *userRepository) GetRoleByID(ctx context.Context, userID int) (models.Role, error) {
	query := `SELECT role FROM users WHERE id = ?`

	var role models.Role
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&role)

	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("user not found")
	}
	if err != nil {
		r.logger.Error("failed to get user role", zap.Error(err), zap.Int("userId", userID))
		return 0, fmt.Errorf("failed to get user role: %w", err)
	}

	return role, nil
}

// UpdateRefreshToken stores the current refresh token and its expiry for a
// user, overwriting any prior session. The two columns are always written
// together so neither exists without the other.
func (r *userRepository) UpdateRefreshToken(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = ?, refresh_token_expires_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, token, expiresAt, userID)
	if err != nil {
		r.logger.Error("failed to update refresh token", zap.Error(err), zap.Int("userId", userID))
		return fmt.Errorf("failed to update refresh token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// GetByIDAndRefreshToken retrieves a user matching both the user ID and the
// exact stored refresh token value. No match with a signature-valid token
// means the token was already rotated or the session revoked.
func (r *userRepository) GetByIDAndRefreshToken(ctx context.Context, userID int, token string) (*models.User, error) {
	query := `
		SELECT id, name, email, role, refresh_token, refresh_token_expires_at, created_at
		FROM users
		WHERE id = ? AND refresh_token = ?
		LIMIT 1
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, userID, token).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.RefreshToken,
		&user.RefreshTokenExpiresAt,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("refresh token reused or invalidated")
	}
	if err != nil {
		r.logger.Error("failed to get user by refresh token", zap.Error(err), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to get user by refresh token: %w", err)
	}

	return user, nil
}

// ClearRefreshToken removes the stored session for a user.
// Clearing an already-clear session is not an error.
func (r *userRepository) ClearRefreshToken(ctx context.Context, userID int) error {
	query := `
		UPDATE users
		SET refresh_token = NULL, refresh_token_expires_at = NULL
		WHERE id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		r.logger.Error("failed to clear refresh token", zap.Error(err), zap.Int("userId", userID))
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	return nil
}

// List retrieves users with pagination and optional name/email search
func (r *userRepository) List(ctx context.Context, page, count int, search string) ([]models.User, error) {
	query := `
		SELECT id, name, email, role, created_at
		FROM users
	`
	args := []any{}

	if search != "" {
		query += ` WHERE name LIKE ? OR email LIKE ?`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	query += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, count, (page-1)*count)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

// Delete removes a user by ID
func (r *userRepository) Delete(ctx context.Context, userID int) error {
	query := `DELETE FROM users WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to delete user", zap.Error(err), zap.Int("userId", userID))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}
