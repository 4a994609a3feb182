package models

import "time"

type Role int

// UserRole constants
const (
	RoleUser  Role = 1
	RoleAdmin Role = 2
)

// String returns the role name used in API responses
func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "user"
}

// User represents a user account with its current session state
type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never serialize password hash
	Role         Role   `json:"role"`
	// RefreshToken is the single currently-valid refresh token for the user.
	// Empty together with RefreshTokenExpiresAt means no active session.
	RefreshToken          string     `json:"-"`
	RefreshTokenExpiresAt *time.Time `json:"-"`
	CreatedAt             time.Time  `json:"createdAt"`
}

// SafeUser is the projection of a user returned by the API.
// It never carries the password hash or the refresh token.
type SafeUser struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Safe returns the API projection of the user
func (u *User) Safe() *SafeUser {
	return &SafeUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role.String(),
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login.
// The refresh token travels only in the HTTP-only cookie, never in the body.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	User        *SafeUser `json:"user"`
}
