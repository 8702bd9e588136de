package models

import "time"

// Role is the access level of a user account
type Role string

// Role constants
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a user account in the system
type User struct {
	ID                  int        `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"` // Never serialize password hash
	Role                Role       `json:"role"`
	Avatar              string     `json:"avatar"`
	ResetTokenHash      *string    `json:"-"` // Hash of an outstanding reset token, nil when none
	ResetTokenExpiresAt *time.Time `json:"-"` // Set and cleared together with ResetTokenHash
	CreatedAt           time.Time  `json:"createdAt"`
}

// SignupRequest represents a signup request body
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest represents a forgot-password request body
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents a reset-password request body
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// UpdateProfileRequest represents a profile update request body.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// CreateUserRequest represents an admin user creation request body
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// UpdateUserRequest represents a user update request body.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Role     *Role   `json:"role"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
