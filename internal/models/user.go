package models

import "time"

// UserRole represents the role assigned to a user account
type UserRole string

const (
	RoleGuest UserRole = "GUEST"
	RoleOwner UserRole = "OWNER"
	RoleAdmin UserRole = "ADMIN"
)

// User represents a user account (guest, hotel owner or administrator)
type User struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	Name      string    `json:"name" db:"name"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Role      UserRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token pair
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       int64  `json:"user_id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
}
