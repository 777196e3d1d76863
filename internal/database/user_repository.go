package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/stayops/hotel-ops-backend/internal/models"
)

// UserRepository handles database operations for the users table
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by id. Returns models.ErrNotFound when the row
// does not exist.
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	query := `
		SELECT id, email, password, name, phone, role, created_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.db.Get(&user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundError("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	return &user, nil
}

// GetByEmail retrieves a user by email for login
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, email, password, name, phone, role, created_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	err := r.db.Get(&user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}
