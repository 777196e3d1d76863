package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/stayops/hotel-ops-backend/internal/models"
)

// HotelRepository handles database operations for the hotels table
type HotelRepository struct {
	db DB
}

// NewHotelRepository creates a new HotelRepository
func NewHotelRepository(db DB) *HotelRepository {
	return &HotelRepository{db: db}
}

// GetByID retrieves a hotel by id
func (r *HotelRepository) GetByID(id int64) (*models.Hotel, error) {
	query := `
		SELECT id, owner_id, name, address, star_rating, approval_status, created_at
		FROM hotels
		WHERE id = $1
	`

	var hotel models.Hotel
	err := r.db.Get(&hotel, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundError("hotel", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hotel %d: %w", id, err)
	}

	return &hotel, nil
}

// GetByOwnerID retrieves the hotel held by an owner. Each owner maps to at
// most one hotel.
func (r *HotelRepository) GetByOwnerID(ownerID int64) (*models.Hotel, error) {
	query := `
		SELECT id, owner_id, name, address, star_rating, approval_status, created_at
		FROM hotels
		WHERE owner_id = $1
	`

	var hotel models.Hotel
	err := r.db.Get(&hotel, query, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no hotel assigned to owner %d: %w", ownerID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hotel for owner %d: %w", ownerID, err)
	}

	return &hotel, nil
}
