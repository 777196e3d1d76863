package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/stayops/hotel-ops-backend/internal/models"
)

// ReservationRepository handles database operations for the reservations table
type ReservationRepository struct {
	db DB
}

// NewReservationRepository creates a new ReservationRepository
func NewReservationRepository(db DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `
	id, room_id, user_id, start_date, end_date,
	num_adult, num_kid, status, res_status, created_at
`

// GetByID retrieves a reservation by id
func (r *ReservationRepository) GetByID(id int64) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	var res models.Reservation
	err := r.db.Get(&res, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundError("reservation", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation %d: %w", id, err)
	}

	return &res, nil
}

// ListByHotel retrieves every reservation for any room of a hotel.
// Reservations reference rooms by id only, so this goes through a
// rooms-of-hotel subquery rather than a join on an owning link.
func (r *ReservationRepository) ListByHotel(hotelID int64) ([]models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE room_id IN (SELECT id FROM rooms WHERE hotel_id = $1)
		ORDER BY start_date
	`

	var reservations []models.Reservation
	if err := r.db.Select(&reservations, query, hotelID); err != nil {
		return nil, fmt.Errorf("failed to list reservations for hotel %d: %w", hotelID, err)
	}
	return reservations, nil
}

// UpdateResStatus sets a reservation's occupancy status
func (r *ReservationRepository) UpdateResStatus(id int64, status models.ResStatus) error {
	res, err := r.db.Exec(`UPDATE reservations SET res_status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update res_status for reservation %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.NotFoundError("reservation", id)
	}
	return nil
}

// UpdateStatus sets a reservation's booking lifecycle status
func (r *ReservationRepository) UpdateStatus(id int64, status models.ReservationStatus) error {
	res, err := r.db.Exec(`UPDATE reservations SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status for reservation %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.NotFoundError("reservation", id)
	}
	return nil
}
