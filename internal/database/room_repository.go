package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stayops/hotel-ops-backend/internal/models"
)

// RoomRepository handles database operations for rooms and their images.
// It holds *sqlx.DB directly because image bookkeeping runs in transactions.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new RoomRepository
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

const roomColumns = `
	id, hotel_id, name, room_type, price, room_size, room_count,
	capacity_min, capacity_max, check_in_time, check_out_time,
	smoke, bath, aircon, wifi, free_water, has_window, created_at
`

// GetByID retrieves a room by id, without images
func (r *RoomRepository) GetByID(id int64) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	var room models.Room
	err := r.db.Get(&room, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundError("room", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room %d: %w", id, err)
	}

	return &room, nil
}

// GetImages retrieves a room's images ordered by sort position
func (r *RoomRepository) GetImages(roomID int64) ([]models.RoomImage, error) {
	query := `
		SELECT id, room_id, url, sort_no, is_cover
		FROM room_images
		WHERE room_id = $1
		ORDER BY sort_no
	`

	var images []models.RoomImage
	if err := r.db.Select(&images, query, roomID); err != nil {
		return nil, fmt.Errorf("failed to get images for room %d: %w", roomID, err)
	}
	return images, nil
}

// ListByHotel retrieves all rooms of a hotel
func (r *RoomRepository) ListByHotel(hotelID int64) ([]models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE hotel_id = $1 ORDER BY id`

	var rooms []models.Room
	if err := r.db.Select(&rooms, query, hotelID); err != nil {
		return nil, fmt.Errorf("failed to list rooms for hotel %d: %w", hotelID, err)
	}
	return rooms, nil
}

// Create inserts a room and its images in one transaction. The first image
// becomes the cover.
func (r *RoomRepository) Create(room *models.Room, imageURLs []string) (int64, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertRoom := `
		INSERT INTO rooms (
			hotel_id, name, room_type, price, room_size, room_count,
			capacity_min, capacity_max, check_in_time, check_out_time,
			smoke, bath, aircon, wifi, free_water, has_window
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at
	`

	err = tx.QueryRowx(insertRoom,
		room.HotelID, room.Name, room.RoomType, room.Price, room.RoomSize, room.RoomCount,
		room.CapacityMin, room.CapacityMax, room.CheckInTime, room.CheckOutTime,
		room.Smoke, room.Bath, room.Aircon, room.Wifi, room.FreeWater, room.HasWindow,
	).Scan(&room.ID, &room.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert room: %w", err)
	}

	insertImage := `
		INSERT INTO room_images (room_id, url, sort_no, is_cover)
		VALUES ($1, $2, $3, $4)
	`
	for i, url := range imageURLs {
		if _, err := tx.Exec(insertImage, room.ID, url, i, i == 0); err != nil {
			return 0, fmt.Errorf("failed to insert room image: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit room creation: %w", err)
	}

	return room.ID, nil
}

// Update rewrites a room's fields and reconciles its image set in one
// transaction: requested deletions are removed, new images are appended
// after the current highest sort position, and the cover flag is
// reassigned to the lowest-sorted image if the cover was deleted.
func (r *RoomRepository) Update(room *models.Room, deletedURLs, newImageURLs []string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updateRoom := `
		UPDATE rooms SET
			name = $1, room_type = $2, price = $3, room_size = $4, room_count = $5,
			capacity_min = $6, capacity_max = $7, check_in_time = $8, check_out_time = $9,
			smoke = $10, bath = $11, aircon = $12, wifi = $13, free_water = $14, has_window = $15
		WHERE id = $16
	`
	if _, err := tx.Exec(updateRoom,
		room.Name, room.RoomType, room.Price, room.RoomSize, room.RoomCount,
		room.CapacityMin, room.CapacityMax, room.CheckInTime, room.CheckOutTime,
		room.Smoke, room.Bath, room.Aircon, room.Wifi, room.FreeWater, room.HasWindow,
		room.ID,
	); err != nil {
		return fmt.Errorf("failed to update room %d: %w", room.ID, err)
	}

	if len(deletedURLs) > 0 {
		deleteImages := `DELETE FROM room_images WHERE room_id = $1 AND url = ANY($2)`
		if _, err := tx.Exec(deleteImages, room.ID, pq.Array(deletedURLs)); err != nil {
			return fmt.Errorf("failed to delete room images: %w", err)
		}
	}

	if len(newImageURLs) > 0 {
		var maxSortNo sql.NullInt64
		if err := tx.Get(&maxSortNo, `SELECT MAX(sort_no) FROM room_images WHERE room_id = $1`, room.ID); err != nil {
			return fmt.Errorf("failed to read image sort positions: %w", err)
		}
		next := 0
		if maxSortNo.Valid {
			next = int(maxSortNo.Int64) + 1
		}

		var hasCover bool
		if err := tx.Get(&hasCover, `SELECT EXISTS (SELECT 1 FROM room_images WHERE room_id = $1 AND is_cover)`, room.ID); err != nil {
			return fmt.Errorf("failed to check cover image: %w", err)
		}

		insertImage := `
			INSERT INTO room_images (room_id, url, sort_no, is_cover)
			VALUES ($1, $2, $3, $4)
		`
		for i, url := range newImageURLs {
			isCover := !hasCover && i == 0
			if _, err := tx.Exec(insertImage, room.ID, url, next+i, isCover); err != nil {
				return fmt.Errorf("failed to insert room image: %w", err)
			}
		}
	}

	// The deletions above may have removed the cover. Promote the
	// lowest-sorted remaining image so at most one cover always exists.
	reassignCover := `
		UPDATE room_images SET is_cover = TRUE
		WHERE id = (
			SELECT id FROM room_images
			WHERE room_id = $1
			ORDER BY sort_no
			LIMIT 1
		)
		AND NOT EXISTS (
			SELECT 1 FROM room_images WHERE room_id = $1 AND is_cover
		)
	`
	if _, err := tx.Exec(reassignCover, room.ID); err != nil {
		return fmt.Errorf("failed to reassign cover image: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit room update: %w", err)
	}

	return nil
}

// Delete removes a room and its images
func (r *RoomRepository) Delete(roomID int64) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM room_images WHERE room_id = $1`, roomID); err != nil {
		return fmt.Errorf("failed to delete room images: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM rooms WHERE id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("failed to delete room %d: %w", roomID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.NotFoundError("room", roomID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit room deletion: %w", err)
	}

	return nil
}
