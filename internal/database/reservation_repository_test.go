package database

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stayops/hotel-ops-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReservationRepoTest(t *testing.T) (*ReservationRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewReservationRepository(&PostgresDB{DB: sqlxDB})

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestGetReservationByID(t *testing.T) {
	repo, mock, cleanup := setupReservationRepoTest(t)
	defer cleanup()

	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)

	mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id = (.+)").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "room_id", "user_id", "start_date", "end_date",
			"num_adult", "num_kid", "status", "res_status", "created_at",
		}).AddRow(11, int64(3), int64(9), start, end, 2, 1, "ACTIVE", "CHECKED_IN", time.Now()))

	res, err := repo.GetByID(11)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.RoomID)
	assert.Equal(t, models.ReservationStatusActive, res.Status)
	assert.Equal(t, models.ResStatusCheckedIn, res.OccupancyStatus())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReservationByID_NullResStatus(t *testing.T) {
	repo, mock, cleanup := setupReservationRepoTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id = (.+)").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "room_id", "user_id", "start_date", "end_date",
			"num_adult", "num_kid", "status", "res_status", "created_at",
		}).AddRow(11, int64(3), int64(9), time.Now(), time.Now(), 2, 0, "ACTIVE", nil, time.Now()))

	res, err := repo.GetByID(11)
	require.NoError(t, err)
	assert.Nil(t, res.ResStatus)
	// rows written before occupancy tracking read back as reserved
	assert.Equal(t, models.ResStatusReserved, res.OccupancyStatus())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReservationByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupReservationRepoTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id = (.+)").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(404)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReservationsByHotel(t *testing.T) {
	repo, mock, cleanup := setupReservationRepoTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM reservations WHERE room_id IN (.+) ORDER BY start_date").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "room_id", "user_id", "start_date", "end_date",
			"num_adult", "num_kid", "status", "res_status", "created_at",
		}).
			AddRow(11, int64(3), int64(9), time.Now(), time.Now(), 2, 0, "ACTIVE", nil, time.Now()).
			AddRow(12, int64(4), int64(10), time.Now(), time.Now(), 1, 0, "CANCELLED", "RESERVED", time.Now()))

	reservations, err := repo.ListByHotel(2)
	require.NoError(t, err)
	require.Len(t, reservations, 2)
	assert.Equal(t, int64(11), reservations[0].ID)
	assert.Equal(t, models.ReservationStatusCancelled, reservations[1].Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateResStatus(t *testing.T) {
	repo, mock, cleanup := setupReservationRepoTest(t)
	defer cleanup()

	mock.ExpectExec("UPDATE reservations SET res_status =").
		WithArgs(models.ResStatusCheckedIn, int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateResStatus(11, models.ResStatusCheckedIn)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateResStatus_NotFound(t *testing.T) {
	repo, mock, cleanup := setupReservationRepoTest(t)
	defer cleanup()

	mock.ExpectExec("UPDATE reservations SET res_status =").
		WithArgs(models.ResStatusCheckedIn, int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateResStatus(404, models.ResStatusCheckedIn)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReservationStatus(t *testing.T) {
	repo, mock, cleanup := setupReservationRepoTest(t)
	defer cleanup()

	mock.ExpectExec("UPDATE reservations SET status =").
		WithArgs(models.ReservationStatusCancelled, int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(11, models.ReservationStatusCancelled)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
