package database

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stayops/hotel-ops-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPaymentRepoTest(t *testing.T) (*PaymentRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	repo := NewPaymentRepository(sqlxDB, logger)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func paymentRows(id int64, reservationID *int64, status models.PaymentStatus) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "reservation_id", "user_id", "transaction_id", "amount",
		"method", "status", "created_at", "canceled_at",
	})
	var resVal interface{}
	if reservationID != nil {
		resVal = *reservationID
	}
	rows.AddRow(id, resVal, int64(9), "txn-001", 150000, "CARD", string(status), time.Now(), nil)
	return rows
}

func reservationRows(id int64, status models.ReservationStatus) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "room_id", "user_id", "start_date", "end_date",
		"num_adult", "num_kid", "status", "res_status", "created_at",
	})
	rows.AddRow(id, int64(3), int64(9), time.Now(), time.Now().AddDate(0, 0, 2), 2, 0, string(status), nil, time.Now())
	return rows
}

func TestGetPaymentByID(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	reservationID := int64(11)
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = (.+)").
		WithArgs(int64(5)).
		WillReturnRows(paymentRows(5, &reservationID, models.PaymentStatusCompleted))

	payment, err := repo.GetByID(5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), payment.ID)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	require.NotNil(t, payment.ReservationID)
	assert.Equal(t, reservationID, *payment.ReservationID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPaymentByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = (.+)").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(404)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefund_CancelsReservationThenPayment(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	reservationID := int64(11)

	// Ordered expectations: the reservation update must land before the
	// payment update inside one transaction.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(5)).
		WillReturnRows(paymentRows(5, &reservationID, models.PaymentStatusCompleted))
	mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id = (.+) FOR UPDATE").
		WithArgs(reservationID).
		WillReturnRows(reservationRows(reservationID, models.ReservationStatusActive))
	mock.ExpectExec("UPDATE reservations SET status =").
		WithArgs(models.ReservationStatusCancelled, reservationID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE payments SET status =").
		WithArgs(models.PaymentStatusCancelled, now, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payment, err := repo.Refund(5, now)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCancelled, payment.Status)
	require.NotNil(t, payment.CanceledAt)
	assert.Equal(t, now, *payment.CanceledAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefund_PaymentNotFound(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Refund(404, time.Now())
	assert.True(t, errors.Is(err, models.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefund_AlreadyCancelled(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	reservationID := int64(11)

	// A second refund attempt sees the CANCELLED status and performs no
	// writes at all.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(5)).
		WillReturnRows(paymentRows(5, &reservationID, models.PaymentStatusCancelled))
	mock.ExpectRollback()

	_, err := repo.Refund(5, time.Now())
	assert.True(t, errors.Is(err, models.ErrInvalidState))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefund_PendingPayment(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	reservationID := int64(11)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(5)).
		WillReturnRows(paymentRows(5, &reservationID, models.PaymentStatusPending))
	mock.ExpectRollback()

	_, err := repo.Refund(5, time.Now())
	assert.True(t, errors.Is(err, models.ErrInvalidState))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefund_MissingReservationLink(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(5)).
		WillReturnRows(paymentRows(5, nil, models.PaymentStatusCompleted))
	mock.ExpectRollback()

	_, err := repo.Refund(5, time.Now())
	assert.True(t, errors.Is(err, models.ErrBrokenLink))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefund_ReservationRowGone(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	reservationID := int64(11)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(5)).
		WillReturnRows(paymentRows(5, &reservationID, models.PaymentStatusCompleted))
	mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id = (.+) FOR UPDATE").
		WithArgs(reservationID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Refund(5, time.Now())
	assert.True(t, errors.Is(err, models.ErrInvalidState))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefund_ReservationAlreadyCancelled(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	reservationID := int64(11)

	// The reservation was cancelled out of band; only the payment is
	// touched.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(5)).
		WillReturnRows(paymentRows(5, &reservationID, models.PaymentStatusCompleted))
	mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id = (.+) FOR UPDATE").
		WithArgs(reservationID).
		WillReturnRows(reservationRows(reservationID, models.ReservationStatusCancelled))
	mock.ExpectExec("UPDATE payments SET status =").
		WithArgs(models.PaymentStatusCancelled, now, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payment, err := repo.Refund(5, now)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCancelled, payment.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchPayments(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	status := models.PaymentStatusCompleted
	hotelName := "Grand"

	mock.ExpectQuery("SELECT COUNT(.+) FROM payments p").
		WithArgs(status, hotelName).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	mock.ExpectQuery("SELECT (.+) FROM payments p (.+) ORDER BY p.created_at DESC").
		WithArgs(status, hotelName, 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"payment_id", "reservation_id", "transaction_id", "hotel_name",
			"user_name", "amount", "method", "status", "created_at", "canceled_at",
		}).AddRow(5, int64(11), "txn-001", "Grand Plaza", "Alex Guest", 150000, "CARD", "COMPLETED", time.Now(), nil))

	page, err := repo.Search(models.PaymentSearchFilter{
		Status:    &status,
		HotelName: &hotelName,
		Page:      2,
		PageSize:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), page.TotalItems)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PageSize)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "txn-001", page.Items[0].TransactionID)
	assert.Equal(t, "Grand Plaza", *page.Items[0].HotelName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchPayments_UpperBoundExclusive(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	// Callers pass the day after the last included calendar day; a payment
	// stamped exactly at that midnight must not match.
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT(.+)p.created_at >= (.+) AND p.created_at < (.+)`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+)p.created_at >= (.+) AND p.created_at < (.+)ORDER BY p.created_at DESC`).
		WithArgs(from, to, 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id"}))

	_, err := repo.Search(models.PaymentSearchFilter{From: &from, To: &to})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchPayments_DefaultPaging(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COUNT(.+) FROM payments p").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM payments p (.+) ORDER BY p.created_at DESC").
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id"}))

	page, err := repo.Search(models.PaymentSearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Empty(t, page.Items)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregateByPeriod(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT to_char(.+) AS label").
		WithArgs(from, to, "Asia/Seoul").
		WillReturnRows(sqlmock.NewRows([]string{"label", "amount", "count"}).
			AddRow("2026-03-09", 300000, 2).
			AddRow("2026-03-10", 150000, 1))

	buckets, err := repo.AggregateByPeriod(models.GranularityDay, models.AnalyticsFilter{From: from, To: to, Zone: "Asia/Seoul"})
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, "2026-03-09", buckets[0].Label)
	assert.Equal(t, int64(300000), buckets[0].Amount)
	assert.Equal(t, int64(1), buckets[1].Count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregateByPeriod_LabelsUseFilterZone(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	// Range boundaries are built in the configured zone; bucket labels
	// must convert created_at into the same zone, not the DB session
	// zone, or a payment near local midnight lands under the wrong day.
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT to_char\(p.created_at AT TIME ZONE (.+), 'YYYY-MM'\) AS label`).
		WithArgs(from, to, "Asia/Seoul").
		WillReturnRows(sqlmock.NewRows([]string{"label", "amount", "count"}).
			AddRow("2026-03", 450000, 3))

	buckets, err := repo.AggregateByPeriod(models.GranularityMonth, models.AnalyticsFilter{From: from, To: to, Zone: "Asia/Seoul"})
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "2026-03", buckets[0].Label)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregateByPeriod_WeekTruncatesInFilterZone(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT to_char\(date_trunc\('week', p.created_at AT TIME ZONE (.+)\), 'YYYY-MM-DD'\) AS label`).
		WithArgs(from, to, "UTC").
		WillReturnRows(sqlmock.NewRows([]string{"label", "amount", "count"}).
			AddRow("2026-03-02", 150000, 1))

	// an unset zone falls back to UTC
	buckets, err := repo.AggregateByPeriod(models.GranularityWeek, models.AnalyticsFilter{From: from, To: to})
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "2026-03-02", buckets[0].Label)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregateByHotel_Filtered(t *testing.T) {
	repo, mock, cleanup := setupPaymentRepoTest(t)
	defer cleanup()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	hotelID := int64(2)
	method := "CARD"

	mock.ExpectQuery("SELECT COALESCE(.+) AS label").
		WithArgs(from, to, hotelID, method).
		WillReturnRows(sqlmock.NewRows([]string{"label", "amount", "count"}).
			AddRow("Grand Plaza", 450000, 3))

	buckets, err := repo.AggregateByHotel(models.AnalyticsFilter{
		From:    from,
		To:      to,
		HotelID: &hotelID,
		Method:  &method,
	})
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "Grand Plaza", buckets[0].Label)
	assert.Equal(t, int64(450000), buckets[0].Amount)

	assert.NoError(t, mock.ExpectationsWereMet())
}
