package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stayops/hotel-ops-backend/internal/database"
	"github.com/stayops/hotel-ops-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPaymentServiceTest(t *testing.T) (*PaymentService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	paymentRepo := database.NewPaymentRepository(sqlxDB, logger)
	auditRepo := database.NewRefundAuditRepository(sqlxDB, logger)
	service := NewPaymentService(paymentRepo, auditRepo, nil, logger, testZone)

	cleanup := func() {
		db.Close()
	}

	return service, mock, cleanup
}

func completedPaymentRows(id, reservationID int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "reservation_id", "user_id", "transaction_id", "amount",
		"method", "status", "created_at", "canceled_at",
	}).AddRow(id, reservationID, int64(9), "txn-001", 150000, "CARD", "COMPLETED", time.Now(), nil)
}

func activeReservationRows(id int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "room_id", "user_id", "start_date", "end_date",
		"num_adult", "num_kid", "status", "res_status", "created_at",
	}).AddRow(id, int64(3), int64(9), time.Now(), time.Now().AddDate(0, 0, 2), 2, 0, "ACTIVE", nil, time.Now())
}

func TestRefund_WritesSuccessAudit(t *testing.T) {
	service, mock, cleanup := setupPaymentServiceTest(t)
	defer cleanup()

	fixed := time.Date(2026, 3, 10, 14, 0, 0, 0, testZone)
	service.now = func() time.Time { return fixed }

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(5)).
		WillReturnRows(completedPaymentRows(5, 11))
	mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(11)).
		WillReturnRows(activeReservationRows(11))
	mock.ExpectExec("UPDATE reservations SET status =").
		WithArgs(models.ReservationStatusCancelled, int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE payments SET status =").
		WithArgs(models.PaymentStatusCancelled, fixed, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// audit write happens after the transaction commits
	mock.ExpectExec("INSERT INTO refund_audits").
		WithArgs(sqlmock.AnyArg(), int64(5), int64(1), models.RefundOutcomeSuccess, nil,
			"203.0.113.7", "Mozilla/5.0", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := service.Refund(5, RefundContext{
		AdminID:   1,
		IPAddress: "203.0.113.7",
		UserAgent: "Mozilla/5.0",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefund_WritesFailureAudit(t *testing.T) {
	service, mock, cleanup := setupPaymentServiceTest(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	mock.ExpectExec("INSERT INTO refund_audits").
		WithArgs(sqlmock.AnyArg(), int64(404), int64(1), models.RefundOutcomeFailed, sqlmock.AnyArg(),
			"203.0.113.7", "Mozilla/5.0", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := service.Refund(404, RefundContext{
		AdminID:   1,
		IPAddress: "203.0.113.7",
		UserAgent: "Mozilla/5.0",
	})
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefund_AuditFailureDoesNotMaskSuccess(t *testing.T) {
	service, mock, cleanup := setupPaymentServiceTest(t)
	defer cleanup()

	fixed := time.Date(2026, 3, 10, 14, 0, 0, 0, testZone)
	service.now = func() time.Time { return fixed }

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(5)).
		WillReturnRows(completedPaymentRows(5, 11))
	mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(11)).
		WillReturnRows(activeReservationRows(11))
	mock.ExpectExec("UPDATE reservations SET status =").
		WithArgs(models.ReservationStatusCancelled, int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE payments SET status =").
		WithArgs(models.PaymentStatusCancelled, fixed, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectExec("INSERT INTO refund_audits").
		WillReturnError(errors.New("audit table unavailable"))

	err := service.Refund(5, RefundContext{AdminID: 1})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalytics_RunsAllThreeGroupings(t *testing.T) {
	service, mock, cleanup := setupPaymentServiceTest(t)
	defer cleanup()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, testZone)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, testZone)
	// half-open range: to's day is included by passing the next midnight
	rangeEnd := time.Date(2026, 4, 1, 0, 0, 0, 0, testZone)

	// period labels are computed in the service zone, passed as a bind arg
	mock.ExpectQuery("SELECT to_char(.+) AS label").
		WithArgs(from, rangeEnd, "KST").
		WillReturnRows(sqlmock.NewRows([]string{"label", "amount", "count"}).
			AddRow("2026-03-09", 300000, 2))
	mock.ExpectQuery("SELECT COALESCE(.+) AS label").
		WithArgs(from, rangeEnd).
		WillReturnRows(sqlmock.NewRows([]string{"label", "amount", "count"}).
			AddRow("Grand Plaza", 300000, 2))
	mock.ExpectQuery("SELECT p.method AS label").
		WithArgs(from, rangeEnd).
		WillReturnRows(sqlmock.NewRows([]string{"label", "amount", "count"}).
			AddRow("CARD", 300000, 2))

	analytics, err := service.Analytics(context.Background(), "day", nil, nil, from, to)
	require.NoError(t, err)
	require.Len(t, analytics.ByPeriod, 1)
	assert.Equal(t, "2026-03-09", analytics.ByPeriod[0].Label)
	require.Len(t, analytics.ByHotel, 1)
	assert.Equal(t, "Grand Plaza", analytics.ByHotel[0].Label)
	require.Len(t, analytics.ByMethod, 1)
	assert.Equal(t, "CARD", analytics.ByMethod[0].Label)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalytics_UnknownGranularityFallsBackToDay(t *testing.T) {
	service, mock, cleanup := setupPaymentServiceTest(t)
	defer cleanup()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, testZone)
	rangeEnd := time.Date(2026, 3, 2, 0, 0, 0, 0, testZone)

	// daily labels, not an error
	mock.ExpectQuery("SELECT to_char(.+) AS label").
		WithArgs(from, rangeEnd, "KST").
		WillReturnRows(sqlmock.NewRows([]string{"label", "amount", "count"}))
	mock.ExpectQuery("SELECT COALESCE(.+) AS label").
		WithArgs(from, rangeEnd).
		WillReturnRows(sqlmock.NewRows([]string{"label", "amount", "count"}))
	mock.ExpectQuery("SELECT p.method AS label").
		WithArgs(from, rangeEnd).
		WillReturnRows(sqlmock.NewRows([]string{"label", "amount", "count"}))

	analytics, err := service.Analytics(context.Background(), "hourly", nil, nil, from, from)
	require.NoError(t, err)
	assert.Empty(t, analytics.ByPeriod)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsCacheKey(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, testZone)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, testZone)

	key := analyticsCacheKey(models.GranularityDay, models.AnalyticsFilter{From: from, To: to})
	assert.Equal(t, "analytics:day:2026-03-01:2026-04-01:all:all", key)

	hotelID := int64(2)
	method := "CARD"
	key = analyticsCacheKey(models.GranularityMonth, models.AnalyticsFilter{
		From:    from,
		To:      to,
		HotelID: &hotelID,
		Method:  &method,
	})
	assert.Equal(t, "analytics:month:2026-03-01:2026-04-01:2:CARD", key)
}

func TestPaymentServiceGet(t *testing.T) {
	service, mock, cleanup := setupPaymentServiceTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = (.+)").
		WithArgs(int64(5)).
		WillReturnRows(completedPaymentRows(5, 11))

	payment, err := service.Get(5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), payment.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
