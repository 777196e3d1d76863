package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stayops/hotel-ops-backend/internal/models"
)

// PaymentRepository handles database operations for the payments table,
// including the refund transaction that must keep a payment and its linked
// reservation mutually consistent. It holds *sqlx.DB directly because the
// refund runs in a transaction with row locks.
type PaymentRepository struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *sqlx.DB, logger *logrus.Logger) *PaymentRepository {
	return &PaymentRepository{db: db, logger: logger}
}

const paymentColumns = `
	id, reservation_id, user_id, transaction_id, amount, method,
	status, created_at, canceled_at
`

// GetByID retrieves a payment by id
func (r *PaymentRepository) GetByID(id int64) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	var p models.Payment
	err := r.db.Get(&p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundError("payment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment %d: %w", id, err)
	}

	return &p, nil
}

// Refund atomically cancels a completed payment together with its linked
// reservation. The payment row is locked for the whole transaction so
// concurrent refund attempts on the same id serialize: the loser sees
// CANCELLED after the winner commits and fails the status precondition.
//
// The reservation is updated before the payment. If the transaction dies
// between the two statements nothing is committed; if the store ever
// replays them non-atomically, the surviving state is a cancelled
// reservation with a still-COMPLETED payment, which a retried refund
// completes. The reverse order could leave a cancelled payment pointing at
// an active reservation, which no retry can repair.
func (r *PaymentRepository) Refund(paymentID int64, now time.Time) (*models.Payment, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin refund transaction: %w", err)
	}
	defer tx.Rollback()

	var p models.Payment
	err = tx.Get(&p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundError("payment", paymentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment %d: %w", paymentID, err)
	}

	if p.Status != models.PaymentStatusCompleted {
		return nil, models.InvalidStateError(
			fmt.Sprintf("only completed payments can be refunded, current status: %s", p.Status))
	}

	if p.ReservationID == nil {
		return nil, models.BrokenLinkError(
			fmt.Sprintf("payment %d has no linked reservation id", paymentID))
	}

	var res models.Reservation
	err = tx.Get(&res, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, *p.ReservationID)
	if errors.Is(err, sql.ErrNoRows) {
		// The payment outlived its reservation. Corrupted state, not a
		// user-correctable condition.
		return nil, models.InvalidStateError(
			fmt.Sprintf("linked reservation %d for payment %d no longer exists", *p.ReservationID, paymentID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation %d: %w", *p.ReservationID, err)
	}

	if res.Status == models.ReservationStatusCancelled {
		r.logger.WithFields(logrus.Fields{
			"payment_id":     paymentID,
			"reservation_id": res.ID,
		}).Info("reservation already cancelled, refunding payment only")
	} else {
		if _, err := tx.Exec(
			`UPDATE reservations SET status = $1 WHERE id = $2`,
			models.ReservationStatusCancelled, res.ID,
		); err != nil {
			return nil, fmt.Errorf("failed to cancel reservation %d: %w", res.ID, err)
		}
	}

	if _, err := tx.Exec(
		`UPDATE payments SET status = $1, canceled_at = $2 WHERE id = $3`,
		models.PaymentStatusCancelled, now, paymentID,
	); err != nil {
		return nil, fmt.Errorf("failed to cancel payment %d: %w", paymentID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit refund for payment %d: %w", paymentID, err)
	}

	p.Status = models.PaymentStatusCancelled
	p.CanceledAt = &now
	return &p, nil
}

// Search retrieves a page of payment summaries with hotel and guest names
// joined in. All filters are optional and compose with AND; default
// ordering is newest first.
func (r *PaymentRepository) Search(filter models.PaymentSearchFilter) (*models.PaymentPage, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	addArg := func(clause string, value interface{}) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != nil {
		addArg("p.status = $%d", *filter.Status)
	}
	if filter.From != nil {
		addArg("p.created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		// upper bound is exclusive; callers pass the day after the last
		// included calendar day
		addArg("p.created_at < $%d", *filter.To)
	}
	if filter.HotelName != nil {
		addArg("h.name ILIKE '%%' || $%d || '%%'", *filter.HotelName)
	}
	if filter.UserName != nil {
		addArg("u.name ILIKE '%%' || $%d || '%%'", *filter.UserName)
	}

	fromClause := `
		FROM payments p
		LEFT JOIN reservations res ON p.reservation_id = res.id
		LEFT JOIN rooms rm ON res.room_id = rm.id
		LEFT JOIN hotels h ON rm.hotel_id = h.id
		LEFT JOIN users u ON p.user_id = u.id
		WHERE ` + strings.Join(where, " AND ")

	var total int64
	if err := r.db.Get(&total, "SELECT COUNT(*) "+fromClause, args...); err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	query := `
		SELECT
			p.id AS payment_id,
			p.reservation_id,
			p.transaction_id,
			h.name AS hotel_name,
			u.name AS user_name,
			p.amount,
			p.method,
			p.status,
			p.created_at,
			p.canceled_at
	` + fromClause + fmt.Sprintf(`
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	args = append(args, pageSize, (page-1)*pageSize)

	items := []models.PaymentSummary{}
	if err := r.db.Select(&items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search payments: %w", err)
	}

	return &models.PaymentPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
	}, nil
}

// periodExpr returns the SQL label expression for a bucket size. Bucket
// boundaries are taken in the zone bound to the zoneParam placeholder, not
// the DB session zone, so labels agree with the instant range built from
// the same zone. Otherwise a payment shortly before local midnight is
// labeled with the previous (session-zone) day.
func periodExpr(granularity models.Granularity, zoneParam int) string {
	switch granularity {
	case models.GranularityWeek:
		// label a week by its monday
		return fmt.Sprintf(`to_char(date_trunc('week', p.created_at AT TIME ZONE $%d), 'YYYY-MM-DD')`, zoneParam)
	case models.GranularityMonth:
		return fmt.Sprintf(`to_char(p.created_at AT TIME ZONE $%d, 'YYYY-MM')`, zoneParam)
	default:
		return fmt.Sprintf(`to_char(p.created_at AT TIME ZONE $%d, 'YYYY-MM-DD')`, zoneParam)
	}
}

// AggregateByPeriod sums payments into time buckets of the given size
func (r *PaymentRepository) AggregateByPeriod(granularity models.Granularity, filter models.AnalyticsFilter) ([]models.AnalyticsBucket, error) {
	where, args := analyticsWhere(filter)

	zone := filter.Zone
	if zone == "" {
		zone = "UTC"
	}
	args = append(args, zone)

	return r.aggregate(periodExpr(granularity, len(args)), where, args)
}

// AggregateByHotel sums payments per hotel
func (r *PaymentRepository) AggregateByHotel(filter models.AnalyticsFilter) ([]models.AnalyticsBucket, error) {
	where, args := analyticsWhere(filter)
	return r.aggregate(`COALESCE(h.name, 'Unknown')`, where, args)
}

// AggregateByMethod sums payments per payment method
func (r *PaymentRepository) AggregateByMethod(filter models.AnalyticsFilter) ([]models.AnalyticsBucket, error) {
	where, args := analyticsWhere(filter)
	return r.aggregate(`p.method`, where, args)
}

// analyticsWhere builds the shared filter clauses so all three groupings
// aggregate the same payment set and their totals agree.
func analyticsWhere(filter models.AnalyticsFilter) ([]string, []interface{}) {
	where := []string{"p.created_at >= $1", "p.created_at < $2"}
	args := []interface{}{filter.From, filter.To}

	if filter.HotelID != nil {
		args = append(args, *filter.HotelID)
		where = append(where, fmt.Sprintf("h.id = $%d", len(args)))
	}
	if filter.Method != nil {
		args = append(args, *filter.Method)
		where = append(where, fmt.Sprintf("p.method = $%d", len(args)))
	}
	return where, args
}

// aggregate runs one grouped sum over the filtered payment set
func (r *PaymentRepository) aggregate(labelExpr string, where []string, args []interface{}) ([]models.AnalyticsBucket, error) {
	query := `
		SELECT ` + labelExpr + ` AS label,
		       COALESCE(SUM(p.amount), 0) AS amount,
		       COUNT(*) AS count
		FROM payments p
		LEFT JOIN reservations res ON p.reservation_id = res.id
		LEFT JOIN rooms rm ON res.room_id = rm.id
		LEFT JOIN hotels h ON rm.hotel_id = h.id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY label
		ORDER BY label
	`

	buckets := []models.AnalyticsBucket{}
	if err := r.db.Select(&buckets, query, args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}
	return buckets, nil
}
