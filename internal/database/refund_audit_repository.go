package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stayops/hotel-ops-backend/internal/models"
)

// RefundAuditRepository persists refund attempt records. Payment events
// must not disappear silently, so insert failures are logged with full
// context even though they never fail the refund itself.
type RefundAuditRepository struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewRefundAuditRepository creates a new RefundAuditRepository
func NewRefundAuditRepository(db *sqlx.DB, logger *logrus.Logger) *RefundAuditRepository {
	return &RefundAuditRepository{db: db, logger: logger}
}

// Insert writes one refund audit row
func (r *RefundAuditRepository) Insert(audit *models.RefundAudit) error {
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO refund_audits (
			id, payment_id, admin_id, outcome, fail_reason,
			ip_address, user_agent, device_type, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(query,
		audit.ID, audit.PaymentID, audit.AdminID, audit.Outcome, audit.FailReason,
		audit.IPAddress, audit.UserAgent, audit.DeviceType, audit.CreatedAt,
	)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"payment_id": audit.PaymentID,
			"admin_id":   audit.AdminID,
			"outcome":    audit.Outcome,
		}).WithError(err).Error("failed to write refund audit record")
		return fmt.Errorf("failed to insert refund audit: %w", err)
	}

	return nil
}
