package models

import (
	"time"

	"github.com/google/uuid"
)

// RefundAudit records one refund attempt against a payment, successful or
// not. Audit rows are written outside the refund transaction: a failed
// audit insert must never roll back a committed refund.
type RefundAudit struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	PaymentID  int64      `json:"payment_id" db:"payment_id"`
	AdminID    int64      `json:"admin_id" db:"admin_id"`
	Outcome    string     `json:"outcome" db:"outcome"`
	FailReason *string    `json:"fail_reason,omitempty" db:"fail_reason"`
	IPAddress  string     `json:"ip_address" db:"ip_address"`
	UserAgent  string     `json:"user_agent" db:"user_agent"`
	DeviceType string     `json:"device_type" db:"device_type"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// Refund audit outcomes
const (
	RefundOutcomeSuccess = "success"
	RefundOutcomeFailed  = "failed"
)
