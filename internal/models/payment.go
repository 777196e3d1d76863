package models

import "time"

// PaymentStatus is the payment lifecycle
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Payment references its reservation and payer by id only (weak references).
// A payment with a nil reservation id is corrupted data: refunds reject it
// as a broken link rather than guessing.
type Payment struct {
	ID            int64         `json:"id" db:"id"`
	ReservationID *int64        `json:"reservation_id,omitempty" db:"reservation_id"`
	UserID        *int64        `json:"user_id,omitempty" db:"user_id"`
	TransactionID string        `json:"transaction_id" db:"transaction_id"`
	Amount        int           `json:"amount" db:"amount"`
	Method        string        `json:"method" db:"method"`
	Status        PaymentStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	CanceledAt    *time.Time    `json:"canceled_at,omitempty" db:"canceled_at"`
}

// PaymentSummary is one row of the admin payment list, with the hotel and
// guest names joined in. Name fields are nullable because the linked rows
// may have been deleted.
type PaymentSummary struct {
	PaymentID     int64      `json:"payment_id" db:"payment_id"`
	ReservationID *int64     `json:"reservation_id,omitempty" db:"reservation_id"`
	TransactionID string     `json:"transaction_id" db:"transaction_id"`
	HotelName     *string    `json:"hotel_name,omitempty" db:"hotel_name"`
	UserName      *string    `json:"user_name,omitempty" db:"user_name"`
	Amount        int        `json:"amount" db:"amount"`
	Method        string     `json:"method" db:"method"`
	Status        string     `json:"status" db:"status"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	CanceledAt    *time.Time `json:"canceled_at,omitempty" db:"canceled_at"`
}

// PaymentSearchFilter narrows the admin payment list. Nil fields mean no
// restriction; the filters compose with AND. The instant range is
// half-open: From inclusive, To exclusive.
type PaymentSearchFilter struct {
	Status    *PaymentStatus
	From      *time.Time
	To        *time.Time
	HotelName *string
	UserName  *string
	Page      int
	PageSize  int
}

// PaymentPage is a page of payment summaries
type PaymentPage struct {
	Items      []PaymentSummary `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalItems int64            `json:"total_items"`
}
