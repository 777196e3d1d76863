package models

import "time"

// HotelApprovalStatus represents the admin approval state of a hotel listing
type HotelApprovalStatus string

const (
	HotelApprovalPending  HotelApprovalStatus = "PENDING"
	HotelApprovalApproved HotelApprovalStatus = "APPROVED"
	HotelApprovalRejected HotelApprovalStatus = "REJECTED"
)

// Hotel represents a hotel property. Each owner holds at most one hotel.
type Hotel struct {
	ID             int64               `json:"id" db:"id"`
	OwnerID        int64               `json:"owner_id" db:"owner_id"`
	Name           string              `json:"name" db:"name"`
	Address        *string             `json:"address,omitempty" db:"address"`
	StarRating     int                 `json:"star_rating" db:"star_rating"`
	ApprovalStatus HotelApprovalStatus `json:"approval_status" db:"approval_status"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
}

// HotelProfileResponse is the owner-facing view of their hotel
type HotelProfileResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	StarRating     int    `json:"star_rating"`
	ApprovalStatus string `json:"approval_status"`
}
