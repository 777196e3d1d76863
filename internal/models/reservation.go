package models

import "time"

// ReservationStatus is the booking lifecycle of a reservation
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "ACTIVE"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

// ResStatus is the on-premise occupancy progress of a reservation. It is
// independent of the booking lifecycle: a cancelled reservation keeps
// whatever occupancy status it had.
type ResStatus string

const (
	ResStatusReserved   ResStatus = "RESERVED"
	ResStatusCheckedIn  ResStatus = "CHECKED_IN"
	ResStatusCheckedOut ResStatus = "CHECKED_OUT"
)

// Reservation references its room and guest by id only. Either row may have
// been deleted since the booking was made; every dereference has to handle
// the absent case.
type Reservation struct {
	ID        int64             `json:"id" db:"id"`
	RoomID    int64             `json:"room_id" db:"room_id"`
	UserID    int64             `json:"user_id" db:"user_id"`
	StartDate time.Time         `json:"start_date" db:"start_date"`
	EndDate   time.Time         `json:"end_date" db:"end_date"`
	NumAdult  int               `json:"num_adult" db:"num_adult"`
	NumKid    int               `json:"num_kid" db:"num_kid"`
	Status    ReservationStatus `json:"status" db:"status"`
	ResStatus *ResStatus        `json:"res_status,omitempty" db:"res_status"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// OccupancyStatus returns the occupancy progress, defaulting legacy rows
// with no value to RESERVED.
func (r *Reservation) OccupancyStatus() ResStatus {
	if r.ResStatus == nil {
		return ResStatusReserved
	}
	return *r.ResStatus
}

// CalendarEvent is a reservation rendered for the owner's calendar view.
// Field names follow the calendar widget's event model; end is exclusive,
// so it is the checkout date plus one day.
type CalendarEvent struct {
	ID            int64              `json:"id"`
	Title         string             `json:"title"`
	Start         string             `json:"start"`
	End           string             `json:"end"`
	Color         string             `json:"color"`
	Status        string             `json:"status"`
	ExtendedProps CalendarEventProps `json:"extendedProps"`
}

// CalendarEventProps carries the extra fields the calendar filters on
type CalendarEventProps struct {
	GuestName string `json:"guestName"`
	RoomName  string `json:"roomName"`
	ResStatus string `json:"resStatus"`
}

// ReservationDetailResponse is the owner-facing reservation detail view.
// Both status fields are exposed so an ACTIVE/CHECKED_IN mismatch with a
// cancelled booking is visible to the operator.
type ReservationDetailResponse struct {
	ID                int64  `json:"id"`
	HotelName         string `json:"hotel_name"`
	GuestName         string `json:"guest_name"`
	GuestPhone        string `json:"guest_phone"`
	CheckInDate       string `json:"check_in_date"`
	CheckOutDate      string `json:"check_out_date"`
	RoomType          string `json:"room_type"`
	NumAdult          int    `json:"num_adult"`
	NumKid            int    `json:"num_kid"`
	ReservationStatus string `json:"reservation_status"`
	ResStatus         string `json:"res_status"`
}
