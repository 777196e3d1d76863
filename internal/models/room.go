package models

import (
	"fmt"
	"time"
)

// RoomType represents the enumerated room category
type RoomType string

const (
	RoomTypeSingle   RoomType = "SINGLE"
	RoomTypeTwin     RoomType = "TWIN"
	RoomTypeStandard RoomType = "STANDARD"
	RoomTypeDeluxe   RoomType = "DELUXE"
	RoomTypeSuite    RoomType = "SUITE"
)

// ParseRoomType validates a room type string from a request payload
func ParseRoomType(s string) (RoomType, error) {
	switch RoomType(s) {
	case RoomTypeSingle, RoomTypeTwin, RoomTypeStandard, RoomTypeDeluxe, RoomTypeSuite:
		return RoomType(s), nil
	}
	return "", InvalidInputError(fmt.Sprintf("unknown room type: %q", s))
}

// Room represents a sellable room category within a hotel
type Room struct {
	ID           int64     `json:"id" db:"id"`
	HotelID      int64     `json:"hotel_id" db:"hotel_id"`
	Name         string    `json:"name" db:"name"`
	RoomType     RoomType  `json:"room_type" db:"room_type"`
	Price        int       `json:"price" db:"price"`
	RoomSize     *string   `json:"room_size,omitempty" db:"room_size"`
	RoomCount    int       `json:"room_count" db:"room_count"`
	CapacityMin  int       `json:"capacity_min" db:"capacity_min"`
	CapacityMax  int       `json:"capacity_max" db:"capacity_max"`
	CheckInTime  *string   `json:"check_in_time,omitempty" db:"check_in_time"`
	CheckOutTime *string   `json:"check_out_time,omitempty" db:"check_out_time"`
	Smoke        bool      `json:"smoke" db:"smoke"`
	Bath         int       `json:"bath" db:"bath"`
	Aircon       bool      `json:"aircon" db:"aircon"`
	Wifi         bool      `json:"wifi" db:"wifi"`
	FreeWater    bool      `json:"free_water" db:"free_water"`
	HasWindow    bool      `json:"has_window" db:"has_window"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Images []RoomImage `json:"images,omitempty" db:"-"`
}

// RoomImage is an ordered image attached to a room. At most one image per
// room carries the cover flag.
type RoomImage struct {
	ID      int64  `json:"id" db:"id"`
	RoomID  int64  `json:"room_id" db:"room_id"`
	URL     string `json:"url" db:"url"`
	SortNo  int    `json:"sort_no" db:"sort_no"`
	IsCover bool   `json:"is_cover" db:"is_cover"`
}

// RoomFacilities is the facilities block of a room payload
type RoomFacilities struct {
	Smoke     bool `json:"smoke"`
	Bath      int  `json:"bath"`
	Aircon    bool `json:"aircon"`
	Wifi      bool `json:"wifi"`
	FreeWater bool `json:"freeWater"`
	HasWindow bool `json:"hasWindow"`
}

// RegisterRoomRequest is the JSON part of the multipart room registration
type RegisterRoomRequest struct {
	Name         string         `json:"name"`
	RoomType     string         `json:"roomType"`
	Price        int            `json:"price"`
	Size         *int           `json:"size,omitempty"`
	RoomCount    int            `json:"roomCount"`
	CapacityMin  int            `json:"capacityMin"`
	CapacityMax  int            `json:"capacityMax"`
	CheckInTime  *string        `json:"checkInTime,omitempty"`
	CheckOutTime *string        `json:"checkOutTime,omitempty"`
	Facilities   RoomFacilities `json:"facilities"`
}

// Validate checks the registration payload
func (r *RegisterRoomRequest) Validate() error {
	if r.Name == "" {
		return InvalidInputError("name is required")
	}
	if _, err := ParseRoomType(r.RoomType); err != nil {
		return err
	}
	if r.Price < 0 {
		return InvalidInputError("price must not be negative")
	}
	if r.CapacityMin > r.CapacityMax {
		return InvalidInputError("capacity_min must not exceed capacity_max")
	}
	return nil
}

// UpdateRoomRequest is the JSON part of the multipart room update. Deleted
// images are referenced by URL, matching what the client received earlier.
type UpdateRoomRequest struct {
	RegisterRoomRequest
	DeletedImages []string `json:"deletedImages,omitempty"`
}

// RoomListItem is one row of the owner's room list
type RoomListItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	RoomType string `json:"room_type"`
	Price    string `json:"price"`
	Capacity string `json:"capacity"`
}

// RoomDetailResponse is the owner-facing room detail view
type RoomDetailResponse struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	RoomType     string         `json:"room_type"`
	Price        int            `json:"price"`
	RoomSize     *string        `json:"room_size,omitempty"`
	RoomCount    int            `json:"room_count"`
	CapacityMin  int            `json:"capacity_min"`
	CapacityMax  int            `json:"capacity_max"`
	CheckInTime  *string        `json:"check_in_time,omitempty"`
	CheckOutTime *string        `json:"check_out_time,omitempty"`
	Facilities   RoomFacilities `json:"facilities"`
	Images       []RoomImage    `json:"images"`
}
