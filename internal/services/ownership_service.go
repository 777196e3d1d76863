package services

import (
	"fmt"

	"github.com/stayops/hotel-ops-backend/internal/database"
	"github.com/stayops/hotel-ops-backend/internal/models"
)

// OwnershipService decides whether a caller may act on a reservation or a
// room by resolving the chain caller -> hotel -> room -> reservation. It
// never mutates state; every owner-facing operation runs through it before
// touching anything.
//
// Existence is checked before ownership, so an unauthorized caller can
// distinguish a missing id from a foreign one. Tightening that would
// change observable behavior, so it stays deliberate.
type OwnershipService struct {
	reservationRepo *database.ReservationRepository
	roomRepo        *database.RoomRepository
	hotelRepo       *database.HotelRepository
}

// NewOwnershipService creates a new OwnershipService
func NewOwnershipService(
	reservationRepo *database.ReservationRepository,
	roomRepo *database.RoomRepository,
	hotelRepo *database.HotelRepository,
) *OwnershipService {
	return &OwnershipService{
		reservationRepo: reservationRepo,
		roomRepo:        roomRepo,
		hotelRepo:       hotelRepo,
	}
}

// AuthorizeReservation returns the reservation when the caller owns the
// hotel it belongs to. The room hop uses the reservation's weak room
// reference; a deleted room surfaces as not found.
func (s *OwnershipService) AuthorizeReservation(callerID, reservationID int64) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(reservationID)
	if err != nil {
		return nil, err
	}

	room, err := s.roomRepo.GetByID(reservation.RoomID)
	if err != nil {
		return nil, err
	}

	hotel, err := s.hotelRepo.GetByID(room.HotelID)
	if err != nil {
		return nil, err
	}

	if hotel.OwnerID != callerID {
		return nil, models.AccessDeniedError(
			fmt.Sprintf("caller %d does not own hotel %d", callerID, hotel.ID))
	}

	return reservation, nil
}

// AuthorizeRoom returns the room when the caller owns its hotel
func (s *OwnershipService) AuthorizeRoom(callerID, roomID int64) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(roomID)
	if err != nil {
		return nil, err
	}

	hotel, err := s.hotelRepo.GetByID(room.HotelID)
	if err != nil {
		return nil, err
	}

	if hotel.OwnerID != callerID {
		return nil, models.AccessDeniedError(
			fmt.Sprintf("caller %d does not own hotel %d", callerID, hotel.ID))
	}

	return room, nil
}

// FindOwnerHotel resolves the single hotel held by an owner
func (s *OwnershipService) FindOwnerHotel(ownerID int64) (*models.Hotel, error) {
	return s.hotelRepo.GetByOwnerID(ownerID)
}
