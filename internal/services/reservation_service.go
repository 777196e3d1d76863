package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stayops/hotel-ops-backend/internal/database"
	"github.com/stayops/hotel-ops-backend/internal/models"
)

// roomTypeColors maps room types to the calendar display color. Formatting
// only, never part of any decision.
var roomTypeColors = map[models.RoomType]string{
	models.RoomTypeSuite:    "#ef4444",
	models.RoomTypeDeluxe:   "#3b82f6",
	models.RoomTypeStandard: "#22c55e",
	models.RoomTypeSingle:   "#f97316",
	models.RoomTypeTwin:     "#a855f7",
}

const defaultRoomColor = "#848484"

// Placeholders for weakly referenced rows that no longer exist
const (
	unknownGuestName = "Unknown guest"
	deletedRoomName  = "Deleted room"
)

// ReservationService implements the owner-facing reservation operations:
// the calendar listing, the detail view and the occupancy/cancellation
// state machine.
//
// All date guards compare calendar days in the configured zone. Start and
// end instants are converted to local dates in exactly one place (dateOf)
// so a zone change cannot shift some comparisons and not others.
type ReservationService struct {
	ownership       *OwnershipService
	reservationRepo *database.ReservationRepository
	roomRepo        *database.RoomRepository
	userRepo        *database.UserRepository
	hotelRepo       *database.HotelRepository
	logger          *logrus.Logger
	loc             *time.Location
	now             func() time.Time
}

// NewReservationService creates a new ReservationService
func NewReservationService(
	ownership *OwnershipService,
	reservationRepo *database.ReservationRepository,
	roomRepo *database.RoomRepository,
	userRepo *database.UserRepository,
	hotelRepo *database.HotelRepository,
	logger *logrus.Logger,
	loc *time.Location,
) *ReservationService {
	return &ReservationService{
		ownership:       ownership,
		reservationRepo: reservationRepo,
		roomRepo:        roomRepo,
		userRepo:        userRepo,
		hotelRepo:       hotelRepo,
		logger:          logger,
		loc:             loc,
		now:             time.Now,
	}
}

// dateOf truncates an instant to its calendar day in the service zone
func (s *ReservationService) dateOf(t time.Time) time.Time {
	year, month, day := t.In(s.loc).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, s.loc)
}

// GetCalendarForOwner lists every reservation of the owner's hotel as
// calendar events. Guest and room rows are weak references; deleted rows
// render as placeholders instead of failing the whole listing.
func (s *ReservationService) GetCalendarForOwner(ownerID int64) ([]models.CalendarEvent, error) {
	hotel, err := s.ownership.FindOwnerHotel(ownerID)
	if err != nil {
		return nil, err
	}

	reservations, err := s.reservationRepo.ListByHotel(hotel.ID)
	if err != nil {
		return nil, err
	}

	events := make([]models.CalendarEvent, 0, len(reservations))
	for _, res := range reservations {
		guestName := unknownGuestName
		if user, err := s.userRepo.GetByID(res.UserID); err == nil {
			guestName = user.Name
		}

		roomName := deletedRoomName
		color := defaultRoomColor
		if room, err := s.roomRepo.GetByID(res.RoomID); err == nil {
			roomName = room.Name
			if c, ok := roomTypeColors[room.RoomType]; ok {
				color = c
			}
		}

		start := s.dateOf(res.StartDate)
		// calendar end is exclusive
		end := s.dateOf(res.EndDate).AddDate(0, 0, 1)

		events = append(events, models.CalendarEvent{
			ID:     res.ID,
			Title:  guestName,
			Start:  start.Format("2006-01-02"),
			End:    end.Format("2006-01-02"),
			Color:  color,
			Status: string(res.Status),
			ExtendedProps: models.CalendarEventProps{
				GuestName: guestName,
				RoomName:  roomName,
				ResStatus: string(res.OccupancyStatus()),
			},
		})
	}

	return events, nil
}

// GetDetails returns the full reservation view for its owner. Unlike the
// calendar listing, the detail view requires the guest and room rows to
// still exist.
func (s *ReservationService) GetDetails(ownerID, reservationID int64) (*models.ReservationDetailResponse, error) {
	reservation, err := s.ownership.AuthorizeReservation(ownerID, reservationID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(reservation.UserID)
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

	phone := ""
	if user.Phone != nil {
		phone = *user.Phone
	}

	return &models.ReservationDetailResponse{
		ID:                reservation.ID,
		HotelName:         hotel.Name,
		GuestName:         user.Name,
		GuestPhone:        phone,
		CheckInDate:       s.dateOf(reservation.StartDate).Format("2006-01-02"),
		CheckOutDate:      s.dateOf(reservation.EndDate).Format("2006-01-02"),
		RoomType:          string(room.RoomType),
		NumAdult:          reservation.NumAdult,
		NumKid:            reservation.NumKid,
		ReservationStatus: string(reservation.Status),
		ResStatus:         string(reservation.OccupancyStatus()),
	}, nil
}

// CheckIn marks a reservation checked in. Only allowed on the stay's
// start date.
func (s *ReservationService) CheckIn(ownerID, reservationID int64) error {
	reservation, err := s.ownership.AuthorizeReservation(ownerID, reservationID)
	if err != nil {
		return err
	}

	today := s.dateOf(s.now())
	if !s.dateOf(reservation.StartDate).Equal(today) {
		return models.InvalidStateError("not the check-in date")
	}

	return s.reservationRepo.UpdateResStatus(reservation.ID, models.ResStatusCheckedIn)
}

// CheckOut marks a reservation checked out. Only allowed on the stay's
// end date.
func (s *ReservationService) CheckOut(ownerID, reservationID int64) error {
	reservation, err := s.ownership.AuthorizeReservation(ownerID, reservationID)
	if err != nil {
		return err
	}

	today := s.dateOf(s.now())
	if !s.dateOf(reservation.EndDate).Equal(today) {
		return models.InvalidStateError("not the check-out date")
	}

	return s.reservationRepo.UpdateResStatus(reservation.ID, models.ResStatusCheckedOut)
}

// CancelCheck resets the occupancy status to RESERVED, undoing a check-in
// or check-out. No date guard beyond ownership.
func (s *ReservationService) CancelCheck(ownerID, reservationID int64) error {
	reservation, err := s.ownership.AuthorizeReservation(ownerID, reservationID)
	if err != nil {
		return err
	}

	return s.reservationRepo.UpdateResStatus(reservation.ID, models.ResStatusReserved)
}

// Cancel cancels the booking itself. Rejected once the stay has started.
// The occupancy status is left untouched: cancellation and occupancy are
// independent axes, and collapsing them here would hide rows that need an
// operator's eye.
func (s *ReservationService) Cancel(ownerID, reservationID int64) error {
	reservation, err := s.ownership.AuthorizeReservation(ownerID, reservationID)
	if err != nil {
		return err
	}

	today := s.dateOf(s.now())
	if s.dateOf(reservation.StartDate).Before(today) {
		return models.InvalidStateError("cannot cancel a reservation that has already started")
	}

	if err := s.reservationRepo.UpdateStatus(reservation.ID, models.ReservationStatusCancelled); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"reservation_id": reservation.ID,
		"owner_id":       ownerID,
	}).Info("reservation cancelled by owner")

	return nil
}
