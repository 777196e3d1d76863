package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stayops/hotel-ops-backend/internal/database"
	"github.com/stayops/hotel-ops-backend/internal/models"
	"github.com/stayops/hotel-ops-backend/pkg/storage"
)

// UploadedImage is one image file received from a multipart request
type UploadedImage struct {
	Filename string
	Data     []byte
}

// RoomService implements the owner-facing room operations. Every mutating
// call re-validates the ownership chain before touching the room.
type RoomService struct {
	ownership *OwnershipService
	roomRepo  *database.RoomRepository
	files     storage.FileStorage
	logger    *logrus.Logger
}

// NewRoomService creates a new RoomService
func NewRoomService(
	ownership *OwnershipService,
	roomRepo *database.RoomRepository,
	files storage.FileStorage,
	logger *logrus.Logger,
) *RoomService {
	return &RoomService{
		ownership: ownership,
		roomRepo:  roomRepo,
		files:     files,
		logger:    logger,
	}
}

// storeImages uploads image files and returns their URLs in order
func (s *RoomService) storeImages(ctx context.Context, images []UploadedImage) ([]string, error) {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		url, err := s.files.Store(ctx, img.Filename, img.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to store image %s: %w", img.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// roomFromRequest maps the payload onto a room row
func roomFromRequest(req *models.RegisterRoomRequest) *models.Room {
	var size *string
	if req.Size != nil {
		s := fmt.Sprintf("%dm²", *req.Size)
		size = &s
	}

	return &models.Room{
		Name:         req.Name,
		RoomType:     models.RoomType(req.RoomType),
		Price:        req.Price,
		RoomSize:     size,
		RoomCount:    req.RoomCount,
		CapacityMin:  req.CapacityMin,
		CapacityMax:  req.CapacityMax,
		CheckInTime:  req.CheckInTime,
		CheckOutTime: req.CheckOutTime,
		Smoke:        req.Facilities.Smoke,
		Bath:         req.Facilities.Bath,
		Aircon:       req.Facilities.Aircon,
		Wifi:         req.Facilities.Wifi,
		FreeWater:    req.Facilities.FreeWater,
		HasWindow:    req.Facilities.HasWindow,
	}
}

// Register creates a room under the owner's hotel. The first uploaded
// image becomes the cover.
func (s *RoomService) Register(ctx context.Context, ownerID int64, req *models.RegisterRoomRequest, images []UploadedImage) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	hotel, err := s.ownership.FindOwnerHotel(ownerID)
	if err != nil {
		return 0, err
	}

	urls, err := s.storeImages(ctx, images)
	if err != nil {
		return 0, err
	}

	room := roomFromRequest(req)
	room.HotelID = hotel.ID

	roomID, err := s.roomRepo.Create(room, urls)
	if err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"room_id":  roomID,
		"hotel_id": hotel.ID,
		"owner_id": ownerID,
	}).Info("room registered")

	return roomID, nil
}

// List returns the owner's rooms as formatted list rows
func (s *RoomService) List(ownerID int64) ([]models.RoomListItem, error) {
	hotel, err := s.ownership.FindOwnerHotel(ownerID)
	if err != nil {
		return nil, err
	}

	rooms, err := s.roomRepo.ListByHotel(hotel.ID)
	if err != nil {
		return nil, err
	}

	items := make([]models.RoomListItem, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, models.RoomListItem{
			ID:       room.ID,
			Name:     room.Name,
			RoomType: string(room.RoomType),
			Price:    formatPrice(room.Price),
			Capacity: fmt.Sprintf("%d / %d", room.CapacityMin, room.CapacityMax),
		})
	}
	return items, nil
}

// GetDetails returns the room detail view with its images
func (s *RoomService) GetDetails(ownerID, roomID int64) (*models.RoomDetailResponse, error) {
	room, err := s.ownership.AuthorizeRoom(ownerID, roomID)
	if err != nil {
		return nil, err
	}

	images, err := s.roomRepo.GetImages(room.ID)
	if err != nil {
		return nil, err
	}

	return &models.RoomDetailResponse{
		ID:           room.ID,
		Name:         room.Name,
		RoomType:     string(room.RoomType),
		Price:        room.Price,
		RoomSize:     room.RoomSize,
		RoomCount:    room.RoomCount,
		CapacityMin:  room.CapacityMin,
		CapacityMax:  room.CapacityMax,
		CheckInTime:  room.CheckInTime,
		CheckOutTime: room.CheckOutTime,
		Facilities: models.RoomFacilities{
			Smoke:     room.Smoke,
			Bath:      room.Bath,
			Aircon:    room.Aircon,
			Wifi:      room.Wifi,
			FreeWater: room.FreeWater,
			HasWindow: room.HasWindow,
		},
		Images: images,
	}, nil
}

// Update rewrites a room's fields and reconciles its image set
func (s *RoomService) Update(ctx context.Context, ownerID, roomID int64, req *models.UpdateRoomRequest, newImages []UploadedImage) error {
	if err := req.Validate(); err != nil {
		return err
	}

	existing, err := s.ownership.AuthorizeRoom(ownerID, roomID)
	if err != nil {
		return err
	}

	urls, err := s.storeImages(ctx, newImages)
	if err != nil {
		return err
	}

	room := roomFromRequest(&req.RegisterRoomRequest)
	room.ID = existing.ID
	room.HotelID = existing.HotelID

	return s.roomRepo.Update(room, req.DeletedImages, urls)
}

// Delete removes a room and its images. Stored image files are left in
// place; reservations referencing the room survive as dangling ids, which
// the calendar renders as a deleted room.
func (s *RoomService) Delete(ownerID, roomID int64) error {
	room, err := s.ownership.AuthorizeRoom(ownerID, roomID)
	if err != nil {
		return err
	}

	if err := s.roomRepo.Delete(room.ID); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"room_id":  room.ID,
		"owner_id": ownerID,
	}).Info("room deleted")

	return nil
}

// formatPrice renders an amount with thousands separators for the list view
func formatPrice(amount int) string {
	s := fmt.Sprintf("%d", amount)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
