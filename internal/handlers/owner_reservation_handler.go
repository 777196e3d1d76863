package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stayops/hotel-ops-backend/internal/middleware"
	"github.com/stayops/hotel-ops-backend/internal/services"
)

type OwnerReservationHandler struct {
	reservationService *services.ReservationService
}

func NewOwnerReservationHandler(reservationService *services.ReservationService) *OwnerReservationHandler {
	return &OwnerReservationHandler{reservationService: reservationService}
}

// GetCalendar returns the owner's reservations as calendar events
// GET /api/owner/reservations
func (h *OwnerReservationHandler) GetCalendar(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	events, err := h.reservationService.GetCalendarForOwner(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// GetDetails returns a single reservation with guest, room and payment info
// GET /api/owner/reservations/:id
func (h *OwnerReservationHandler) GetDetails(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reservationID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	detail, err := h.reservationService.GetDetails(userCtx.UserID, reservationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// CheckIn marks the reservation checked in (only on its start date)
// PUT /api/owner/reservations/:id/check-in
func (h *OwnerReservationHandler) CheckIn(c *gin.Context) {
	h.transition(c, h.reservationService.CheckIn, "Checked in")
}

// CheckOut marks the reservation checked out (only on its end date)
// PUT /api/owner/reservations/:id/check-out
func (h *OwnerReservationHandler) CheckOut(c *gin.Context) {
	h.transition(c, h.reservationService.CheckOut, "Checked out")
}

// CancelCheck reverts the occupancy status back to reserved
// PUT /api/owner/reservations/:id/cancel-check
func (h *OwnerReservationHandler) CancelCheck(c *gin.Context) {
	h.transition(c, h.reservationService.CancelCheck, "Check-in/out reverted")
}

// Cancel cancels a reservation that has not started yet
// PUT /api/owner/reservations/:id/cancel
func (h *OwnerReservationHandler) Cancel(c *gin.Context) {
	h.transition(c, h.reservationService.Cancel, "Reservation cancelled")
}

func (h *OwnerReservationHandler) transition(c *gin.Context, op func(ownerID, reservationID int64) error, message string) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reservationID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if err := op(userCtx.UserID, reservationID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// parseIDParam parses a numeric path parameter and writes the 400 itself
func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
		return 0, err
	}
	return id, nil
}
