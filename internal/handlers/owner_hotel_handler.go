package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stayops/hotel-ops-backend/internal/middleware"
	"github.com/stayops/hotel-ops-backend/internal/models"
	"github.com/stayops/hotel-ops-backend/internal/services"
)

type OwnerHotelHandler struct {
	ownership *services.OwnershipService
}

func NewOwnerHotelHandler(ownership *services.OwnershipService) *OwnerHotelHandler {
	return &OwnerHotelHandler{ownership: ownership}
}

// GetHotel returns the hotel assigned to the authenticated owner
// GET /api/owner/hotel
func (h *OwnerHotelHandler) GetHotel(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	hotel, err := h.ownership.FindOwnerHotel(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.HotelProfileResponse{
		ID:             hotel.ID,
		Name:           hotel.Name,
		StarRating:     hotel.StarRating,
		ApprovalStatus: string(hotel.ApprovalStatus),
	}
	if hotel.Address != nil {
		resp.Address = *hotel.Address
	}

	c.JSON(http.StatusOK, resp)
}
