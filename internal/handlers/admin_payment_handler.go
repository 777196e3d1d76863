package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stayops/hotel-ops-backend/internal/middleware"
	"github.com/stayops/hotel-ops-backend/internal/models"
	"github.com/stayops/hotel-ops-backend/internal/services"
	"github.com/stayops/hotel-ops-backend/internal/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	dateLayout      = "2006-01-02"
)

type AdminPaymentHandler struct {
	paymentService *services.PaymentService
	loc            *time.Location
}

func NewAdminPaymentHandler(paymentService *services.PaymentService, loc *time.Location) *AdminPaymentHandler {
	return &AdminPaymentHandler{paymentService: paymentService, loc: loc}
}

// List returns a page of payment summaries with optional filters
// GET /api/admin/payments
func (h *AdminPaymentHandler) List(c *gin.Context) {
	filter := models.PaymentSearchFilter{
		Page:     1,
		PageSize: defaultPageSize,
	}

	if v := c.Query("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if v := c.Query("pageSize"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			if size > maxPageSize {
				size = maxPageSize
			}
			filter.PageSize = size
		}
	}
	if v := c.Query("status"); v != "" {
		status := models.PaymentStatus(v)
		filter.Status = &status
	}
	if v := c.Query("hotelName"); v != "" {
		filter.HotelName = &v
	}
	if v := c.Query("userName"); v != "" {
		filter.UserName = &v
	}

	from, to, ok := h.parseDateRange(c)
	if !ok {
		return
	}
	filter.From = from
	filter.To = to

	page, err := h.paymentService.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get returns a single payment
// GET /api/admin/payments/:id
func (h *AdminPaymentHandler) Get(c *gin.Context) {
	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	payment, err := h.paymentService.Get(paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// Refund cancels a completed payment and its reservation
// PUT /api/admin/payments/:id/refund
func (h *AdminPaymentHandler) Refund(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	rc := services.RefundContext{
		AdminID:   userCtx.UserID,
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}

	if err := h.paymentService.Refund(paymentID, rc); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment refunded"})
}

// Analytics returns payment sums grouped by period, hotel and method
// GET /api/admin/payments/analytics
func (h *AdminPaymentHandler) Analytics(c *gin.Context) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query parameters are required"})
		return
	}

	from, err := time.ParseInLocation(dateLayout, fromStr, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, expected YYYY-MM-DD"})
		return
	}
	to, err := time.ParseInLocation(dateLayout, toStr, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, expected YYYY-MM-DD"})
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not be before from"})
		return
	}

	var hotelID *int64
	if v := c.Query("hotelId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hotelId parameter"})
			return
		}
		hotelID = &id
	}

	var method *string
	if v := c.Query("paymentMethod"); v != "" {
		method = &v
	}

	analytics, err := h.paymentService.Analytics(c.Request.Context(), c.Query("granularity"), hotelID, method, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// parseDateRange reads optional from/to date filters for the payment list
func (h *AdminPaymentHandler) parseDateRange(c *gin.Context) (*time.Time, *time.Time, bool) {
	var from, to *time.Time

	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, expected YYYY-MM-DD"})
			return nil, nil, false
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, expected YYYY-MM-DD"})
			return nil, nil, false
		}
		// inclusive calendar day -> exclusive upper bound
		t = t.AddDate(0, 0, 1)
		to = &t
	}

	return from, to, true
}
