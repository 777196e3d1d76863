package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stayops/hotel-ops-backend/internal/cache"
	"github.com/stayops/hotel-ops-backend/internal/database"
	"github.com/stayops/hotel-ops-backend/internal/models"
	"github.com/stayops/hotel-ops-backend/internal/utils"
)

// PaymentService implements the admin-facing payment operations: the paged
// listing, refunds and analytics. The atomic payment/reservation
// transition itself lives in the repository; this layer adds the audit
// trail and the analytics cache.
type PaymentService struct {
	paymentRepo *database.PaymentRepository
	auditRepo   *database.RefundAuditRepository
	analytics   *cache.AnalyticsCache // nil disables caching
	logger      *logrus.Logger
	loc         *time.Location
	now         func() time.Time
}

// NewPaymentService creates a new PaymentService. analyticsCache may be
// nil when no Redis is configured.
func NewPaymentService(
	paymentRepo *database.PaymentRepository,
	auditRepo *database.RefundAuditRepository,
	analyticsCache *cache.AnalyticsCache,
	logger *logrus.Logger,
	loc *time.Location,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		analytics:   analyticsCache,
		logger:      logger,
		loc:         loc,
		now:         time.Now,
	}
}

// List returns a page of payment summaries
func (s *PaymentService) List(filter models.PaymentSearchFilter) (*models.PaymentPage, error) {
	return s.paymentRepo.Search(filter)
}

// Get returns a single payment
func (s *PaymentService) Get(id int64) (*models.Payment, error) {
	return s.paymentRepo.GetByID(id)
}

// RefundContext carries the request metadata recorded in the audit trail
type RefundContext struct {
	AdminID   int64
	IPAddress string
	UserAgent string
}

// Refund cancels a completed payment and its linked reservation, then
// records the attempt in the audit trail. The audit write happens after
// the transaction and never affects its outcome.
func (s *PaymentService) Refund(paymentID int64, rc RefundContext) error {
	s.logger.WithFields(logrus.Fields{
		"payment_id": paymentID,
		"admin_id":   rc.AdminID,
	}).Info("refund requested")

	payment, err := s.paymentRepo.Refund(paymentID, s.now())
	s.writeAudit(paymentID, rc, err)
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id":     payment.ID,
		"reservation_id": payment.ReservationID,
		"canceled_at":    payment.CanceledAt,
	}).Info("refund completed")

	return nil
}

// writeAudit records a refund attempt; failures are already logged by the
// repository and must not mask the refund outcome.
func (s *PaymentService) writeAudit(paymentID int64, rc RefundContext, refundErr error) {
	if s.auditRepo == nil {
		return
	}

	audit := &models.RefundAudit{
		PaymentID:  paymentID,
		AdminID:    rc.AdminID,
		Outcome:    models.RefundOutcomeSuccess,
		IPAddress:  rc.IPAddress,
		UserAgent:  rc.UserAgent,
		DeviceType: utils.ParseUserAgent(rc.UserAgent).DeviceType,
	}
	if refundErr != nil {
		audit.Outcome = models.RefundOutcomeFailed
		reason := refundErr.Error()
		audit.FailReason = &reason
	}

	_ = s.auditRepo.Insert(audit)
}

// Analytics computes the three grouped sums over payments in [from, to]
// (inclusive calendar days). Unrecognized granularities fall back to day.
func (s *PaymentService) Analytics(ctx context.Context, granularity string, hotelID *int64, method *string, from, to time.Time) (*models.PaymentAnalytics, error) {
	g := models.ParseGranularity(granularity)

	// inclusive day range -> half-open instant range
	fy, fm, fd := from.In(s.loc).Date()
	ty, tm, td := to.In(s.loc).Date()
	filter := models.AnalyticsFilter{
		From:    time.Date(fy, fm, fd, 0, 0, 0, 0, s.loc),
		To:      time.Date(ty, tm, td, 0, 0, 0, 0, s.loc).AddDate(0, 0, 1),
		Zone:    s.loc.String(),
		HotelID: hotelID,
		Method:  method,
	}

	key := analyticsCacheKey(g, filter)
	if s.analytics != nil {
		if cached, _ := s.analytics.Get(ctx, key); cached != nil {
			return cached, nil
		}
	}

	byPeriod, err := s.paymentRepo.AggregateByPeriod(g, filter)
	if err != nil {
		return nil, err
	}
	byHotel, err := s.paymentRepo.AggregateByHotel(filter)
	if err != nil {
		return nil, err
	}
	byMethod, err := s.paymentRepo.AggregateByMethod(filter)
	if err != nil {
		return nil, err
	}

	result := &models.PaymentAnalytics{
		ByPeriod: byPeriod,
		ByHotel:  byHotel,
		ByMethod: byMethod,
	}

	if s.analytics != nil {
		s.analytics.Set(ctx, key, result)
	}

	return result, nil
}

func analyticsCacheKey(g models.Granularity, f models.AnalyticsFilter) string {
	hotel := "all"
	if f.HotelID != nil {
		hotel = fmt.Sprintf("%d", *f.HotelID)
	}
	method := "all"
	if f.Method != nil {
		method = *f.Method
	}
	return fmt.Sprintf("analytics:%s:%s:%s:%s:%s",
		g, f.From.Format("2006-01-02"), f.To.Format("2006-01-02"), hotel, method)
}
