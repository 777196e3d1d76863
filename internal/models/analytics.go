package models

import "time"

// Granularity is the time-bucket size for payment analytics
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity maps a query parameter to a bucket size. Unrecognized
// values fall back to daily buckets.
func ParseGranularity(s string) Granularity {
	switch Granularity(s) {
	case GranularityWeek:
		return GranularityWeek
	case GranularityMonth:
		return GranularityMonth
	default:
		return GranularityDay
	}
}

// AnalyticsBucket is one grouped sum: a human-readable label, the total
// amount and the number of payments in the group.
type AnalyticsBucket struct {
	Label  string `json:"label" db:"label"`
	Amount int64  `json:"amount" db:"amount"`
	Count  int64  `json:"count" db:"count"`
}

// PaymentAnalytics holds the three independent groupings computed over the
// same filtered payment set.
type PaymentAnalytics struct {
	ByPeriod []AnalyticsBucket `json:"byPeriod"`
	ByHotel  []AnalyticsBucket `json:"byHotel"`
	ByMethod []AnalyticsBucket `json:"byMethod"`
}

// AnalyticsFilter restricts the aggregated payment set. The instant range
// is half-open: [From, To). Zone names the time zone the range boundaries
// were built in; period bucket labels must be computed in the same zone or
// payments near midnight land in a neighboring bucket.
type AnalyticsFilter struct {
	From    time.Time
	To      time.Time
	Zone    string
	HotelID *int64
	Method  *string
}
