// internal/domain/analytics/snapshot.go
package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RevenueSnapshot is a recomputable monthly rollup derived from invoice
// history. It is a read-only projection, never a source of truth: it can be
// regenerated at any time and is never hand-edited.
type RevenueSnapshot struct {
	Month int `json:"month"`
	Year  int `json:"year"`

	GymCount       int `json:"gym_count"`
	ActiveGymCount int `json:"active_gym_count"`
	MemberCount    int `json:"member_count"`

	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	StandardRevenue decimal.Decimal `json:"standard_plan_revenue"`
	CustomRevenue   decimal.Decimal `json:"custom_plan_revenue"`

	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`

	// TrendPercent compares total revenue against the prior period,
	// (current-previous)/previous*100, 0 when the prior period had none.
	TrendPercent decimal.Decimal `json:"trend_percent"`
}

// Trend computes the period-over-period percentage change. Defined as 0 when
// previous is zero so a first billing month never divides by zero.
func Trend(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2)
}

// RevenueAnalyticsResponse carries the current snapshot plus trailing months,
// most recent first.
type RevenueAnalyticsResponse struct {
	Current  RevenueSnapshot   `json:"current"`
	Trailing []RevenueSnapshot `json:"trailing"`
}

// SnapshotCacheKey is the cache key for one period's revenue snapshot.
// Writers that change a period's invoice history delete this key so readers
// never serve figures older than the change.
func SnapshotCacheKey(month, year int) string {
	return fmt.Sprintf("revenue:snapshot:%04d-%02d", year, month)
}
