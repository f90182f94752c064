// internal/service/analytics/analytics_service.go
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gymbill-service/internal/domain/analytics"
	"gymbill-service/internal/domain/invoice"
	"gymbill-service/internal/domain/tenant"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const snapshotCacheTTL = 5 * time.Minute

// AnalyticsService derives revenue rollups from invoice history. Snapshots
// are recomputable projections, never a source of truth; the redis cache is
// best effort and a miss or outage falls through to a full recompute.
type AnalyticsService struct {
	invoiceRepo invoice.Repository
	tenantRepo  tenant.Repository
	cache       *redis.Client
	logger      *zap.Logger
	clock       func() time.Time
}

func NewAnalyticsService(
	invoiceRepo invoice.Repository,
	tenantRepo tenant.Repository,
	cache *redis.Client,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		invoiceRepo: invoiceRepo,
		tenantRepo:  tenantRepo,
		cache:       cache,
		logger:      logger,
		clock:       time.Now,
	}
}

// ComputeRevenueSnapshot recomputes the rollup for one billing period from
// the invoice history. Plan breakdown uses the tenant's plan type as recorded
// at aggregation time; the amounts themselves come from the invoice
// snapshots. Cancelled invoices are excluded from all sums.
func (s *AnalyticsService) ComputeRevenueSnapshot(ctx context.Context, month, year int) (*analytics.RevenueSnapshot, error) {
	if cached := s.cacheGet(ctx, month, year); cached != nil {
		return cached, nil
	}

	snapshot, err := s.computeSnapshot(ctx, month, year)
	if err != nil {
		return nil, err
	}

	prevMonth, prevYear := previousPeriod(month, year)
	prevTotal, err := s.periodRevenue(ctx, prevMonth, prevYear)
	if err != nil {
		return nil, err
	}
	snapshot.TrendPercent = analytics.Trend(snapshot.TotalRevenue, prevTotal)

	s.cacheSet(ctx, snapshot)

	return snapshot, nil
}

// GetRevenueAnalytics returns the current period's snapshot plus the trailing
// months, most recent first.
func (s *AnalyticsService) GetRevenueAnalytics(ctx context.Context, trailingMonths int) (*analytics.RevenueAnalyticsResponse, error) {
	if trailingMonths < 0 {
		trailingMonths = 0
	}
	if trailingMonths > 24 {
		trailingMonths = 24
	}

	now := s.clock().UTC()
	month, year := int(now.Month()), now.Year()

	current, err := s.ComputeRevenueSnapshot(ctx, month, year)
	if err != nil {
		return nil, err
	}

	trailing := make([]analytics.RevenueSnapshot, 0, trailingMonths)
	for i := 0; i < trailingMonths; i++ {
		month, year = previousPeriod(month, year)
		snap, err := s.ComputeRevenueSnapshot(ctx, month, year)
		if err != nil {
			return nil, err
		}
		trailing = append(trailing, *snap)
	}

	return &analytics.RevenueAnalyticsResponse{
		Current:  *current,
		Trailing: trailing,
	}, nil
}

func (s *AnalyticsService) computeSnapshot(ctx context.Context, month, year int) (*analytics.RevenueSnapshot, error) {
	invoices, err := s.invoiceRepo.ListByPeriod(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices for period: %w", err)
	}

	snapshot := &analytics.RevenueSnapshot{
		Month:           month,
		Year:            year,
		TotalRevenue:    decimal.Zero,
		StandardRevenue: decimal.Zero,
		CustomRevenue:   decimal.Zero,
		PaidAmount:      decimal.Zero,
		PendingAmount:   decimal.Zero,
		TrendPercent:    decimal.Zero,
	}

	planTypes := map[int64]tenant.PricingPlanType{}
	activeTenants := map[int64]bool{}

	for _, inv := range invoices {
		if inv.Status == invoice.InvoiceStatusCancelled {
			continue
		}

		if _, seen := planTypes[inv.TenantID]; !seen {
			t, err := s.tenantRepo.FindByID(ctx, inv.TenantID)
			if err != nil {
				return nil, fmt.Errorf("failed to load tenant %d: %w", inv.TenantID, err)
			}
			planTypes[inv.TenantID] = t.Billing.PricingPlanType
			activeTenants[inv.TenantID] = t.IsActive()
		}

		snapshot.MemberCount += inv.MemberCount
		snapshot.TotalRevenue = snapshot.TotalRevenue.Add(inv.TotalAmount)

		if planTypes[inv.TenantID] == tenant.PricingPlanCustom {
			snapshot.CustomRevenue = snapshot.CustomRevenue.Add(inv.TotalAmount)
		} else {
			snapshot.StandardRevenue = snapshot.StandardRevenue.Add(inv.TotalAmount)
		}

		snapshot.PaidAmount = snapshot.PaidAmount.Add(inv.PaidAmount)
		snapshot.PendingAmount = snapshot.PendingAmount.Add(inv.TotalAmount.Sub(inv.PaidAmount))
	}

	snapshot.GymCount = len(planTypes)
	for _, active := range activeTenants {
		if active {
			snapshot.ActiveGymCount++
		}
	}

	return snapshot, nil
}

func (s *AnalyticsService) periodRevenue(ctx context.Context, month, year int) (decimal.Decimal, error) {
	invoices, err := s.invoiceRepo.ListByPeriod(ctx, month, year)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load prior period invoices: %w", err)
	}

	total := decimal.Zero
	for _, inv := range invoices {
		if inv.Status == invoice.InvoiceStatusCancelled {
			continue
		}
		total = total.Add(inv.TotalAmount)
	}

	return total, nil
}

func (s *AnalyticsService) cacheGet(ctx context.Context, month, year int) *analytics.RevenueSnapshot {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, analytics.SnapshotCacheKey(month, year)).Bytes()
	if err != nil {
		return nil
	}

	var snapshot analytics.RevenueSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil
	}

	return &snapshot
}

func (s *AnalyticsService) cacheSet(ctx context.Context, snapshot *analytics.RevenueSnapshot) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, analytics.SnapshotCacheKey(snapshot.Month, snapshot.Year), raw, snapshotCacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache revenue snapshot", zap.Error(err))
	}
}

func previousPeriod(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}
