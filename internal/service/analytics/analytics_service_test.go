package analytics

import (
	"context"
	"testing"
	"time"

	domainanalytics "gymbill-service/internal/domain/analytics"
	"gymbill-service/internal/domain/invoice"
	"gymbill-service/internal/domain/tenant"
	"gymbill-service/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type AnalyticsServiceTestSuite struct {
	suite.Suite
	invoiceStore *testutil.InMemoryInvoiceStore
	tenantStore  *testutil.InMemoryTenantStore
	service      *AnalyticsService
	ctx          context.Context
}

func TestAnalyticsService(t *testing.T) {
	suite.Run(t, new(AnalyticsServiceTestSuite))
}

func (s *AnalyticsServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.invoiceStore = testutil.NewInMemoryInvoiceStore()
	s.tenantStore = testutil.NewInMemoryTenantStore()
	s.service = NewAnalyticsService(s.invoiceStore, s.tenantStore, nil, zap.NewNop())
}

func (s *AnalyticsServiceTestSuite) createTenant(planType tenant.PricingPlanType) *tenant.Tenant {
	t := &tenant.Tenant{
		Name:   "Iron Temple",
		Status: tenant.TenantStatusActive,
		Billing: tenant.BillingProfile{
			PricingPlanType:      planType,
			RatePerMember:        decimal.NewFromInt(75),
			BillingCycleStartDay: 1,
		},
	}
	s.Require().NoError(s.tenantStore.Create(s.ctx, t))
	return t
}

func (s *AnalyticsServiceTestSuite) seedInvoice(tenantID int64, month, year, members int, total int64, status invoice.InvoiceStatus) {
	inv := &invoice.Invoice{
		Reference:     invoice.NumberFor(tenantID, month, year) + "-ref",
		InvoiceNumber: invoice.NumberFor(tenantID, month, year),
		TenantID:      tenantID,
		PeriodMonth:   month,
		PeriodYear:    year,
		MemberCount:   members,
		RatePerMember: decimal.NewFromInt(75),
		TotalAmount:   decimal.NewFromInt(total),
		Status:        invoice.InvoiceStatusPending,
		PaidAmount:    decimal.Zero,
		DueDate:       time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.invoiceStore.Insert(s.ctx, inv))

	switch status {
	case invoice.InvoiceStatusPaid:
		s.Require().NoError(s.invoiceStore.MarkPaid(s.ctx, inv.ID, inv.TotalAmount, time.Now().UTC(), "cash", "", ""))
	case invoice.InvoiceStatusCancelled:
		s.Require().NoError(s.invoiceStore.TransitionStatus(s.ctx, inv.ID,
			[]invoice.InvoiceStatus{invoice.InvoiceStatusPending}, invoice.InvoiceStatusCancelled, ""))
	case invoice.InvoiceStatusOverdue:
		s.Require().NoError(s.invoiceStore.TransitionStatus(s.ctx, inv.ID,
			[]invoice.InvoiceStatus{invoice.InvoiceStatusPending}, invoice.InvoiceStatusOverdue, ""))
	}
}

func (s *AnalyticsServiceTestSuite) TestSnapshotTotalsAndPlanBreakdown() {
	standard := s.createTenant(tenant.PricingPlanStandard)
	custom := s.createTenant(tenant.PricingPlanCustom)

	s.seedInvoice(standard.ID, 3, 2024, 40, 3000, invoice.InvoiceStatusPaid)
	s.seedInvoice(custom.ID, 3, 2024, 25, 5000, invoice.InvoiceStatusPending)

	snapshot, err := s.service.ComputeRevenueSnapshot(s.ctx, 3, 2024)

	s.Require().NoError(err)
	s.Equal(2, snapshot.GymCount)
	s.Equal(2, snapshot.ActiveGymCount)
	s.Equal(65, snapshot.MemberCount)
	s.True(snapshot.TotalRevenue.Equal(decimal.NewFromInt(8000)))
	s.True(snapshot.StandardRevenue.Equal(decimal.NewFromInt(3000)))
	s.True(snapshot.CustomRevenue.Equal(decimal.NewFromInt(5000)))
	s.True(snapshot.PaidAmount.Equal(decimal.NewFromInt(3000)))
	s.True(snapshot.PendingAmount.Equal(decimal.NewFromInt(5000)))
}

func (s *AnalyticsServiceTestSuite) TestCancelledInvoicesExcluded() {
	t := s.createTenant(tenant.PricingPlanStandard)

	s.seedInvoice(t.ID, 3, 2024, 40, 3000, invoice.InvoiceStatusCancelled)

	snapshot, err := s.service.ComputeRevenueSnapshot(s.ctx, 3, 2024)

	s.Require().NoError(err)
	s.Equal(0, snapshot.GymCount)
	s.True(snapshot.TotalRevenue.IsZero())
	s.True(snapshot.PendingAmount.IsZero())
}

func (s *AnalyticsServiceTestSuite) TestTrendIsZeroWhenPriorPeriodEmpty() {
	t := s.createTenant(tenant.PricingPlanStandard)

	s.seedInvoice(t.ID, 3, 2024, 40, 5000, invoice.InvoiceStatusPending)

	snapshot, err := s.service.ComputeRevenueSnapshot(s.ctx, 3, 2024)

	s.Require().NoError(err)
	s.True(snapshot.TrendPercent.IsZero())
}

func (s *AnalyticsServiceTestSuite) TestTrendAgainstPriorPeriod() {
	t := s.createTenant(tenant.PricingPlanStandard)

	s.seedInvoice(t.ID, 2, 2024, 40, 4000, invoice.InvoiceStatusPaid)
	s.seedInvoice(t.ID, 3, 2024, 40, 5000, invoice.InvoiceStatusPending)

	snapshot, err := s.service.ComputeRevenueSnapshot(s.ctx, 3, 2024)

	s.Require().NoError(err)
	s.True(snapshot.TrendPercent.Equal(decimal.NewFromInt(25)))
}

func (s *AnalyticsServiceTestSuite) TestPlanBreakdownUsesTenantPlanAtAggregationTime() {
	t := s.createTenant(tenant.PricingPlanStandard)

	s.seedInvoice(t.ID, 3, 2024, 40, 3000, invoice.InvoiceStatusPending)

	// Tenant moves to a custom plan after the invoice was generated; the
	// breakdown follows the plan as recorded on the tenant now.
	s.Require().NoError(s.tenantStore.UpdatePricing(s.ctx, t.ID, tenant.BillingProfile{
		PricingPlanType:      tenant.PricingPlanCustom,
		RatePerMember:        decimal.NewFromInt(100),
		BillingCycleStartDay: 1,
	}))

	snapshot, err := s.service.ComputeRevenueSnapshot(s.ctx, 3, 2024)

	s.Require().NoError(err)
	s.True(snapshot.StandardRevenue.IsZero())
	s.True(snapshot.CustomRevenue.Equal(decimal.NewFromInt(3000)))
}

func (s *AnalyticsServiceTestSuite) TestTrailingSnapshots() {
	t := s.createTenant(tenant.PricingPlanStandard)

	s.seedInvoice(t.ID, 1, 2024, 40, 2000, invoice.InvoiceStatusPaid)
	s.seedInvoice(t.ID, 2, 2024, 40, 4000, invoice.InvoiceStatusPaid)
	s.seedInvoice(t.ID, 3, 2024, 40, 5000, invoice.InvoiceStatusPending)

	s.service.clock = func() time.Time {
		return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	}

	result, err := s.service.GetRevenueAnalytics(s.ctx, 2)

	s.Require().NoError(err)
	s.Equal(3, result.Current.Month)
	s.Require().Len(result.Trailing, 2)
	s.Equal(2, result.Trailing[0].Month)
	s.Equal(1, result.Trailing[1].Month)
	s.True(result.Trailing[0].TrendPercent.Equal(decimal.NewFromInt(100)))
}

func TestTrend(t *testing.T) {
	assert.True(t, domainanalytics.Trend(decimal.NewFromInt(5000), decimal.Zero).IsZero())
	assert.True(t, domainanalytics.Trend(decimal.NewFromInt(5000), decimal.NewFromInt(4000)).Equal(decimal.NewFromInt(25)))
	assert.True(t, domainanalytics.Trend(decimal.NewFromInt(3000), decimal.NewFromInt(4000)).Equal(decimal.NewFromInt(-25)))
	assert.True(t, domainanalytics.Trend(decimal.Zero, decimal.NewFromInt(4000)).Equal(decimal.NewFromInt(-100)))
}
