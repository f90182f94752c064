package tenant

import (
	"context"
	"testing"

	domain "gymbill-service/internal/domain/tenant"
	xerrors "gymbill-service/internal/pkg/errors"
	"gymbill-service/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type TenantServiceTestSuite struct {
	suite.Suite
	store   *testutil.InMemoryTenantStore
	service *TenantService
	ctx     context.Context
}

func TestTenantService(t *testing.T) {
	suite.Run(t, new(TenantServiceTestSuite))
}

func (s *TenantServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewInMemoryTenantStore()
	s.service = NewTenantService(s.store, decimal.NewFromInt(75), zap.NewNop())
}

func (s *TenantServiceTestSuite) TestCreateStandardTenantDefaultsToPlatformRate() {
	t, err := s.service.CreateTenant(s.ctx, &domain.CreateTenantRequest{
		Name:                 "Iron Temple",
		PricingPlanType:      domain.PricingPlanStandard,
		BillingCycleStartDay: 1,
	})

	s.Require().NoError(err)
	s.True(t.Billing.RatePerMember.Equal(decimal.NewFromInt(75)))
	s.Equal(domain.TenantStatusActive, t.Status)
}

func (s *TenantServiceTestSuite) TestCreateCustomTenantRequiresRate() {
	_, err := s.service.CreateTenant(s.ctx, &domain.CreateTenantRequest{
		Name:                 "Iron Temple",
		PricingPlanType:      domain.PricingPlanCustom,
		BillingCycleStartDay: 5,
	})

	s.ErrorIs(err, xerrors.ErrInvalidInput)
}

func (s *TenantServiceTestSuite) TestUpdatePricingValidation() {
	t, err := s.service.CreateTenant(s.ctx, &domain.CreateTenantRequest{
		Name:                 "Iron Temple",
		PricingPlanType:      domain.PricingPlanStandard,
		BillingCycleStartDay: 1,
	})
	s.Require().NoError(err)

	zero := decimal.Zero
	_, err = s.service.UpdateTenantPricing(s.ctx, t.ID, &domain.UpdatePricingRequest{
		PricingPlanType:      domain.PricingPlanCustom,
		RatePerMember:        &zero,
		BillingCycleStartDay: 1,
	})
	s.ErrorIs(err, xerrors.ErrConfiguration)

	rate := decimal.NewFromInt(100)
	_, err = s.service.UpdateTenantPricing(s.ctx, t.ID, &domain.UpdatePricingRequest{
		PricingPlanType:      domain.PricingPlanCustom,
		RatePerMember:        &rate,
		BillingCycleStartDay: 7,
	})
	s.ErrorIs(err, xerrors.ErrConfiguration)

	_, err = s.service.UpdateTenantPricing(s.ctx, t.ID, &domain.UpdatePricingRequest{
		PricingPlanType:      domain.PricingPlanType("premium"),
		RatePerMember:        &rate,
		BillingCycleStartDay: 1,
	})
	s.ErrorIs(err, xerrors.ErrInvalidInput)
}

func (s *TenantServiceTestSuite) TestUpdatePricingOverwritesProfile() {
	t, err := s.service.CreateTenant(s.ctx, &domain.CreateTenantRequest{
		Name:                 "Iron Temple",
		PricingPlanType:      domain.PricingPlanStandard,
		BillingCycleStartDay: 1,
	})
	s.Require().NoError(err)

	rate := decimal.NewFromInt(100)
	updated, err := s.service.UpdateTenantPricing(s.ctx, t.ID, &domain.UpdatePricingRequest{
		PricingPlanType:      domain.PricingPlanCustom,
		RatePerMember:        &rate,
		BillingCycleStartDay: 15,
	})

	s.Require().NoError(err)
	s.Equal(domain.PricingPlanCustom, updated.Billing.PricingPlanType)
	s.True(updated.Billing.RatePerMember.Equal(rate))
	s.Equal(15, updated.Billing.BillingCycleStartDay)
}

func (s *TenantServiceTestSuite) TestUpdatePricingUnknownTenant() {
	rate := decimal.NewFromInt(100)
	_, err := s.service.UpdateTenantPricing(s.ctx, 9999, &domain.UpdatePricingRequest{
		PricingPlanType:      domain.PricingPlanCustom,
		RatePerMember:        &rate,
		BillingCycleStartDay: 1,
	})

	s.ErrorIs(err, xerrors.ErrNotFound)
}
