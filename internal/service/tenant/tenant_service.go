// internal/service/tenant/tenant_service.go
package tenant

import (
	"context"
	"fmt"

	"gymbill-service/internal/domain/tenant"
	xerrors "gymbill-service/internal/pkg/errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TenantService manages the tenant directory and pricing updates.
type TenantService struct {
	tenantRepo   tenant.Repository
	standardRate decimal.Decimal
	logger       *zap.Logger
}

func NewTenantService(tenantRepo tenant.Repository, standardRate decimal.Decimal, logger *zap.Logger) *TenantService {
	return &TenantService{
		tenantRepo:   tenantRepo,
		standardRate: standardRate,
		logger:       logger,
	}
}

// CreateTenant registers a gym with its billing profile. A standard-plan
// tenant without an explicit rate gets the platform rate.
func (s *TenantService) CreateTenant(ctx context.Context, req *tenant.CreateTenantRequest) (*tenant.Tenant, error) {
	profile, err := s.buildProfile(req.PricingPlanType, req.RatePerMember, req.BillingCycleStartDay)
	if err != nil {
		return nil, err
	}

	t := &tenant.Tenant{
		Name:    req.Name,
		Status:  tenant.TenantStatusActive,
		Billing: *profile,
	}

	if err := s.tenantRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.logger.Info("tenant created",
		zap.Int64("tenant_id", t.ID),
		zap.String("plan", t.Billing.PricingPlanType.String()),
	)

	return t, nil
}

// UpdateTenantPricing overwrites the billing profile. It never touches
// existing invoices (their snapshot fields are fixed at generation) and does
// not trigger regeneration: the new rate first applies to the next invoice
// the generator creates for this tenant.
func (s *TenantService) UpdateTenantPricing(ctx context.Context, tenantID int64, req *tenant.UpdatePricingRequest) (*tenant.Tenant, error) {
	profile, err := s.buildProfile(req.PricingPlanType, req.RatePerMember, req.BillingCycleStartDay)
	if err != nil {
		return nil, err
	}

	if err := s.tenantRepo.UpdatePricing(ctx, tenantID, *profile); err != nil {
		return nil, err
	}

	s.logger.Info("tenant pricing updated",
		zap.Int64("tenant_id", tenantID),
		zap.String("plan", profile.PricingPlanType.String()),
		zap.String("rate_per_member", profile.RatePerMember.String()),
	)

	return s.tenantRepo.FindByID(ctx, tenantID)
}

// GetTenant retrieves a tenant by id.
func (s *TenantService) GetTenant(ctx context.Context, tenantID int64) (*tenant.Tenant, error) {
	return s.tenantRepo.FindByID(ctx, tenantID)
}

// ListTenants returns tenants matching the filters.
func (s *TenantService) ListTenants(ctx context.Context, filters *tenant.ListFilters) (*tenant.ListResponse, error) {
	tenants, total, err := s.tenantRepo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return &tenant.ListResponse{
		Tenants:  tenants,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *TenantService) buildProfile(planType tenant.PricingPlanType, rate *decimal.Decimal, cycleStartDay int) (*tenant.BillingProfile, error) {
	profile := &tenant.BillingProfile{
		PricingPlanType:      planType,
		BillingCycleStartDay: cycleStartDay,
	}

	switch {
	case rate != nil:
		profile.RatePerMember = *rate
	case planType == tenant.PricingPlanStandard:
		profile.RatePerMember = s.standardRate
	default:
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "custom plan requires a rate per member")
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return profile, nil
}
