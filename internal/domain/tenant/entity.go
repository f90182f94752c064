// internal/domain/tenant/entity.go
package tenant

import (
	"time"

	xerrors "gymbill-service/internal/pkg/errors"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
)

// PricingPlanType distinguishes the flat platform rate from a negotiated
// per-member rate.
type PricingPlanType string

const (
	PricingPlanStandard PricingPlanType = "standard"
	PricingPlanCustom   PricingPlanType = "custom"
)

func (p PricingPlanType) String() string {
	return string(p)
}

func (p PricingPlanType) Validate() error {
	allowed := []PricingPlanType{PricingPlanStandard, PricingPlanCustom}
	if !lo.Contains(allowed, p) {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "unknown pricing plan type")
	}
	return nil
}

// AllowedCycleStartDays are the only valid billing cycle start days.
var AllowedCycleStartDays = []int{1, 5, 10, 15}

// BillingProfile is the per-tenant pricing configuration. It is read by the
// invoice generator and mutated only through an explicit pricing update;
// already generated invoices keep their own snapshot of these values.
type BillingProfile struct {
	PricingPlanType      PricingPlanType `json:"pricing_plan_type" db:"pricing_plan_type"`
	RatePerMember        decimal.Decimal `json:"rate_per_member" db:"rate_per_member"`
	BillingCycleStartDay int             `json:"billing_cycle_start_day" db:"billing_cycle_start_day"`
}

func (p *BillingProfile) Validate() error {
	if err := p.PricingPlanType.Validate(); err != nil {
		return err
	}
	if !p.RatePerMember.IsPositive() {
		return xerrors.Wrap(xerrors.ErrConfiguration, "rate per member must be positive")
	}
	if !lo.Contains(AllowedCycleStartDays, p.BillingCycleStartDay) {
		return xerrors.Wrap(xerrors.ErrConfiguration, "billing cycle start day must be one of 1, 5, 10, 15")
	}
	return nil
}

// Tenant is a gym account billed independently.
type Tenant struct {
	ID        int64          `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	Status    TenantStatus   `json:"status" db:"status"`
	Billing   BillingProfile `json:"billing"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
