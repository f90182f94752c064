// internal/domain/tenant/dto.go
package tenant

import "github.com/shopspring/decimal"

type CreateTenantRequest struct {
	Name                 string           `json:"name" binding:"required"`
	PricingPlanType      PricingPlanType  `json:"pricing_plan_type" binding:"required"`
	RatePerMember        *decimal.Decimal `json:"rate_per_member"`
	BillingCycleStartDay int              `json:"billing_cycle_start_day" binding:"required"`
}

type UpdatePricingRequest struct {
	PricingPlanType      PricingPlanType  `json:"pricing_plan_type" binding:"required"`
	RatePerMember        *decimal.Decimal `json:"rate_per_member"`
	BillingCycleStartDay int              `json:"billing_cycle_start_day" binding:"required"`
}

type ListFilters struct {
	Status   *TenantStatus `form:"status"`
	Page     int           `form:"page"`
	PageSize int           `form:"page_size"`
}

type ListResponse struct {
	Tenants  []Tenant `json:"tenants"`
	Total    int64    `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}
