// internal/domain/tenant/repository.go
package tenant

import "context"

// Repository is the tenant directory consumed by the billing engine.
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	FindByID(ctx context.Context, id int64) (*Tenant, error)
	ListActive(ctx context.Context) ([]Tenant, error)
	List(ctx context.Context, filters *ListFilters) ([]Tenant, int64, error)

	// UpdatePricing overwrites the billing profile. It never touches
	// existing invoices; their snapshot fields stay as generated.
	UpdatePricing(ctx context.Context, id int64, profile BillingProfile) error
}

// MemberCensus reports the number of currently active members for a tenant.
// Supplied by the membership subsystem; the generator snapshots the count
// onto each invoice at generation time.
type MemberCensus interface {
	ActiveMemberCount(ctx context.Context, tenantID int64) (int, error)
}
