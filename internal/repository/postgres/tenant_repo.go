// internal/repository/postgres/tenant_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymbill-service/internal/domain/tenant"
	xerrors "gymbill-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TenantRepository struct {
	db *pgxpool.Pool
}

func NewTenantRepository(db *pgxpool.Pool) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create inserts a new tenant with its billing profile.
func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	query := `
		INSERT INTO tenants (name, status, pricing_plan_type, rate_per_member, billing_cycle_start_day)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		t.Name, t.Status,
		t.Billing.PricingPlanType, t.Billing.RatePerMember, t.Billing.BillingCycleStartDay,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	return nil
}

// FindByID retrieves a tenant and its billing profile.
func (r *TenantRepository) FindByID(ctx context.Context, id int64) (*tenant.Tenant, error) {
	query := `
		SELECT id, name, status, pricing_plan_type, rate_per_member, billing_cycle_start_day,
		       created_at, updated_at
		FROM tenants
		WHERE id = $1
	`

	var t tenant.Tenant
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Status,
		&t.Billing.PricingPlanType, &t.Billing.RatePerMember, &t.Billing.BillingCycleStartDay,
		&t.CreatedAt, &t.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tenant: %w", err)
	}

	return &t, nil
}

// ListActive returns all tenants flagged active, the generator's input set.
func (r *TenantRepository) ListActive(ctx context.Context) ([]tenant.Tenant, error) {
	query := `
		SELECT id, name, status, pricing_plan_type, rate_per_member, billing_cycle_start_day,
		       created_at, updated_at
		FROM tenants
		WHERE status = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, tenant.TenantStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tenants: %w", err)
	}
	defer rows.Close()

	return scanTenants(rows)
}

// List returns tenants matching the filters, with total count for pagination.
func (r *TenantRepository) List(ctx context.Context, filters *tenant.ListFilters) ([]tenant.Tenant, int64, error) {
	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	where := ""
	args := []interface{}{}
	if filters.Status != nil {
		where = "WHERE status = $1"
		args = append(args, *filters.Status)
	}

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM tenants %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tenants: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, status, pricing_plan_type, rate_per_member, billing_cycle_start_day,
		       created_at, updated_at
		FROM tenants %s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants, err := scanTenants(rows)
	if err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}

// UpdatePricing overwrites the billing profile. Existing invoices keep their
// generation-time snapshot; nothing here touches the invoices table.
func (r *TenantRepository) UpdatePricing(ctx context.Context, id int64, profile tenant.BillingProfile) error {
	query := `
		UPDATE tenants
		SET pricing_plan_type = $1, rate_per_member = $2, billing_cycle_start_day = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.Exec(
		ctx, query,
		profile.PricingPlanType, profile.RatePerMember, profile.BillingCycleStartDay,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update pricing: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

func scanTenants(rows pgx.Rows) ([]tenant.Tenant, error) {
	var tenants []tenant.Tenant
	for rows.Next() {
		var t tenant.Tenant
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Status,
			&t.Billing.PricingPlanType, &t.Billing.RatePerMember, &t.Billing.BillingCycleStartDay,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tenants: %w", err)
	}

	return tenants, nil
}
