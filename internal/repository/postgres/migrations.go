// internal/repository/postgres/migrations.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migration represents a versioned schema change.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// GetMigrations returns the billing schema migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create tenants table",
			SQL: `
				CREATE TABLE IF NOT EXISTS tenants (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					status VARCHAR(16) NOT NULL DEFAULT 'active',
					pricing_plan_type VARCHAR(16) NOT NULL DEFAULT 'standard',
					rate_per_member NUMERIC(12,2) NOT NULL,
					billing_cycle_start_day INT NOT NULL DEFAULT 1,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT tenants_rate_positive CHECK (rate_per_member > 0),
					CONSTRAINT tenants_cycle_day CHECK (billing_cycle_start_day IN (1, 5, 10, 15))
				);

				CREATE INDEX IF NOT EXISTS idx_tenants_status ON tenants(status);
			`,
		},
		{
			Version:     2,
			Description: "Create members table (census source)",
			SQL: `
				CREATE TABLE IF NOT EXISTS members (
					id BIGSERIAL PRIMARY KEY,
					tenant_id BIGINT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
					full_name VARCHAR(255) NOT NULL,
					status VARCHAR(16) NOT NULL DEFAULT 'active',
					joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_members_tenant_status ON members(tenant_id, status);
			`,
		},
		{
			Version:     3,
			Description: "Create invoices table",
			SQL: `
				CREATE TABLE IF NOT EXISTS invoices (
					id BIGSERIAL PRIMARY KEY,
					reference VARCHAR(32) NOT NULL UNIQUE,
					invoice_number VARCHAR(32) NOT NULL UNIQUE,
					tenant_id BIGINT NOT NULL REFERENCES tenants(id),
					period_month INT NOT NULL,
					period_year INT NOT NULL,
					member_count INT NOT NULL,
					rate_per_member NUMERIC(12,2) NOT NULL,
					total_amount NUMERIC(14,2) NOT NULL,
					status VARCHAR(16) NOT NULL DEFAULT 'pending',
					paid_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
					paid_at TIMESTAMPTZ,
					payment_method VARCHAR(64),
					payment_reference VARCHAR(128),
					notes TEXT,
					due_date TIMESTAMPTZ NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT invoices_period_key UNIQUE (tenant_id, period_month, period_year),
					CONSTRAINT invoices_full_settlement CHECK (paid_amount = 0 OR paid_amount = total_amount)
				);

				CREATE INDEX IF NOT EXISTS idx_invoices_status_due ON invoices(status, due_date);
				CREATE INDEX IF NOT EXISTS idx_invoices_period ON invoices(period_year, period_month);
				CREATE INDEX IF NOT EXISTS idx_invoices_tenant ON invoices(tenant_id);
			`,
		},
	}
}

// RunMigrations applies pending migrations, tracking progress in
// schema_migrations.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, m := range GetMigrations() {
		var exists bool
		err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration %d: %w", m.Version, err)
		}
		if exists {
			continue
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`, m.Version, m.Description); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
