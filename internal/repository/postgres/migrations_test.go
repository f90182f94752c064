package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationVersionsAreSequential(t *testing.T) {
	migrations := GetMigrations()
	require.NotEmpty(t, migrations)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.Description)
		assert.NotEmpty(t, strings.TrimSpace(m.SQL))
	}
}

// The billing invariants live in the schema, not only in service code: the
// period key backs idempotent generation and the settlement check forbids
// partial payments. Guard against either constraint being dropped in a
// future schema edit.
func TestInvoiceSchemaDeclaresBillingConstraints(t *testing.T) {
	var invoicesSQL string
	for _, m := range GetMigrations() {
		if strings.Contains(m.SQL, "CREATE TABLE IF NOT EXISTS invoices") {
			invoicesSQL = m.SQL
		}
	}
	require.NotEmpty(t, invoicesSQL, "invoices table migration missing")

	assert.Contains(t, invoicesSQL, "UNIQUE (tenant_id, period_month, period_year)")
	assert.Contains(t, invoicesSQL, "CHECK (paid_amount = 0 OR paid_amount = total_amount)")
}
