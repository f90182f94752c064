// internal/repository/postgres/member_census_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MemberCensusRepository answers the active-member headcount queries the
// invoice generator snapshots at generation time.
type MemberCensusRepository struct {
	db *pgxpool.Pool
}

func NewMemberCensusRepository(db *pgxpool.Pool) *MemberCensusRepository {
	return &MemberCensusRepository{db: db}
}

// ActiveMemberCount returns the number of currently active members for a tenant.
func (r *MemberCensusRepository) ActiveMemberCount(ctx context.Context, tenantID int64) (int, error) {
	query := `SELECT COUNT(*) FROM members WHERE tenant_id = $1 AND status = 'active'`

	var count int
	if err := r.db.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active members: %w", err)
	}

	return count, nil
}
