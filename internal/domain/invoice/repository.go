// internal/domain/invoice/repository.go
package invoice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository persists invoices. The invoice table is the engine's only shared
// mutable resource: correctness rests on the (tenant_id, period_month,
// period_year) uniqueness constraint for inserts and on status-guarded
// conditional updates for transitions, never on application-level locking.
type Repository interface {
	// Insert creates a pending invoice. Returns xerrors.ErrAlreadyExists when
	// an invoice for the same tenant and period is already present; the
	// storage-level uniqueness constraint is the guarantee, not a pre-check.
	Insert(ctx context.Context, inv *Invoice) error

	FindByID(ctx context.Context, id int64) (*Invoice, error)
	FindByPeriodKey(ctx context.Context, tenantID int64, month, year int) (*Invoice, error)

	// ListPendingDueBefore returns pending invoices whose due date is
	// strictly before the reference date.
	ListPendingDueBefore(ctx context.Context, referenceDate time.Time) ([]Invoice, error)

	// ListByPeriod returns every invoice for a billing period, any status.
	ListByPeriod(ctx context.Context, month, year int) ([]Invoice, error)

	List(ctx context.Context, filters *ListFilters) ([]Invoice, int64, error)

	// TransitionStatus performs a compare-and-swap on status: the update
	// applies only while the invoice still has one of the expected statuses.
	// Returns xerrors.ErrInvalidTransition when the precondition is stale and
	// xerrors.ErrNotFound when the invoice does not exist.
	TransitionStatus(ctx context.Context, id int64, from []InvoiceStatus, to InvoiceStatus, notes string) error

	// MarkPaid settles an invoice in full, guarded by status pending or
	// overdue. Same stale-precondition semantics as TransitionStatus. The
	// sole writer of paid_amount and paid_at.
	MarkPaid(ctx context.Context, id int64, paidAmount decimal.Decimal, paidAt time.Time, method, reference, notes string) error
}
