// internal/repository/postgres/invoice_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymbill-service/internal/domain/invoice"
	xerrors "gymbill-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const pgUniqueViolation = "23505"

const invoiceColumns = `
	id, reference, invoice_number, tenant_id, period_month, period_year,
	member_count, rate_per_member, total_amount,
	status, paid_amount, paid_at,
	COALESCE(payment_method, ''), COALESCE(payment_reference, ''), COALESCE(notes, ''),
	due_date, created_at, updated_at
`

type InvoiceRepository struct {
	db *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Insert creates a pending invoice. The (tenant_id, period_month, period_year)
// unique constraint is the idempotency guarantee: a concurrent run inserting
// the same key gets ErrAlreadyExists, never a duplicate row.
func (r *InvoiceRepository) Insert(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (
			reference, invoice_number, tenant_id, period_month, period_year,
			member_count, rate_per_member, total_amount,
			status, paid_amount, due_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		inv.Reference, inv.InvoiceNumber, inv.TenantID, inv.PeriodMonth, inv.PeriodYear,
		inv.MemberCount, inv.RatePerMember, inv.TotalAmount,
		inv.Status, inv.PaidAmount, inv.DueDate,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return xerrors.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	return nil
}

// FindByID retrieves an invoice by its internal id.
func (r *InvoiceRepository) FindByID(ctx context.Context, id int64) (*invoice.Invoice, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE id = $1`, invoiceColumns)

	inv, err := scanInvoice(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice: %w", err)
	}

	return inv, nil
}

// FindByPeriodKey retrieves the invoice for a tenant/period idempotency key.
func (r *InvoiceRepository) FindByPeriodKey(ctx context.Context, tenantID int64, month, year int) (*invoice.Invoice, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM invoices
		WHERE tenant_id = $1 AND period_month = $2 AND period_year = $3
	`, invoiceColumns)

	inv, err := scanInvoice(r.db.QueryRow(ctx, query, tenantID, month, year))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice by period: %w", err)
	}

	return inv, nil
}

// ListPendingDueBefore returns pending invoices strictly past their due date,
// the overdue sweep's input set.
func (r *InvoiceRepository) ListPendingDueBefore(ctx context.Context, referenceDate time.Time) ([]invoice.Invoice, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM invoices
		WHERE status = $1 AND due_date < $2
		ORDER BY due_date
	`, invoiceColumns)

	rows, err := r.db.Query(ctx, query, invoice.InvoiceStatusPending, referenceDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invoices: %w", err)
	}
	defer rows.Close()

	return scanInvoices(rows)
}

// ListByPeriod returns every invoice for a billing period, any status.
func (r *InvoiceRepository) ListByPeriod(ctx context.Context, month, year int) ([]invoice.Invoice, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM invoices
		WHERE period_month = $1 AND period_year = $2
		ORDER BY tenant_id
	`, invoiceColumns)

	rows, err := r.db.Query(ctx, query, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices by period: %w", err)
	}
	defer rows.Close()

	return scanInvoices(rows)
}

// List returns invoices matching the filters, with total count for pagination.
func (r *InvoiceRepository) List(ctx context.Context, filters *invoice.ListFilters) ([]invoice.Invoice, int64, error) {
	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	where := "WHERE 1=1"
	args := []interface{}{}
	if filters.Status != nil {
		args = append(args, *filters.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.TenantID != nil {
		args = append(args, *filters.TenantID)
		where += fmt.Sprintf(" AND tenant_id = $%d", len(args))
	}
	if filters.PeriodMonth != nil {
		args = append(args, *filters.PeriodMonth)
		where += fmt.Sprintf(" AND period_month = $%d", len(args))
	}
	if filters.PeriodYear != nil {
		args = append(args, *filters.PeriodYear)
		where += fmt.Sprintf(" AND period_year = $%d", len(args))
	}

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM invoices %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM invoices %s
		ORDER BY id DESC
		LIMIT $%d OFFSET $%d
	`, invoiceColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices, err := scanInvoices(rows)
	if err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

// TransitionStatus is a compare-and-swap on status. When a concurrent writer
// already moved the invoice, the precondition is stale: zero rows update and
// the caller gets ErrInvalidTransition instead of a corrupting overwrite.
func (r *InvoiceRepository) TransitionStatus(ctx context.Context, id int64, from []invoice.InvoiceStatus, to invoice.InvoiceStatus, notes string) error {
	query := `
		UPDATE invoices
		SET status = $1,
		    notes = CASE WHEN $2 <> '' THEN $2 ELSE notes END,
		    updated_at = $3
		WHERE id = $4 AND status = ANY($5)
	`

	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	result, err := r.db.Exec(ctx, query, to, notes, time.Now(), id, statuses)
	if err != nil {
		return fmt.Errorf("failed to transition invoice status: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check invoice existence: %w", err)
		}
		if !exists {
			return xerrors.ErrNotFound
		}
		return xerrors.ErrInvalidTransition
	}

	return nil
}

// MarkPaid settles an invoice in full. Guarded on status pending/overdue so a
// racing sweep or double payment observes a stale precondition and fails
// cleanly. This is the only statement that writes paid_amount and paid_at.
func (r *InvoiceRepository) MarkPaid(ctx context.Context, id int64, paidAmount decimal.Decimal, paidAt time.Time, method, reference, notes string) error {
	query := `
		UPDATE invoices
		SET status = $1,
		    paid_amount = $2,
		    paid_at = $3,
		    payment_method = $4,
		    payment_reference = $5,
		    notes = CASE WHEN $6 <> '' THEN $6 ELSE notes END,
		    updated_at = $7
		WHERE id = $8 AND status = ANY($9)
	`

	result, err := r.db.Exec(
		ctx, query,
		invoice.InvoiceStatusPaid, paidAmount, paidAt, method, reference, notes,
		time.Now(), id,
		[]string{string(invoice.InvoiceStatusPending), string(invoice.InvoiceStatusOverdue)},
	)
	if err != nil {
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check invoice existence: %w", err)
		}
		if !exists {
			return xerrors.ErrNotFound
		}
		return xerrors.ErrInvalidTransition
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	err := row.Scan(
		&inv.ID, &inv.Reference, &inv.InvoiceNumber, &inv.TenantID, &inv.PeriodMonth, &inv.PeriodYear,
		&inv.MemberCount, &inv.RatePerMember, &inv.TotalAmount,
		&inv.Status, &inv.PaidAmount, &inv.PaidAt,
		&inv.PaymentMethod, &inv.PaymentReference, &inv.Notes,
		&inv.DueDate, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func scanInvoices(rows pgx.Rows) ([]invoice.Invoice, error) {
	var invoices []invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read invoices: %w", err)
	}

	return invoices, nil
}
