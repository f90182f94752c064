// internal/domain/invoice/entity.go
package invoice

import (
	"fmt"
	"time"

	xerrors "gymbill-service/internal/pkg/errors"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of a tenant invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusPending,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
		InvoiceStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "unknown invoice status")
	}
	return nil
}

// transitions is the full legal transition table. paid and cancelled are terminal.
var transitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusPending: {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusOverdue: {InvoiceStatusPaid, InvoiceStatusCancelled},
}

// CanTransitionTo reports whether the state machine allows moving from s to target.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	return lo.Contains(transitions[s], target)
}

// IsTerminal reports whether no further transitions are allowed.
func (s InvoiceStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Invoice is a full-settlement tenant invoice. Member count, rate and total
// are snapshots fixed at generation time; pricing or census changes after
// generation never alter them.
type Invoice struct {
	ID            int64  `json:"id" db:"id"`
	Reference     string `json:"reference" db:"reference"`
	InvoiceNumber string `json:"invoice_number" db:"invoice_number"`
	TenantID      int64  `json:"tenant_id" db:"tenant_id"`

	// Idempotency key together with TenantID
	PeriodMonth int `json:"period_month" db:"period_month"`
	PeriodYear  int `json:"period_year" db:"period_year"`

	// Snapshot fields
	MemberCount   int             `json:"member_count" db:"member_count"`
	RatePerMember decimal.Decimal `json:"rate_per_member" db:"rate_per_member"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`

	Status           InvoiceStatus   `json:"status" db:"status"`
	PaidAmount       decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	PaidAt           *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	PaymentMethod    string          `json:"payment_method,omitempty" db:"payment_method"`
	PaymentReference string          `json:"payment_reference,omitempty" db:"payment_reference"`
	Notes            string          `json:"notes,omitempty" db:"notes"`

	DueDate   time.Time `json:"due_date" db:"due_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NumberFor derives the human-readable invoice number from the period and tenant.
func NumberFor(tenantID int64, month, year int) string {
	return fmt.Sprintf("INV-%04d%02d-%06d", year, month, tenantID)
}

func (i *Invoice) Validate() error {
	if i.MemberCount < 0 {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "member count must be non-negative")
	}
	if !i.RatePerMember.IsPositive() {
		return xerrors.Wrap(xerrors.ErrConfiguration, "rate per member must be positive")
	}
	if i.TotalAmount.IsNegative() {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "total amount must be non-negative")
	}
	// Full-settlement invoices only: paid amount is 0 or exactly the total.
	if !i.PaidAmount.IsZero() && !i.PaidAmount.Equal(i.TotalAmount) {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "paid amount must be zero or equal to total amount")
	}
	return i.Status.Validate()
}
