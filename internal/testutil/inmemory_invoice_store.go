package testutil

import (
	"context"
	"sync"
	"time"

	"gymbill-service/internal/domain/invoice"
	xerrors "gymbill-service/internal/pkg/errors"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InMemoryInvoiceStore implements invoice.Repository with the same
// conditional-write semantics as the postgres repository: inserts enforce the
// tenant/period uniqueness and transitions are status-guarded swaps.
type InMemoryInvoiceStore struct {
	mu       sync.RWMutex
	nextID   int64
	invoices map[int64]*invoice.Invoice
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		nextID:   1,
		invoices: make(map[int64]*invoice.Invoice),
	}
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	cp := *inv
	if inv.PaidAt != nil {
		paidAt := *inv.PaidAt
		cp.PaidAt = &paidAt
	}
	return &cp
}

func (s *InMemoryInvoiceStore) Insert(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.invoices {
		if existing.TenantID == inv.TenantID &&
			existing.PeriodMonth == inv.PeriodMonth &&
			existing.PeriodYear == inv.PeriodYear {
			return xerrors.ErrAlreadyExists
		}
	}

	inv.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	s.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

func (s *InMemoryInvoiceStore) FindByID(_ context.Context, id int64) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) FindByPeriodKey(_ context.Context, tenantID int64, month, year int) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inv := range s.invoices {
		if inv.TenantID == tenantID && inv.PeriodMonth == month && inv.PeriodYear == year {
			return copyInvoice(inv), nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (s *InMemoryInvoiceStore) ListPendingDueBefore(_ context.Context, referenceDate time.Time) ([]invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []invoice.Invoice
	for _, inv := range s.invoices {
		if inv.Status == invoice.InvoiceStatusPending && inv.DueDate.Before(referenceDate) {
			result = append(result, *copyInvoice(inv))
		}
	}
	return result, nil
}

func (s *InMemoryInvoiceStore) ListByPeriod(_ context.Context, month, year int) ([]invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []invoice.Invoice
	for _, inv := range s.invoices {
		if inv.PeriodMonth == month && inv.PeriodYear == year {
			result = append(result, *copyInvoice(inv))
		}
	}
	return result, nil
}

func (s *InMemoryInvoiceStore) List(_ context.Context, filters *invoice.ListFilters) ([]invoice.Invoice, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []invoice.Invoice
	for _, inv := range s.invoices {
		if filters.Status != nil && inv.Status != *filters.Status {
			continue
		}
		if filters.TenantID != nil && inv.TenantID != *filters.TenantID {
			continue
		}
		if filters.PeriodMonth != nil && inv.PeriodMonth != *filters.PeriodMonth {
			continue
		}
		if filters.PeriodYear != nil && inv.PeriodYear != *filters.PeriodYear {
			continue
		}
		result = append(result, *copyInvoice(inv))
	}
	return result, int64(len(result)), nil
}

func (s *InMemoryInvoiceStore) TransitionStatus(_ context.Context, id int64, from []invoice.InvoiceStatus, to invoice.InvoiceStatus, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	if !lo.Contains(from, inv.Status) {
		return xerrors.ErrInvalidTransition
	}

	inv.Status = to
	if notes != "" {
		inv.Notes = notes
	}
	inv.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryInvoiceStore) MarkPaid(_ context.Context, id int64, paidAmount decimal.Decimal, paidAt time.Time, method, reference, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	if inv.Status != invoice.InvoiceStatusPending && inv.Status != invoice.InvoiceStatusOverdue {
		return xerrors.ErrInvalidTransition
	}

	inv.Status = invoice.InvoiceStatusPaid
	inv.PaidAmount = paidAmount
	inv.PaidAt = &paidAt
	inv.PaymentMethod = method
	inv.PaymentReference = reference
	if notes != "" {
		inv.Notes = notes
	}
	inv.UpdatedAt = time.Now().UTC()
	return nil
}
