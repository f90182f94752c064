// internal/service/invoice/invoice_service.go
package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymbill-service/internal/domain/analytics"
	"gymbill-service/internal/domain/invoice"
	xerrors "gymbill-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InvoiceService handles single-invoice administrative operations: payment
// reconciliation, cancellation and lookups. The cache client may be nil;
// it is only used to drop stale revenue snapshots after a status change.
type InvoiceService struct {
	invoiceRepo invoice.Repository
	cache       *redis.Client
	logger      *zap.Logger
	clock       func() time.Time
}

func NewInvoiceService(invoiceRepo invoice.Repository, cache *redis.Client, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		cache:       cache,
		logger:      logger,
		clock:       time.Now,
	}
}

// RecordPayment settles an invoice in full. The invoice must currently be
// pending or overdue; the guarded update in the repository ensures a racing
// sweep or a double submission cannot both succeed. Fails with
// ErrAlreadySettled on a paid invoice and ErrCancelled on a cancelled one.
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID int64, req *invoice.RecordPaymentRequest) (*invoice.Invoice, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := s.checkSettleable(inv.Status); err != nil {
		return nil, err
	}

	paidAt := s.clock().UTC()
	err = s.invoiceRepo.MarkPaid(ctx, invoiceID, inv.TotalAmount, paidAt, req.PaymentMethod, req.PaymentReference, req.Notes)
	if err != nil {
		if errors.Is(err, xerrors.ErrInvalidTransition) {
			// Status moved between the read and the guarded update; reload to
			// report the precise rejection.
			return nil, s.classifyStale(ctx, invoiceID)
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.logger.Info("payment recorded",
		zap.Int64("invoice_id", invoiceID),
		zap.String("payment_method", req.PaymentMethod),
		zap.String("amount", inv.TotalAmount.String()),
	)

	s.invalidateSnapshot(ctx, inv.PeriodMonth, inv.PeriodYear)

	return s.invoiceRepo.FindByID(ctx, invoiceID)
}

// CancelInvoice cancels a pending or overdue invoice. Cancelled is terminal;
// paid invoices cannot be cancelled.
func (s *InvoiceService) CancelInvoice(ctx context.Context, invoiceID int64, notes string) (*invoice.Invoice, error) {
	err := s.invoiceRepo.TransitionStatus(
		ctx, invoiceID,
		[]invoice.InvoiceStatus{invoice.InvoiceStatusPending, invoice.InvoiceStatusOverdue},
		invoice.InvoiceStatusCancelled,
		notes,
	)
	if err != nil {
		if errors.Is(err, xerrors.ErrInvalidTransition) {
			return nil, s.classifyStale(ctx, invoiceID)
		}
		return nil, err
	}

	s.logger.Info("invoice cancelled", zap.Int64("invoice_id", invoiceID))

	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx, inv.PeriodMonth, inv.PeriodYear)

	return inv, nil
}

// GetInvoice retrieves an invoice by id.
func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceID int64) (*invoice.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, invoiceID)
}

// ListInvoices returns invoices matching the filters.
func (s *InvoiceService) ListInvoices(ctx context.Context, filters *invoice.ListFilters) (*invoice.ListResponse, error) {
	invoices, total, err := s.invoiceRepo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return &invoice.ListResponse{
		Invoices: invoices,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// invalidateSnapshot drops the cached revenue snapshot for the period an
// invoice belongs to, so the next analytics read recomputes it. Best effort:
// a cache outage only delays freshness until the TTL expires.
func (s *InvoiceService) invalidateSnapshot(ctx context.Context, month, year int) {
	if s.cache == nil {
		return
	}
	key := analytics.SnapshotCacheKey(month, year)
	if err := s.cache.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("failed to invalidate revenue snapshot cache",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (s *InvoiceService) checkSettleable(status invoice.InvoiceStatus) error {
	switch status {
	case invoice.InvoiceStatusPaid:
		return xerrors.ErrAlreadySettled
	case invoice.InvoiceStatusCancelled:
		return xerrors.ErrCancelled
	}
	if !status.CanTransitionTo(invoice.InvoiceStatusPaid) {
		return xerrors.ErrInvalidTransition
	}
	return nil
}

// classifyStale maps a stale guarded update to the precise rejection.
func (s *InvoiceService) classifyStale(ctx context.Context, invoiceID int64) error {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if err := s.checkSettleable(inv.Status); err != nil {
		return err
	}
	return xerrors.ErrInvalidTransition
}
