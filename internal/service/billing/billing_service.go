// internal/service/billing/billing_service.go
package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gymbill-service/internal/domain/invoice"
	"gymbill-service/internal/domain/tenant"
	xerrors "gymbill-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BillingService runs the periodic billing batches: monthly invoice
// generation and the daily overdue sweep. Both are idempotent and safe to
// re-invoke; per-unit persistence is an atomic conditional write, so no
// global lock is held and a cancelled batch resumes on the next run.
type BillingService struct {
	invoiceRepo invoice.Repository
	tenantRepo  tenant.Repository
	census      tenant.MemberCensus
	workers     int
	logger      *zap.Logger
	// clock is injectable so tests can pin "now"
	clock func() time.Time
}

func NewBillingService(
	invoiceRepo invoice.Repository,
	tenantRepo tenant.Repository,
	census tenant.MemberCensus,
	workers int,
	logger *zap.Logger,
) *BillingService {
	if workers < 1 {
		workers = 1
	}
	return &BillingService{
		invoiceRepo: invoiceRepo,
		tenantRepo:  tenantRepo,
		census:      census,
		workers:     workers,
		logger:      logger,
		clock:       time.Now,
	}
}

// GenerateMonthlyInvoices creates one pending invoice per active tenant for
// the reference date's billing period. Idempotent: tenants whose invoice for
// the period already exists are counted as skipped. One tenant's failure
// never aborts the batch.
func (s *BillingService) GenerateMonthlyInvoices(ctx context.Context, referenceDate time.Time) (*invoice.GenerationSummary, error) {
	tenants, err := s.tenantRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active tenants: %w", err)
	}

	summary := &invoice.GenerationSummary{Failed: []invoice.TenantFailure{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, t := range tenants {
		t := t
		g.Go(func() error {
			// Abort between units on cancellation; committed units stand.
			if err := gctx.Err(); err != nil {
				return err
			}

			created, err := s.generateForTenant(gctx, &t, referenceDate)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				s.logger.Warn("invoice generation failed for tenant",
					zap.Int64("tenant_id", t.ID),
					zap.Error(err),
				)
				summary.Failed = append(summary.Failed, invoice.TenantFailure{
					TenantID: t.ID,
					Reason:   err.Error(),
				})
			case created:
				summary.Created++
			default:
				summary.Skipped++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, fmt.Errorf("generation batch interrupted: %w", err)
	}

	s.logger.Info("invoice generation run complete",
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", len(summary.Failed)),
	)

	return summary, nil
}

// generateForTenant creates the tenant's invoice for the period. Returns
// (false, nil) when the invoice already exists. The repository's uniqueness
// constraint is the idempotency guarantee; the period-key lookup is only a
// skip-fast optimization for the common re-run case.
func (s *BillingService) generateForTenant(ctx context.Context, t *tenant.Tenant, referenceDate time.Time) (bool, error) {
	if err := t.Billing.Validate(); err != nil {
		return false, xerrors.Wrap(xerrors.ErrConfiguration, err.Error())
	}

	period := invoice.ComputePeriod(referenceDate, t.Billing.BillingCycleStartDay)

	if _, err := s.invoiceRepo.FindByPeriodKey(ctx, t.ID, period.Month, period.Year); err == nil {
		return false, nil
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		return false, err
	}

	memberCount, err := s.census.ActiveMemberCount(ctx, t.ID)
	if err != nil {
		return false, fmt.Errorf("member census failed: %w", err)
	}

	inv := &invoice.Invoice{
		Reference:     ulid.Make().String(),
		InvoiceNumber: invoice.NumberFor(t.ID, period.Month, period.Year),
		TenantID:      t.ID,
		PeriodMonth:   period.Month,
		PeriodYear:    period.Year,
		MemberCount:   memberCount,
		RatePerMember: t.Billing.RatePerMember,
		TotalAmount:   t.Billing.RatePerMember.Mul(decimal.NewFromInt(int64(memberCount))),
		Status:        invoice.InvoiceStatusPending,
		DueDate:       period.DueDate,
	}

	if err := inv.Validate(); err != nil {
		return false, err
	}

	if err := s.invoiceRepo.Insert(ctx, inv); err != nil {
		if errors.Is(err, xerrors.ErrAlreadyExists) {
			// Lost the race to a concurrent run; the other insert won.
			return false, nil
		}
		return false, err
	}

	s.logger.Info("invoice generated",
		zap.Int64("tenant_id", t.ID),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("total_amount", inv.TotalAmount.String()),
		zap.Time("due_date", inv.DueDate),
	)

	return true, nil
}

// SweepOverdueInvoices transitions pending invoices strictly past their due
// date to overdue. Idempotent: a re-run finds nothing left to transition. A
// racing payment wins over the sweep; its stale precondition is skipped.
func (s *BillingService) SweepOverdueInvoices(ctx context.Context, referenceDate time.Time) (*invoice.SweepSummary, error) {
	stale, err := s.invoiceRepo.ListPendingDueBefore(ctx, referenceDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue candidates: %w", err)
	}

	summary := &invoice.SweepSummary{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, inv := range stale {
		inv := inv
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			err := s.invoiceRepo.TransitionStatus(
				gctx, inv.ID,
				[]invoice.InvoiceStatus{invoice.InvoiceStatusPending},
				invoice.InvoiceStatusOverdue,
				"",
			)
			if err != nil {
				if errors.Is(err, xerrors.ErrInvalidTransition) || errors.Is(err, xerrors.ErrNotFound) {
					// Already paid, cancelled or swept by a concurrent run.
					return nil
				}
				s.logger.Warn("overdue transition failed",
					zap.Int64("invoice_id", inv.ID),
					zap.Error(err),
				)
				return nil
			}

			mu.Lock()
			summary.Transitioned++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, fmt.Errorf("sweep batch interrupted: %w", err)
	}

	s.logger.Info("overdue sweep complete",
		zap.Int("transitioned", summary.Transitioned),
		zap.Int("candidates", len(stale)),
	)

	return summary, nil
}

// GenerateNow runs generation for the current time, the scheduler entry point.
func (s *BillingService) GenerateNow(ctx context.Context) (*invoice.GenerationSummary, error) {
	return s.GenerateMonthlyInvoices(ctx, s.clock().UTC())
}

// SweepNow runs the overdue sweep for the current time.
func (s *BillingService) SweepNow(ctx context.Context) (*invoice.SweepSummary, error) {
	return s.SweepOverdueInvoices(ctx, s.clock().UTC())
}
