// internal/scheduler/scheduler.go
package scheduler

import (
	"context"

	billingService "gymbill-service/internal/service/billing"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler triggers the periodic billing batches. Each job is a short-lived
// unit of work; an overlapping manual trigger is harmless because both
// operations are idempotent.
type Scheduler struct {
	cron    *cron.Cron
	billing *billingService.BillingService
	logger  *zap.Logger
}

func New(billing *billingService.BillingService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		billing: billing,
		logger:  logger,
	}
}

// Register adds the monthly generation and daily sweep jobs.
func (s *Scheduler) Register(generateSpec, sweepSpec string) error {
	_, err := s.cron.AddFunc(generateSpec, func() {
		s.logger.Info("scheduled invoice generation starting")

		summary, err := s.billing.GenerateNow(context.Background())
		if err != nil {
			s.logger.Error("scheduled invoice generation failed", zap.Error(err))
			return
		}

		s.logger.Info("scheduled invoice generation finished",
			zap.Int("created", summary.Created),
			zap.Int("skipped", summary.Skipped),
			zap.Int("failed", len(summary.Failed)),
		)
	})
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc(sweepSpec, func() {
		s.logger.Info("scheduled overdue sweep starting")

		summary, err := s.billing.SweepNow(context.Background())
		if err != nil {
			s.logger.Error("scheduled overdue sweep failed", zap.Error(err))
			return
		}

		s.logger.Info("scheduled overdue sweep finished",
			zap.Int("transitioned", summary.Transitioned),
		)
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
