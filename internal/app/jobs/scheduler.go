// Package jobs runs the portal's periodic background work.
package jobs

import (
	"context"
	"time"

	"strata-portal/internal/domain/services"
	"strata-portal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// OverdueSchedule runs the overdue sweep every day at 01:00
const OverdueSchedule = "0 1 * * *"

// Scheduler owns the cron runner and the jobs registered on it
type Scheduler struct {
	cron     *cron.Cron
	payments services.InterfacePaymentService
	timeout  time.Duration
	now      func() time.Time
}

// NewScheduler creates a scheduler in loc; nil means UTC
func NewScheduler(payments services.InterfacePaymentService, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		payments: payments,
		timeout:  5 * time.Minute,
		now:      func() time.Time { return time.Now().In(loc) },
	}
}

// Start registers the jobs and starts the runner in its own goroutine
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(OverdueSchedule, s.RunOverdue); err != nil {
		return err
	}
	s.cron.Start()
	logger.Info("scheduler started: overdue levies at %q", OverdueSchedule)
	return nil
}

// Stop halts the runner and waits for a running job to return
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("scheduler stopped")
}

// NextRun reports when the next job fires, zero before Start
func (s *Scheduler) NextRun() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if next.IsZero() || e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}

// RunOverdue flags pending levies that are past due
func (s *Scheduler) RunOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	updated, err := s.payments.MarkOverdue(ctx, s.now())
	if err != nil {
		logger.Error("overdue sweep failed: %v", err)
		return
	}
	logger.Info("overdue sweep marked %d levies in %s", updated, time.Since(start))
}
