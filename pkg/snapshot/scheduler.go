package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// RefreshFunc fetches a fresh catalog for the configured default user and
// records it as a snapshot. The catalog handler supplies this; the
// scheduler only owns the timing.
type RefreshFunc func(ctx context.Context) error

// Scheduler refreshes the catalog snapshot in the background on a cron
// schedule, so the degraded-fallback copy stays reasonably fresh even
// when no client traffic arrives.
type Scheduler struct {
	schedule string
	refresh  RefreshFunc
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a snapshot refresh scheduler. An empty schedule
// disables it.
func NewScheduler(schedule string, refresh RefreshFunc) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		refresh:  refresh,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "snapshot.scheduler"),
	}
}

// Start begins scheduled refreshes. Common cron expressions:
//
//   - "0 */6 * * *" - every 6 hours
//   - "30 4 * * *"  - daily at 04:30
//
// If the schedule is empty, Start does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("refresh schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule snapshot refresh: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("snapshot scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runRefresh executes one refresh cycle.
func (s *Scheduler) runRefresh(ctx context.Context) {
	s.logger.Info("starting scheduled snapshot refresh")

	if err := s.refresh(ctx); err != nil {
		s.logger.Error("scheduled snapshot refresh failed", "error", err)
		return
	}

	s.logger.Info("scheduled snapshot refresh completed")
}

// Stop stops the scheduler and waits for any running refresh to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		s.running = false
		s.logger.Info("snapshot scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
