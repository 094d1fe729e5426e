// Package scheduler runs the retention sweep: terminal job records older
// than the configured window are deleted on a cron schedule. Job retention
// is deliberately outside the orchestrator, which never deletes.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RetentionStore is the slice of the job store the sweeper needs.
type RetentionStore interface {
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service schedules periodic retention sweeps.
type Service struct {
	store     RetentionStore
	retention time.Duration
	schedule  string
	cron      *cron.Cron
}

// NewService creates a sweeper deleting terminal jobs older than
// retentionDays, on the given cron schedule (with seconds field).
func NewService(store RetentionStore, retentionDays int, schedule string) *Service {
	return &Service{
		store:     store,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		schedule:  schedule,
		cron:      cron.New(cron.WithSeconds()),
	}
}

// Start begins the scheduled sweeps.
func (s *Service) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.Sweep(context.Background())
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Retention sweeper started (schedule %q, window %v)", s.schedule, s.retention)
	return nil
}

// Stop stops the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Retention sweeper stopped")
	}
}

// Sweep deletes terminal jobs that completed before the retention cutoff.
func (s *Service) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.retention)
	deleted, err := s.store.DeleteTerminalBefore(ctx, cutoff)
	if err != nil {
		logrus.Errorf("Retention sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		logrus.Infof("Retention sweep removed %d job records older than %s", deleted, cutoff.Format(time.RFC3339))
	}
}
