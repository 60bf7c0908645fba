// services/scheduler.go
package services

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/gewnthar/visabulletin/logger"
)

// Syncer runs one synchronization.
type Syncer interface {
	RunSync(ctx context.Context) (SyncResult, error)
}

// Scheduler triggers syncs on a cron schedule. A run that is still in
// progress when the next tick fires causes that tick to be skipped.
type Scheduler struct {
	cron   *cron.Cron
	syncer Syncer
	log    logger.Logger
}

// NewScheduler registers syncer under schedule (standard five-field cron or
// descriptors such as "@daily"). Runs are never cancelled; the fetcher's
// request timeout bounds how long one can wait on the source.
func NewScheduler(schedule string, syncer Syncer, log logger.Logger) (*Scheduler, error) {
	cl := logger.CronLogger(log)
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		syncer: syncer,
		log:    log,
	}
	if _, err := s.cron.AddFunc(schedule, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) runOnce() {
	if _, err := s.syncer.RunSync(context.Background()); err != nil {
		s.log.Warn("Scheduled sync failed", logger.Error(err))
	}
}

// Start begins firing in the background. When runNow is set one sync runs
// immediately through the same skip-if-running chain.
func (s *Scheduler) Start(runNow bool) {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.log.Info("Sync scheduled", logger.Time("next_run", e.Next))
		if runNow {
			go e.WrappedJob.Run()
		}
	}
}

// Stop halts the schedule and waits for a running sync to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
