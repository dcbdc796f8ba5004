package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/airsante/airwatch/internal/logging"
	"github.com/airsante/airwatch/internal/pipeline"
)

// Scheduler periodically runs the daily pipeline. Jobs are serialized: a run
// still in flight blocks the next trigger rather than overlapping it.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    *pipeline.Runner
	logger    *logging.Logger
	interval  time.Duration
}

// New creates a Scheduler around an existing Runner.
func New(runner *pipeline.Runner, interval time.Duration, logger *logging.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		runner:    runner,
		logger:    logger,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.interval)
		defer cancel()

		// The export for a day is complete the day after.
		date := time.Now().UTC().AddDate(0, 0, -1)
		if err := s.runner.RunDaily(ctx, date); err != nil {
			s.logger.Error("scheduled run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
