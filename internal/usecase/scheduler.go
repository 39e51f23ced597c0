package usecase

import (
	"context"
	"log/slog"
	"time"

	"CrisisMonitor/internal/domain"
	"CrisisMonitor/internal/ports"
)

// RunHook observes a finished run, e.g. to export its statistics.
type RunHook func(ctx context.Context, stats domain.RunStats)

// Scheduler wires the cron-like driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
	hooks    []RunHook
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// AfterRun registers a hook invoked after every completed run.
func (s *Scheduler) AfterRun(hook RunHook) *Scheduler {
	if hook != nil {
		s.hooks = append(s.hooks, hook)
	}
	return s
}

// RunNow executes a single run immediately.
func (s *Scheduler) RunNow(ctx context.Context, trigger time.Time) (domain.RunStats, error) {
	stats, err := s.pipeline.Run(ctx, trigger)
	if err != nil {
		return stats, err
	}
	for _, hook := range s.hooks {
		hook(ctx, stats)
	}
	return stats, nil
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if _, err := s.RunNow(ctx, trigger); err != nil {
			s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
