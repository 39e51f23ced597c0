package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"CrisisMonitor/internal/ports"
	"CrisisMonitor/pkg/logger"
)

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("scheduler already started")

// CronScheduler triggers jobs on a standard five-field cron expression.
// Overlapping triggers are skipped while a previous job is still running.
type CronScheduler struct {
	spec     string
	location *time.Location
	log      *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler configured via cron expression string.
func NewCronScheduler(spec string, location *time.Location, log *slog.Logger) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &CronScheduler{spec: spec, location: location, log: log}
}

// Start registers job and begins the cron loop. The job receives the trigger
// time in the configured location.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return ErrAlreadyStarted
	}

	cronLog := cron.PrintfLogger(logger.New(c.log, "cron"))
	runner := cron.New(
		cron.WithLocation(c.location),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	id, err := runner.AddFunc(c.spec, func() {
		if ctx.Err() != nil {
			return
		}
		job(time.Now().In(c.location))
	})
	if err != nil {
		return fmt.Errorf("parse cron expression %q: %w", c.spec, err)
	}

	runner.Start()
	c.cron = runner
	c.entryID = id
	c.log.Info("scheduler started", "cron", c.spec, "next", runner.Entry(id).Next)
	return nil
}

// Next reports the next planned trigger, or the zero time when stopped.
func (c *CronScheduler) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron == nil {
		return time.Time{}
	}
	return c.cron.Entry(c.entryID).Next
}

// Stop halts the cron loop and waits for a running job until ctx expires.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	runner := c.cron
	c.cron = nil
	c.mu.Unlock()

	if runner == nil {
		return nil
	}

	done := runner.Stop()
	select {
	case <-done.Done():
		c.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running job: %w", ctx.Err())
	}
}
