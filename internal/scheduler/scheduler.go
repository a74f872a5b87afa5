// Package scheduler triggers a pipeline job on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/robfig/cron/v3"

	"github.com/jmylchreest/wxscrape/internal/logger"
	"github.com/jmylchreest/wxscrape/internal/pipeline"
)

// DefaultSchedule runs once a day at midnight.
const DefaultSchedule = "0 0 * * *"

// ErrInvalidSchedule is returned for an unparseable cron expression.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Scheduler periodically runs a job. Runs never overlap.
type Scheduler struct {
	scheduler *gocron.Scheduler
	schedule  cron.Schedule
	expr      string
	loc       *time.Location
	job       pipeline.Job
	log       *slog.Logger
}

// New creates a Scheduler for job on the standard five-field cron expr,
// evaluated in loc (UTC when nil).
func New(expr string, loc *time.Location, job pipeline.Job) (*Scheduler, error) {
	if expr == "" {
		expr = DefaultSchedule
	}
	if loc == nil {
		loc = time.UTC
	}

	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSchedule, expr, err)
	}

	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()

	return &Scheduler{
		scheduler: s,
		schedule:  sched,
		expr:      expr,
		loc:       loc,
		job:       job,
		log:       logger.Component("scheduler"),
	}, nil
}

// Next returns the first trigger time after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.loc))
}

// Start registers the job and starts the scheduler in the background. Job
// runs get ctx; a failing run is logged and the schedule continues.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Cron(s.expr).Do(func() {
		s.runJob(ctx, "scheduled")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}

	s.scheduler.StartAsync()
	s.log.Info("scheduler started", "schedule", s.expr, "timezone", s.loc.String(), "next_run", s.Next(time.Now()).Format(time.RFC3339))
	return nil
}

// Run optionally runs the job once immediately, then runs it on schedule
// until ctx is done.
func (s *Scheduler) Run(ctx context.Context, runNow bool) error {
	if runNow {
		s.runJob(ctx, "immediate")
	}
	if err := ctx.Err(); err != nil {
		return nil
	}

	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.Stop()

	<-ctx.Done()
	s.log.Info("scheduler shutting down")
	return nil
}

// Stop stops the scheduler and cancels any future runs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runJob(ctx context.Context, trigger string) {
	start := time.Now()
	s.log.Info("running job", "trigger", trigger)

	if err := s.job.RunOnce(ctx); err != nil {
		s.log.Error("job failed", "trigger", trigger, "error", err, "duration", time.Since(start).Round(time.Millisecond))
		return
	}
	s.log.Info("job finished", "trigger", trigger, "duration", time.Since(start).Round(time.Millisecond), "next_run", s.Next(time.Now()).Format(time.RFC3339))
}
