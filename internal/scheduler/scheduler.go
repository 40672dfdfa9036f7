// Package scheduler runs a job on a cron schedule without overlapping runs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"freestyle/internal/config"
	"freestyle/internal/logging"
)

// Job is one scheduled unit of work.
type Job interface {
	Name() string
	RunOnce(ctx context.Context) error
}

// JobFunc adapts a function to Job.
type JobFunc struct {
	Label string
	Fn    func(ctx context.Context) error
}

func (j JobFunc) Name() string                      { return j.Label }
func (j JobFunc) RunOnce(ctx context.Context) error { return j.Fn(ctx) }

// Parser is the schedule grammar shared with config validation.
var Parser = config.ScheduleParser

// Validate reports whether spec parses.
func Validate(spec string) error {
	if _, err := Parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Scheduler triggers a Job. A tick that arrives while the previous run is
// still active is skipped.
type Scheduler struct {
	spec   string
	job    Job
	logger *slog.Logger
	cron   *cron.Cron
}

// New builds a Scheduler for spec.
func New(spec string, job Job, logger *slog.Logger) (*Scheduler, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}
	logger = logging.NewComponentLogger(logger, "scheduler")
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	return &Scheduler{
		spec:   spec,
		job:    job,
		logger: logger,
		cron:   cron.New(cron.WithParser(Parser), cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
	}, nil
}

// Next returns the next activation after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	sched, err := Parser.Parse(s.spec)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(t)
}

// Start runs the schedule until ctx is canceled, then waits for an active
// run to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}

	s.logger.Info("scheduler started",
		logging.String("job", s.job.Name()),
		logging.String("schedule", s.spec),
		logging.String("next_run", s.Next(time.Now()).Format(time.RFC3339)),
	)
	s.cron.Start()

	<-ctx.Done()
	s.logger.Info("scheduler stopping", logging.String("job", s.job.Name()))
	<-s.cron.Stop().Done()
	return ctx.Err()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	started := time.Now()
	s.logger.Info("scheduled run starting", logging.String("job", s.job.Name()))
	if err := s.job.RunOnce(ctx); err != nil {
		logging.ErrorWithContext(s.logger, "scheduled run failed", "scheduled_run_failed",
			logging.String("job", s.job.Name()),
			logging.Error(err),
			logging.Duration("elapsed", time.Since(started)),
			logging.String(logging.FieldErrorHint, "the next tick will retry; run freestyle process to debug"),
		)
		return
	}
	s.logger.Info("scheduled run finished",
		logging.String("job", s.job.Name()),
		logging.Duration("elapsed", time.Since(started)),
	)
}
