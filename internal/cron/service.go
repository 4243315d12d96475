package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/crm-backend/pkg/logger"
	"github.com/angelmondragon/crm-backend/pkg/metrics"
	"go.uber.org/multierr"
)

const defaultTick = 30 * time.Second

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Tick     time.Duration
	Now      func() time.Time
}

// Service evaluates every job's schedule on a fixed tick and runs the due ones.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	tick     time.Duration
	now      func() time.Time

	next map[string]time.Time
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	tick := params.Tick
	if tick <= 0 {
		tick = defaultTick
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		tick:     tick,
		now:      now,
		next:     map[string]time.Time{},
	}, nil
}

// Run schedules every job from the current time and ticks until ctx is
// canceled. Job failures are logged and never stop the loop.
func (s *Service) Run(ctx context.Context) error {
	s.plan(s.now())
	for _, e := range s.registry.Entries() {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"job":      e.Job.Name(),
			"schedule": e.Schedule.String(),
			"next_run": s.next[e.Job.Name()],
		})
		s.logg.Info(logCtx, "job scheduled")
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron service context canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := s.runDue(ctx, s.now()); err != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "scheduled jobs failed")
			}
		}
	}
}

// plan computes the first activation of every job that has none yet.
func (s *Service) plan(now time.Time) {
	for _, e := range s.registry.Entries() {
		if _, ok := s.next[e.Job.Name()]; !ok {
			s.next[e.Job.Name()] = e.Schedule.Next(now)
		}
	}
}

// runDue runs, one after another, every job whose activation time has passed
// and reschedules it from now. A job that missed several activations runs once.
func (s *Service) runDue(ctx context.Context, now time.Time) error {
	s.plan(now)
	var errs error
	for _, e := range s.registry.Entries() {
		name := e.Job.Name()
		if now.Before(s.next[name]) {
			continue
		}
		s.next[name] = e.Schedule.Next(now)
		errs = multierr.Append(errs, s.runJob(ctx, e.Job))
	}
	return errs
}

// RunOnce executes the named job immediately, under the same lock and metrics
// as a scheduled run.
func (s *Service) RunOnce(ctx context.Context, name string) error {
	job, ok := s.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.runJob(ctx, job)
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	name := job.Name()
	jobCtx := s.logg.WithJob(ctx, name)
	jobCtx = s.logg.WithField(jobCtx, "event", "cron.job")

	locked, err := s.lock.Acquire(jobCtx, name)
	if err != nil {
		s.logg.Error(jobCtx, "job lock acquire failed", err)
		s.metrics.IncFailure(name)
		return fmt.Errorf("%s: lock acquire: %w", name, err)
	}
	if !locked {
		s.logg.Info(jobCtx, "job already running elsewhere; skipping")
		s.metrics.IncSkipped(name)
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(jobCtx, name); relErr != nil {
			s.logg.Error(jobCtx, "failed to release job lock", relErr)
		}
	}()

	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	err = job.Run(jobCtx)
	duration := time.Since(start)
	s.metrics.ObserveDuration(name, duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.metrics.IncFailure(name)
		return fmt.Errorf("%s: %w", name, err)
	}
	s.logg.Info(jobCtx, "job completed")
	s.metrics.IncSuccess(name)
	return nil
}
