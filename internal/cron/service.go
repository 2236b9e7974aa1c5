package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/luisherrera/barberlane-backend/pkg/logger"
	"github.com/luisherrera/barberlane-backend/pkg/metrics"
)

const defaultInterval = 24 * time.Hour

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service runs every registered job once per interval. The distributed lock
// makes sure only one worker replica executes a given cycle; the rest skip.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

// NewService builds a cron service. A missing registry is treated as empty.
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
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run executes one cycle immediately, then ticks on the configured interval
// until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.cycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron service stopping")
			return ctx.Err()
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

func (s *Service) cycle(ctx context.Context) {
	held, err := s.lock.Acquire(ctx)
	if err != nil {
		s.logg.Error(ctx, "cron lock acquire failed", err)
		return
	}
	if !held {
		s.logg.Info(ctx, "cycle already claimed by another replica; skipping")
		return
	}
	defer func() {
		if err := s.lock.Release(ctx); err != nil {
			s.logg.Error(ctx, "cron lock release failed", err)
		}
	}()

	jobs := s.registry.Jobs()
	s.logg.Info(s.logg.WithField(ctx, "jobs", len(jobs)), "cycle starting")
	for _, job := range jobs {
		s.runJob(ctx, job)
	}
	s.logg.Info(ctx, "cycle complete")
}

func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())

	start := time.Now()
	err := job.Run(jobCtx)
	elapsed := time.Since(start)

	s.metrics.ObserveDuration(job.Name(), elapsed)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", elapsed.Milliseconds())

	if err != nil {
		s.metrics.IncFailure(job.Name())
		s.logg.Error(jobCtx, "job failed", err)
		return
	}
	s.metrics.IncSuccess(job.Name())
	s.logg.Info(jobCtx, "job completed")
}
