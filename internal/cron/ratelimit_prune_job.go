package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luisherrera/barberlane-backend/internal/ratelimit"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

// RateLimitPruneJob deletes expired rate limit counter windows so the shared
// table stays small.
type RateLimitPruneJob struct {
	service   ratelimit.Service
	retention time.Duration
	logg      *logger.Logger
}

// NewRateLimitPruneJob builds the prune job.
func NewRateLimitPruneJob(service ratelimit.Service, retention time.Duration, logg *logger.Logger) (*RateLimitPruneJob, error) {
	if service == nil {
		return nil, errors.New("rate limit service is required")
	}
	if retention <= 0 {
		return nil, errors.New("retention must be positive")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &RateLimitPruneJob{service: service, retention: retention, logg: logg}, nil
}

// Name implements Job.
func (j *RateLimitPruneJob) Name() string {
	return "rate_limit_prune"
}

// Run implements Job.
func (j *RateLimitPruneJob) Run(ctx context.Context) error {
	pruned, err := j.service.Prune(ctx, j.retention)
	if err != nil {
		return fmt.Errorf("pruning rate limit counters: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "pruned", pruned), "rate limit counters pruned")
	return nil
}
