package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

// Result reports the outcome of one consume attempt.
type Result struct {
	Allowed    bool
	Used       int64
	Remaining  int64
	RetryAfter time.Duration
}

// Service enforces shared fixed-window rate limits.
type Service interface {
	Consume(ctx context.Context, action, identifier string, limit int64, window time.Duration) (*Result, error)
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// ServiceParams holds the dependencies for the rate limit service.
type ServiceParams struct {
	Store    Store
	FailOpen bool
	Logger   *logger.Logger
	Now      func() time.Time
}

type serviceImpl struct {
	store    Store
	failOpen bool
	logg     *logger.Logger
	now      func() time.Time
}

// NewService validates the dependencies and returns a rate limit service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("ratelimit: store is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("ratelimit: logger is required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &serviceImpl{
		store:    params.Store,
		failOpen: params.FailOpen,
		logg:     params.Logger,
		now:      params.Now,
	}, nil
}

// Consume counts one attempt against the (action, identifier) window and
// reports whether it is still within the limit. The attempt is counted even
// when the answer is no, so hammering a limited endpoint never resets it.
// Counter store failures fail open or closed per configuration.
func (s *serviceImpl) Consume(ctx context.Context, action, identifier string, limit int64, window time.Duration) (*Result, error) {
	if action == "" || identifier == "" {
		return nil, errors.New(errors.CodeValidation, "rate limit action and identifier are required")
	}
	if limit <= 0 || window <= 0 {
		return nil, errors.New(errors.CodeValidation, "rate limit and window must be positive")
	}

	now := s.now().UTC()
	windowStart := now.Truncate(window)

	count, err := s.store.IncrementAndGet(ctx, action, identifier, windowStart)
	if err != nil {
		fields := map[string]any{"action": action, "fail_open": s.failOpen}
		if s.failOpen {
			s.logg.Warn(s.logg.WithFields(ctx, fields), "rate limit store unavailable, allowing request")
			return &Result{Allowed: true, Used: 0, Remaining: limit}, nil
		}
		s.logg.Error(s.logg.WithFields(ctx, fields), "rate limit store unavailable, rejecting request", err)
		return nil, errors.Wrap(errors.CodeDependency, err, "rate limit store unavailable")
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:    count <= limit,
		Used:       count,
		Remaining:  remaining,
		RetryAfter: windowStart.Add(window).Sub(now),
	}, nil
}

// Prune deletes counters whose window ended before the retention horizon.
func (s *serviceImpl) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-retention)
	return s.store.DeleteOlderThan(ctx, cutoff)
}
