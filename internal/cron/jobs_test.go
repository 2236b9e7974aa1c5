package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/luisherrera/barberlane-backend/internal/ratelimit"
	"github.com/luisherrera/barberlane-backend/internal/reminders"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

type fakeReminderService struct {
	stats reminders.Stats
	err   error
	runs  int
}

func (f *fakeReminderService) RunDaily(ctx context.Context) (*reminders.Stats, error) {
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return &f.stats, nil
}

func TestReminderJobRunsDailyPass(t *testing.T) {
	service := &fakeReminderService{stats: reminders.Stats{Checked: 3, Sent: 2, Skipped: 1}}
	job, err := NewReminderJob(service, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewReminderJob: %v", err)
	}

	if job.Name() != "booking_reminders" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if service.runs != 1 {
		t.Fatalf("expected one pass, got %d", service.runs)
	}
}

func TestReminderJobPropagatesErrors(t *testing.T) {
	service := &fakeReminderService{err: errors.New("boom")}
	job, err := NewReminderJob(service, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewReminderJob: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakePruneService struct {
	retention time.Duration
	pruned    int64
	err       error
}

func (f *fakePruneService) Consume(ctx context.Context, action, identifier string, limit int64, window time.Duration) (*ratelimit.Result, error) {
	return &ratelimit.Result{Allowed: true}, nil
}

func (f *fakePruneService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	f.retention = retention
	if f.err != nil {
		return 0, f.err
	}
	return f.pruned, nil
}

func TestRateLimitPruneJobUsesConfiguredRetention(t *testing.T) {
	service := &fakePruneService{pruned: 7}
	job, err := NewRateLimitPruneJob(service, 48*time.Hour, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewRateLimitPruneJob: %v", err)
	}

	if job.Name() != "rate_limit_prune" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if service.retention != 48*time.Hour {
		t.Fatalf("expected 48h retention, got %s", service.retention)
	}
}

func TestRateLimitPruneJobRejectsZeroRetention(t *testing.T) {
	service := &fakePruneService{}
	if _, err := NewRateLimitPruneJob(service, 0, logger.New(logger.Options{ServiceName: "test"})); err == nil {
		t.Fatal("expected constructor error")
	}
}

func TestRateLimitPruneJobPropagatesErrors(t *testing.T) {
	service := &fakePruneService{err: errors.New("boom")}
	job, err := NewRateLimitPruneJob(service, time.Hour, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewRateLimitPruneJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
