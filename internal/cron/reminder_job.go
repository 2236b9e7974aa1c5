package cron

import (
	"context"
	"errors"
	"fmt"

	"github.com/luisherrera/barberlane-backend/internal/reminders"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

// ReminderJob sends upcoming-appointment reminders once per cycle.
type ReminderJob struct {
	service reminders.Service
	logg    *logger.Logger
}

// NewReminderJob builds the reminder job.
func NewReminderJob(service reminders.Service, logg *logger.Logger) (*ReminderJob, error) {
	if service == nil {
		return nil, errors.New("reminder service is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &ReminderJob{service: service, logg: logg}, nil
}

// Name implements Job.
func (j *ReminderJob) Name() string {
	return "booking_reminders"
}

// Run implements Job.
func (j *ReminderJob) Run(ctx context.Context) error {
	stats, err := j.service.RunDaily(ctx)
	if err != nil {
		return fmt.Errorf("reminder pass: %w", err)
	}
	ctx = j.logg.WithFields(ctx, map[string]any{
		"checked": stats.Checked,
		"sent":    stats.Sent,
		"skipped": stats.Skipped,
	})
	j.logg.Info(ctx, "reminder pass finished")
	return nil
}
