package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/luisherrera/barberlane-backend/internal/bookings"
	"github.com/luisherrera/barberlane-backend/internal/notifications"
	"github.com/luisherrera/barberlane-backend/pkg/db/models"
	"github.com/luisherrera/barberlane-backend/pkg/enums"
	"github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

// Stats summarizes one reminder pass.
type Stats struct {
	Checked int `json:"checked"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
}

// Service runs the daily upcoming-appointment reminder pass.
type Service interface {
	RunDaily(ctx context.Context) (*Stats, error)
}

// ServiceParams holds the dependencies for the reminder service.
type ServiceParams struct {
	Bookings      bookings.Repository
	Records       Repository
	Notifier      notifications.Service
	Location      *time.Location
	RetentionDays int
	Logger        *logger.Logger
	Now           func() time.Time
}

type serviceImpl struct {
	bookings      bookings.Repository
	records       Repository
	notifier      notifications.Service
	location      *time.Location
	retentionDays int
	logg          *logger.Logger
	now           func() time.Time
}

// NewService validates the dependencies and returns a reminder service.
func NewService(params ServiceParams) (Service, error) {
	if params.Bookings == nil {
		return nil, fmt.Errorf("reminders: bookings repository is required")
	}
	if params.Records == nil {
		return nil, fmt.Errorf("reminders: records repository is required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("reminders: notifier is required")
	}
	if params.Location == nil {
		params.Location = time.UTC
	}
	if params.RetentionDays <= 0 {
		params.RetentionDays = 30
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("reminders: logger is required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &serviceImpl{
		bookings:      params.Bookings,
		records:       params.Records,
		notifier:      params.Notifier,
		location:      params.Location,
		retentionDays: params.RetentionDays,
		logg:          params.Logger,
		now:           params.Now,
	}, nil
}

// RunDaily reminds every client with an appointment tomorrow, in the platform
// timezone. A delivery record written after the notification suppresses
// duplicates for the rest of the day; a failed send leaves no record so the
// next run retries it. Old records are pruned after the main pass.
func (s *serviceImpl) RunDaily(ctx context.Context) (*Stats, error) {
	now := s.now().In(s.location)
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)

	ctx = s.logg.WithField(ctx, "appointment_date", tomorrow)

	rows, err := s.bookings.FindByAppointmentDate(ctx, tomorrow, []enums.BookingStatus{
		enums.BookingStatusConfirmed,
		enums.BookingStatusPending,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading tomorrow's bookings")
	}

	stats := &Stats{}
	for _, booking := range rows {
		stats.Checked++
		bctx := s.logg.WithBookingID(ctx, booking.ID.String())

		exists, err := s.records.ExistsSince(bctx, booking.ID, enums.ReminderTypeUpcomingAppointment, startOfToday)
		if err != nil {
			return stats, errors.Wrap(errors.CodeInternal, err, "checking reminder record")
		}
		if exists {
			stats.Skipped++
			continue
		}

		err = s.notifier.Send(bctx, notifications.SendParams{
			RecipientID: booking.ClientID,
			Type:        enums.NotificationTypeBookingReminder,
			Title:       "Appointment reminder",
			Body:        fmt.Sprintf("You have an appointment tomorrow at %s.", booking.AppointmentTime),
			Metadata: map[string]any{
				"bookingId":       booking.ID.String(),
				"appointmentDate": booking.AppointmentDate,
				"appointmentTime": booking.AppointmentTime,
			},
		})
		if err != nil {
			s.logg.Error(bctx, "reminder delivery failed, will retry next run", err)
			stats.Skipped++
			continue
		}

		record := &models.ReminderRecord{
			BookingID:    booking.ID,
			ReminderType: enums.ReminderTypeUpcomingAppointment,
			SentAt:       now,
		}
		if err := s.records.Create(bctx, record); err != nil {
			return stats, errors.Wrap(errors.CodeInternal, err, "recording reminder delivery")
		}
		stats.Sent++
	}

	cutoff := now.AddDate(0, 0, -s.retentionDays)
	pruned, err := s.records.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return stats, errors.Wrap(errors.CodeInternal, err, "pruning reminder records")
	}
	if pruned > 0 {
		s.logg.Info(s.logg.WithField(ctx, "pruned", pruned), "pruned old reminder records")
	}

	return stats, nil
}
