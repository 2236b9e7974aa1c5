package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luisherrera/barberlane-backend/pkg/enums"
)

// ReminderRecord marks that a reminder was delivered for a booking.
// Its existence since the start of a day suppresses duplicate sends;
// rows older than the retention window are pruned.
type ReminderRecord struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	BookingID    uuid.UUID          `gorm:"column:booking_id;type:uuid;not null;index:idx_reminder_booking_type"`
	ReminderType enums.ReminderType `gorm:"column:reminder_type;not null;index:idx_reminder_booking_type"`
	SentAt       time.Time          `gorm:"column:sent_at;not null;index"`
}
