package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luisherrera/barberlane-backend/pkg/enums"
)

// Booking is an appointment between a client and a barber. Money columns are
// integer minor currency units; AppointmentDate is the canonical YYYY-MM-DD
// string the whole platform keys on.
type Booking struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	BarberID         uuid.UUID           `gorm:"column:barber_id;type:uuid;not null;index"`
	ClientID         uuid.UUID           `gorm:"column:client_id;type:uuid;not null;index"`
	ServiceID        uuid.UUID           `gorm:"column:service_id;type:uuid;not null"`
	AppointmentDate  string              `gorm:"column:appointment_date;type:date;not null;index"`
	AppointmentTime  string              `gorm:"column:appointment_time;not null"`
	TotalAmountCents int64               `gorm:"column:total_amount_cents;not null"`
	DepositCents     int64               `gorm:"column:deposit_cents;not null;default:0"`
	PlatformFeeCents int64               `gorm:"column:platform_fee_cents;not null;default:0"`
	Status           enums.BookingStatus `gorm:"column:status;not null;default:'pending'"`
	StripeSessionID  *string             `gorm:"column:stripe_session_id;uniqueIndex"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
