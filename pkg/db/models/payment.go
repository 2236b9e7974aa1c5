package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/luisherrera/barberlane-backend/pkg/enums"
)

// Payment records a processor charge for a booking. The row is keyed by the
// processor's payment-intent id so redelivered checkout events upsert instead
// of duplicating. RefundedCents accumulates partial refunds and never exceeds
// GrossCents.
type Payment struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	BookingID             uuid.UUID           `gorm:"column:booking_id;type:uuid;not null;index"`
	BarberID              uuid.UUID           `gorm:"column:barber_id;type:uuid;not null;index"`
	UserID                uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	StripePaymentIntentID string              `gorm:"column:stripe_payment_intent_id;not null;uniqueIndex"`
	StripeChargeID        *string             `gorm:"column:stripe_charge_id"`
	GrossCents            int64               `gorm:"column:gross_cents;not null"`
	ApplicationFeeCents   int64               `gorm:"column:application_fee_cents;not null;default:0"`
	RefundedCents         int64               `gorm:"column:refunded_cents;not null;default:0"`
	Currency              string              `gorm:"column:currency;not null;default:'usd'"`
	Status                enums.PaymentStatus `gorm:"column:status;not null;default:'succeeded'"`
	RawEvent              json.RawMessage     `gorm:"column:raw_event;type:jsonb"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
