package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luisherrera/barberlane-backend/pkg/enums"
)

// ConnectAccount tracks the processor sub-account minted for a barber.
// One row per barber; created together with the Stripe account.
type ConnectAccount struct {
	ID              uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey"`
	BarberID        uuid.UUID                  `gorm:"column:barber_id;type:uuid;not null;uniqueIndex"`
	StripeAccountID string                     `gorm:"column:stripe_account_id;not null;uniqueIndex"`
	ChargesEnabled  bool                       `gorm:"column:charges_enabled;not null;default:false"`
	PayoutsEnabled  bool                       `gorm:"column:payouts_enabled;not null;default:false"`
	Status          enums.ConnectAccountStatus `gorm:"column:status;not null;default:'pending'"`
	CreatedAt       time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
