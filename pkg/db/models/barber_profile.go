package models

import (
	"time"

	"github.com/google/uuid"
)

// BarberProfile is the merchant profile behind every barber account.
// StripeAccountID is set exactly once, the first time onboarding runs.
type BarberProfile struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	BusinessName    string    `gorm:"column:business_name;not null"`
	Email           string    `gorm:"column:email;not null"`
	Phone           *string   `gorm:"column:phone"`
	StripeAccountID *string   `gorm:"column:stripe_account_id;uniqueIndex"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
