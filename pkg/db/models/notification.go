package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/luisherrera/barberlane-backend/pkg/enums"
)

// Notification is a stored in-app notification for a user.
type Notification struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	RecipientID uuid.UUID              `gorm:"column:recipient_id;type:uuid;not null;index"`
	Type        enums.NotificationType `gorm:"column:type;not null"`
	Title       string                 `gorm:"column:title;not null"`
	Body        string                 `gorm:"column:body;not null"`
	Metadata    json.RawMessage        `gorm:"column:metadata;type:jsonb"`
	ReadAt      *time.Time             `gorm:"column:read_at"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime;index"`
}
