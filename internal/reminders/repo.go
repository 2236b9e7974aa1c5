package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luisherrera/barberlane-backend/pkg/db/models"
	"github.com/luisherrera/barberlane-backend/pkg/enums"
)

// Repository persists reminder delivery records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ExistsSince(ctx context.Context, bookingID uuid.UUID, reminderType enums.ReminderType, since time.Time) (bool, error)
	Create(ctx context.Context, record *models.ReminderRecord) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a reminders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ExistsSince(ctx context.Context, bookingID uuid.UUID, reminderType enums.ReminderType, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReminderRecord{}).
		Where("booking_id = ? AND reminder_type = ? AND sent_at >= ?", bookingID, reminderType, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) Create(ctx context.Context, record *models.ReminderRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("sent_at < ?", cutoff).
		Delete(&models.ReminderRecord{})
	return result.RowsAffected, result.Error
}
