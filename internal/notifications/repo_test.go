package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/luisherrera/barberlane-backend/pkg/db/models"
	"github.com/luisherrera/barberlane-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
CREATE TABLE notifications (
  id TEXT PRIMARY KEY,
  recipient_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  body TEXT NOT NULL DEFAULT '',
  metadata TEXT,
  read_at DATETIME,
  created_at DATETIME
);`).Error)

	return db
}

func TestCreateAssignsID(t *testing.T) {
	repo := NewRepository(setupNotificationsTestDB(t))
	ctx := context.Background()

	notification := &models.Notification{
		RecipientID: uuid.New(),
		Type:        enums.NotificationTypeBookingConfirmed,
		Title:       "Booking confirmed",
	}
	require.NoError(t, repo.Create(ctx, notification))
	assert.NotEqual(t, uuid.Nil, notification.ID)
}

func TestListByRecipient_NewestFirstWithLimit(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	recipientID := uuid.New()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Notification{
			ID:          uuid.New(),
			RecipientID: recipientID,
			Type:        enums.NotificationTypeBookingReminder,
			Title:       "Reminder",
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}).Error)
	}
	// someone else's row must not leak in
	require.NoError(t, db.Create(&models.Notification{
		ID:          uuid.New(),
		RecipientID: uuid.New(),
		Type:        enums.NotificationTypeBookingReminder,
		Title:       "Other",
		CreatedAt:   base,
	}).Error)

	rows, err := repo.ListByRecipient(ctx, recipientID, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].CreatedAt.After(rows[1].CreatedAt))
	for _, row := range rows {
		assert.Equal(t, recipientID, row.RecipientID)
	}
}
