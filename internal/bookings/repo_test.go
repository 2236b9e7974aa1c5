package bookings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/luisherrera/barberlane-backend/pkg/db/models"
	"github.com/luisherrera/barberlane-backend/pkg/enums"
)

func setupBookingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
CREATE TABLE bookings (
  id TEXT PRIMARY KEY,
  barber_id TEXT NOT NULL,
  client_id TEXT NOT NULL,
  service_id TEXT NOT NULL,
  appointment_date TEXT NOT NULL,
  appointment_time TEXT NOT NULL,
  total_amount_cents INTEGER NOT NULL,
  deposit_cents INTEGER NOT NULL DEFAULT 0,
  platform_fee_cents INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  stripe_session_id TEXT UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)

	return db
}

func newBooking(status enums.BookingStatus) *models.Booking {
	return &models.Booking{
		ID:               uuid.New(),
		BarberID:         uuid.New(),
		ClientID:         uuid.New(),
		ServiceID:        uuid.New(),
		AppointmentDate:  "2026-09-01",
		AppointmentTime:  "10:00",
		TotalAmountCents: 5000,
		Status:           status,
	}
}

func TestUpsertFromCheckout_InsertsConfirmed(t *testing.T) {
	repo := NewRepository(setupBookingsTestDB(t))
	ctx := context.Background()

	booking := newBooking(enums.BookingStatusConfirmed)
	require.NoError(t, repo.UpsertFromCheckout(ctx, booking))

	stored, err := repo.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, enums.BookingStatusConfirmed, stored.Status)
	assert.Equal(t, int64(5000), stored.TotalAmountCents)
}

func TestUpsertFromCheckout_AdvancesPendingOnly(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pending := newBooking(enums.BookingStatusPending)
	require.NoError(t, db.Create(pending).Error)

	replay := *pending
	replay.Status = enums.BookingStatusConfirmed
	replay.TotalAmountCents = 6000
	require.NoError(t, repo.UpsertFromCheckout(ctx, &replay))

	stored, err := repo.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusConfirmed, stored.Status)
	assert.Equal(t, int64(6000), stored.TotalAmountCents)
}

func TestUpsertFromCheckout_NeverRegressesCancelled(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cancelled := newBooking(enums.BookingStatusCancelled)
	require.NoError(t, db.Create(cancelled).Error)

	replay := *cancelled
	replay.Status = enums.BookingStatusConfirmed
	require.NoError(t, repo.UpsertFromCheckout(ctx, &replay))

	stored, err := repo.FindByID(ctx, cancelled.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusCancelled, stored.Status)
}

func TestAdvanceStatus_Transitions(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	confirmed := newBooking(enums.BookingStatusConfirmed)
	require.NoError(t, db.Create(confirmed).Error)

	moved, err := repo.AdvanceStatus(ctx, confirmed.ID, enums.BookingStatusCancelled)
	require.NoError(t, err)
	assert.True(t, moved)

	// cancelled is terminal
	moved, err = repo.AdvanceStatus(ctx, confirmed.ID, enums.BookingStatusCompleted)
	require.NoError(t, err)
	assert.False(t, moved)

	stored, err := repo.FindByID(ctx, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusCancelled, stored.Status)
}

func TestFindByAppointmentDate_FiltersStatus(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	confirmed := newBooking(enums.BookingStatusConfirmed)
	cancelled := newBooking(enums.BookingStatusCancelled)
	otherDay := newBooking(enums.BookingStatusConfirmed)
	otherDay.AppointmentDate = "2026-09-02"
	require.NoError(t, db.Create(confirmed).Error)
	require.NoError(t, db.Create(cancelled).Error)
	require.NoError(t, db.Create(otherDay).Error)

	rows, err := repo.FindByAppointmentDate(ctx, "2026-09-01", []enums.BookingStatus{
		enums.BookingStatusConfirmed,
		enums.BookingStatusPending,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, confirmed.ID, rows[0].ID)
}
