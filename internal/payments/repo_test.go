package payments

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

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
CREATE TABLE payments (
  id TEXT PRIMARY KEY,
  booking_id TEXT NOT NULL,
  barber_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  stripe_payment_intent_id TEXT NOT NULL UNIQUE,
  stripe_charge_id TEXT,
  gross_cents INTEGER NOT NULL,
  application_fee_cents INTEGER NOT NULL DEFAULT 0,
  refunded_cents INTEGER NOT NULL DEFAULT 0,
  currency TEXT NOT NULL DEFAULT 'usd',
  status TEXT NOT NULL DEFAULT 'succeeded',
  raw_event TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)

	return db
}

func newPayment(intentID string, gross int64) *models.Payment {
	return &models.Payment{
		ID:                    uuid.New(),
		BookingID:             uuid.New(),
		BarberID:              uuid.New(),
		UserID:                uuid.New(),
		StripePaymentIntentID: intentID,
		GrossCents:            gross,
		Currency:              "usd",
		Status:                enums.PaymentStatusSucceeded,
	}
}

func TestUpsertFromCheckout_KeyedByPaymentIntent(t *testing.T) {
	repo := NewRepository(setupPaymentsTestDB(t))
	ctx := context.Background()

	payment := newPayment("pi_123", 5000)
	require.NoError(t, repo.UpsertFromCheckout(ctx, payment))

	replay := newPayment("pi_123", 6000)
	replay.BookingID = payment.BookingID
	require.NoError(t, repo.UpsertFromCheckout(ctx, replay))

	stored, err := repo.FindByPaymentIntentID(ctx, "pi_123")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, payment.ID, stored.ID)
	assert.Equal(t, int64(6000), stored.GrossCents)
}

func TestUpsertFromCheckout_PreservesRefundProgress(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	payment := newPayment("pi_123", 5000)
	require.NoError(t, repo.UpsertFromCheckout(ctx, payment))
	require.NoError(t, repo.ApplyRefund(ctx, payment.ID, 2000))

	replay := newPayment("pi_123", 5000)
	require.NoError(t, repo.UpsertFromCheckout(ctx, replay))

	stored, err := repo.FindByPaymentIntentID(ctx, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), stored.RefundedCents)
}

func TestApplyRefund_AccumulatesAndFlipsStatus(t *testing.T) {
	repo := NewRepository(setupPaymentsTestDB(t))
	ctx := context.Background()

	payment := newPayment("pi_123", 5000)
	require.NoError(t, repo.UpsertFromCheckout(ctx, payment))

	require.NoError(t, repo.ApplyRefund(ctx, payment.ID, 2000))
	stored, err := repo.FindByBookingID(ctx, payment.BookingID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), stored.RefundedCents)
	assert.Equal(t, enums.PaymentStatusSucceeded, stored.Status)

	require.NoError(t, repo.ApplyRefund(ctx, payment.ID, 3000))
	stored, err = repo.FindByBookingID(ctx, payment.BookingID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), stored.RefundedCents)
	assert.Equal(t, enums.PaymentStatusRefunded, stored.Status)
}

func TestApplyRefund_RejectsOverdraw(t *testing.T) {
	repo := NewRepository(setupPaymentsTestDB(t))
	ctx := context.Background()

	payment := newPayment("pi_123", 5000)
	require.NoError(t, repo.UpsertFromCheckout(ctx, payment))
	require.NoError(t, repo.ApplyRefund(ctx, payment.ID, 4000))

	err := repo.ApplyRefund(ctx, payment.ID, 2000)
	assert.ErrorIs(t, err, ErrRefundExceedsGross)

	stored, err := repo.FindByBookingID(ctx, payment.BookingID)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), stored.RefundedCents)
}

func TestFindByBookingID_MissingReturnsNil(t *testing.T) {
	repo := NewRepository(setupPaymentsTestDB(t))

	stored, err := repo.FindByBookingID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, stored)
}
