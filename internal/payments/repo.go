package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/luisherrera/barberlane-backend/pkg/db/models"
	"github.com/luisherrera/barberlane-backend/pkg/enums"
)

// ErrRefundExceedsGross is returned by ApplyRefund when the increment would
// push refunded_cents past gross_cents, which happens when two refunds race.
var ErrRefundExceedsGross = errors.New("refund amount exceeds refundable balance")

// Repository exposes persistence helpers for payment records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Payment, error)
	UpsertFromCheckout(ctx context.Context, payment *models.Payment) error
	ApplyRefund(ctx context.Context, paymentID uuid.UUID, amountCents int64) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a payments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repositoryImpl) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("stripe_payment_intent_id = ?", paymentIntentID).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpsertFromCheckout inserts the payment or refreshes the event-derived
// columns of the row keyed by the payment intent id. Refund progress on an
// existing row is never touched so replayed events stay harmless.
func (r *repositoryImpl) UpsertFromCheckout(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stripe_payment_intent_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"gross_cents":           payment.GrossCents,
			"application_fee_cents": payment.ApplicationFeeCents,
			"stripe_charge_id":      payment.StripeChargeID,
			"raw_event":             payment.RawEvent,
			"updated_at":            time.Now().UTC(),
		}),
	}).Create(payment).Error
}

// ApplyRefund adds amountCents to the refund tally in a single guarded UPDATE
// and flips the status to refunded when the payment is fully drained. The
// WHERE clause re-checks the balance so concurrent refunds cannot overdraw.
func (r *repositoryImpl) ApplyRefund(ctx context.Context, paymentID uuid.UUID, amountCents int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND refunded_cents + ? <= gross_cents", paymentID, amountCents).
		Updates(map[string]any{
			"refunded_cents": gorm.Expr("refunded_cents + ?", amountCents),
			"status": gorm.Expr(
				"CASE WHEN refunded_cents + ? >= gross_cents THEN ? ELSE status END",
				amountCents, enums.PaymentStatusRefunded,
			),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRefundExceedsGross
	}
	return nil
}
