package refunds

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/luisherrera/barberlane-backend/internal/barbers"
	"github.com/luisherrera/barberlane-backend/internal/bookings"
	"github.com/luisherrera/barberlane-backend/internal/notifications"
	"github.com/luisherrera/barberlane-backend/internal/payments"
	"github.com/luisherrera/barberlane-backend/pkg/db/models"
	"github.com/luisherrera/barberlane-backend/pkg/enums"
	"github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

// RefundParams describes one refund request from an authenticated barber.
type RefundParams struct {
	UserID          uuid.UUID
	BookingID       uuid.UUID
	PaymentIntentID string
	AmountCents     *int64
	Reason          string
}

// Result reports the refund outcome.
type Result struct {
	RefundID       string `json:"refundId"`
	RefundedCents  int64  `json:"refundedCents"`
	RemainingCents int64  `json:"remainingCents"`
	FullyRefunded  bool   `json:"fullyRefunded"`
}

// Service issues full or partial refunds on behalf of barbers.
type Service interface {
	Refund(ctx context.Context, params RefundParams) (*Result, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams holds the dependencies for the refund service.
type ServiceParams struct {
	Barbers  barbers.Repository
	Bookings bookings.Repository
	Payments payments.Repository
	Stripe   StripeRefundClient
	TxRunner txRunner
	Notifier notifications.Service
	Logger   *logger.Logger
}

type serviceImpl struct {
	barbers  barbers.Repository
	bookings bookings.Repository
	payments payments.Repository
	stripe   StripeRefundClient
	txRunner txRunner
	notifier notifications.Service
	logg     *logger.Logger
}

// NewService validates the dependencies and returns a refund service.
func NewService(params ServiceParams) (Service, error) {
	if params.Barbers == nil {
		return nil, fmt.Errorf("refunds: barbers repository is required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("refunds: bookings repository is required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("refunds: payments repository is required")
	}
	if params.Stripe == nil {
		return nil, fmt.Errorf("refunds: stripe client is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("refunds: tx runner is required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("refunds: notifier is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("refunds: logger is required")
	}
	return &serviceImpl{
		barbers:  params.Barbers,
		bookings: params.Bookings,
		payments: params.Payments,
		stripe:   params.Stripe,
		txRunner: params.TxRunner,
		notifier: params.Notifier,
		logg:     params.Logger,
	}, nil
}

// Refund validates ownership and refundable balance, issues the processor
// refund under a deterministic idempotency key, then records the refund. A
// retry of the same booking+amount reuses the processor-side refund instead
// of double-charging.
func (s *serviceImpl) Refund(ctx context.Context, params RefundParams) (*Result, error) {
	if params.UserID == uuid.Nil {
		return nil, errors.New(errors.CodeUnauthorized, "authenticated user required")
	}
	if params.BookingID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "booking id is required")
	}

	ctx = s.logg.WithUserID(ctx, params.UserID.String())
	ctx = s.logg.WithBookingID(ctx, params.BookingID.String())

	profile, err := s.barbers.FindByUserID(ctx, params.UserID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading barber profile")
	}
	if profile == nil {
		return nil, errors.New(errors.CodeValidation, "barber profile not found for user")
	}

	payment, err := s.payments.FindByBookingID(ctx, params.BookingID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading payment")
	}
	if payment == nil {
		return nil, errors.New(errors.CodeNotFound, "no payment found for booking")
	}
	if payment.BarberID != profile.ID {
		return nil, errors.New(errors.CodeForbidden, "booking belongs to another barber")
	}

	refundable := payment.GrossCents - payment.RefundedCents
	if refundable <= 0 {
		return nil, errors.New(errors.CodeConflict, "payment already fully refunded")
	}

	amount := refundable
	if params.AmountCents != nil {
		amount = *params.AmountCents
	}
	if amount <= 0 {
		return nil, errors.New(errors.CodeValidation, "refund amount must be positive")
	}
	if amount > refundable {
		amount = refundable
	}

	stripeParams := &stripe.RefundParams{
		Amount:               stripe.Int64(amount),
		RefundApplicationFee: stripe.Bool(true),
		ReverseTransfer:      stripe.Bool(true),
	}
	if payment.StripeChargeID != nil && *payment.StripeChargeID != "" {
		stripeParams.Charge = payment.StripeChargeID
	} else {
		// The stored intent ref is authoritative; a caller-supplied one only
		// fills in when the payment row predates intent tracking.
		intentID := payment.StripePaymentIntentID
		if intentID == "" {
			intentID = params.PaymentIntentID
		}
		if intentID == "" {
			return nil, errors.New(errors.CodeValidation, "payment has no processor reference to refund")
		}
		stripeParams.PaymentIntent = stripe.String(intentID)
	}
	if reason := stripeReason(params.Reason); reason != "" {
		stripeParams.Reason = stripe.String(reason)
	} else if params.Reason != "" {
		stripeParams.AddMetadata("reason", params.Reason)
	}
	// Same booking+amount maps to the same processor refund on retry.
	stripeParams.SetIdempotencyKey(fmt.Sprintf("refund:%s:%d", params.BookingID, amount))

	processed, err := s.stripe.CreateRefund(ctx, stripeParams)
	if err != nil {
		return nil, errors.FromStripe(err, "creating refund")
	}

	fullyRefunded := payment.RefundedCents+amount >= payment.GrossCents

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.payments.WithTx(tx).ApplyRefund(ctx, payment.ID, amount); err != nil {
			return fmt.Errorf("recording refund: %w", err)
		}
		if fullyRefunded {
			if _, err := s.bookings.WithTx(tx).AdvanceStatus(ctx, params.BookingID, enums.BookingStatusCancelled); err != nil {
				return fmt.Errorf("cancelling booking: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		// A concurrent refund can drain the payment between our read and the
		// guarded UPDATE. That loser is a duplicate, not a server fault.
		if stderrors.Is(err, payments.ErrRefundExceedsGross) {
			return nil, errors.New(errors.CodeConflict, "payment already fully refunded")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "recording refund")
	}

	s.notifyRefunded(ctx, payment, amount, fullyRefunded)

	return &Result{
		RefundID:       processed.ID,
		RefundedCents:  amount,
		RemainingCents: refundable - amount,
		FullyRefunded:  fullyRefunded,
	}, nil
}

// notifyRefunded is best effort. The refund already settled on both sides.
func (s *serviceImpl) notifyRefunded(ctx context.Context, payment *models.Payment, amount int64, full bool) {
	if payment.UserID == uuid.Nil {
		return
	}
	body := "Part of your payment was refunded."
	if full {
		body = "Your payment was refunded in full and the booking was cancelled."
	}
	err := s.notifier.Send(ctx, notifications.SendParams{
		RecipientID: payment.UserID,
		Type:        enums.NotificationTypePaymentRefunded,
		Title:       "Refund issued",
		Body:        body,
		Metadata: map[string]any{
			"bookingId":     payment.BookingID.String(),
			"refundedCents": amount,
		},
	})
	if err != nil {
		s.logg.Error(ctx, "refund notification failed", err)
	}
}

func stripeReason(reason string) string {
	switch reason {
	case string(stripe.RefundReasonDuplicate),
		string(stripe.RefundReasonFraudulent),
		string(stripe.RefundReasonRequestedByCustomer):
		return reason
	default:
		return ""
	}
}
