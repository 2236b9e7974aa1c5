package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/luisherrera/barberlane-backend/internal/bookings"
	"github.com/luisherrera/barberlane-backend/internal/notifications"
	"github.com/luisherrera/barberlane-backend/internal/payments"
	"github.com/luisherrera/barberlane-backend/pkg/db/models"
	"github.com/luisherrera/barberlane-backend/pkg/enums"
	"github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

// Event is the completed-checkout payload the reconciler consumes. It is the
// relevant subset of the processor's checkout session, decoded from either a
// verified webhook or the internal replay endpoint.
type Event struct {
	ID            string            `json:"id"`
	SessionID     string            `json:"session_id"`
	PaymentIntent string            `json:"payment_intent"`
	ChargeID      string            `json:"charge_id"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

// Result reports the rows the event settled into.
type Result struct {
	BookingID       uuid.UUID `json:"bookingId"`
	PaymentIntentID string    `json:"paymentIntentId"`
}

// Service reconciles completed checkout events into bookings and payments.
type Service interface {
	Reconcile(ctx context.Context, event Event) (*Result, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams holds the dependencies for the checkout service.
type ServiceParams struct {
	Bookings       bookings.Repository
	Payments       payments.Repository
	TxRunner       txRunner
	Notifier       notifications.Service
	PlatformFeeBPS int
	Logger         *logger.Logger
}

type serviceImpl struct {
	bookings bookings.Repository
	payments payments.Repository
	txRunner txRunner
	notifier notifications.Service
	feeBPS   int
	logg     *logger.Logger
}

// NewService validates the dependencies and returns a checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Bookings == nil {
		return nil, fmt.Errorf("checkout: bookings repository is required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("checkout: payments repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("checkout: tx runner is required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("checkout: notifier is required")
	}
	if params.PlatformFeeBPS < 0 || params.PlatformFeeBPS > 10000 {
		return nil, fmt.Errorf("checkout: platform fee bps out of range")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("checkout: logger is required")
	}
	return &serviceImpl{
		bookings: params.Bookings,
		payments: params.Payments,
		txRunner: params.TxRunner,
		notifier: params.Notifier,
		feeBPS:   params.PlatformFeeBPS,
		logg:     params.Logger,
	}, nil
}

// Reconcile upserts the booking and payment rows for one completed checkout.
// Both writes share a transaction and key on stable identifiers (booking id,
// payment intent id), so redelivered events converge on the same rows.
func (s *serviceImpl) Reconcile(ctx context.Context, event Event) (*Result, error) {
	if event.ID == "" {
		return nil, errors.New(errors.CodeValidation, "event id is required")
	}
	if event.PaymentIntent == "" {
		return nil, errors.New(errors.CodeValidation, "payment intent id is required")
	}
	if event.AmountTotal <= 0 {
		return nil, errors.New(errors.CodeValidation, "amount total must be positive")
	}

	ctx = s.logg.WithField(ctx, "event_id", event.ID)

	bookingID, err := uuid.Parse(event.Metadata["bookingId"])
	if err != nil {
		// Derived from the intent id so redeliveries of a metadata-less
		// event still land on the same booking row.
		bookingID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("booking:"+event.PaymentIntent))
		s.logg.Warn(ctx, "checkout event missing booking id, deriving one from the payment intent")
	}
	ctx = s.logg.WithBookingID(ctx, bookingID.String())

	barberID := parseUUIDMeta(event.Metadata, "barberId")
	clientID := parseUUIDMeta(event.Metadata, "clientId")
	serviceID := parseUUIDMeta(event.Metadata, "serviceId")
	deposit := parseIntMeta(event.Metadata, "depositCents")

	fee := platformFee(event.AmountTotal, s.feeBPS)

	raw, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "marshalling checkout event")
	}

	currency := event.Currency
	if currency == "" {
		currency = "usd"
	}

	appointmentDate := event.Metadata["appointmentDate"]
	if _, err := time.Parse("2006-01-02", appointmentDate); err != nil {
		appointmentDate = time.Now().UTC().Format("2006-01-02")
		s.logg.Warn(ctx, "checkout event missing appointment date, defaulting to today")
	}

	booking := &models.Booking{
		ID:               bookingID,
		BarberID:         barberID,
		ClientID:         clientID,
		ServiceID:        serviceID,
		AppointmentDate:  appointmentDate,
		AppointmentTime:  event.Metadata["appointmentTime"],
		TotalAmountCents: event.AmountTotal,
		DepositCents:     deposit,
		PlatformFeeCents: fee,
		Status:           enums.BookingStatusConfirmed,
	}
	if event.SessionID != "" {
		booking.StripeSessionID = &event.SessionID
	}

	payment := &models.Payment{
		BookingID:             bookingID,
		BarberID:              barberID,
		UserID:                clientID,
		StripePaymentIntentID: event.PaymentIntent,
		GrossCents:            event.AmountTotal,
		ApplicationFeeCents:   fee,
		Currency:              currency,
		Status:                enums.PaymentStatusSucceeded,
		RawEvent:              raw,
	}
	if event.ChargeID != "" {
		payment.StripeChargeID = &event.ChargeID
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.bookings.WithTx(tx).UpsertFromCheckout(ctx, booking); err != nil {
			return fmt.Errorf("upserting booking: %w", err)
		}
		if err := s.payments.WithTx(tx).UpsertFromCheckout(ctx, payment); err != nil {
			return fmt.Errorf("upserting payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "reconciling checkout event")
	}

	s.notifyConfirmed(ctx, booking)

	return &Result{BookingID: bookingID, PaymentIntentID: event.PaymentIntent}, nil
}

// notifyConfirmed is best effort. A notification failure never unwinds an
// already-committed reconciliation.
func (s *serviceImpl) notifyConfirmed(ctx context.Context, booking *models.Booking) {
	if booking.ClientID == uuid.Nil {
		return
	}
	err := s.notifier.Send(ctx, notifications.SendParams{
		RecipientID: booking.ClientID,
		Type:        enums.NotificationTypeBookingConfirmed,
		Title:       "Booking confirmed",
		Body:        "Your payment went through and your appointment is confirmed.",
		Metadata: map[string]any{
			"bookingId":       booking.ID.String(),
			"appointmentDate": booking.AppointmentDate,
		},
	})
	if err != nil {
		s.logg.Error(ctx, "booking confirmation notification failed", err)
	}
}

// platformFee computes the marketplace cut in cents, rounding down so the
// platform never takes more than the configured share.
func platformFee(grossCents int64, bps int) int64 {
	if bps <= 0 || grossCents <= 0 {
		return 0
	}
	return decimal.NewFromInt(grossCents).
		Mul(decimal.NewFromInt(int64(bps))).
		Div(decimal.NewFromInt(10000)).
		Floor().
		IntPart()
}

func parseUUIDMeta(metadata map[string]string, key string) uuid.UUID {
	id, err := uuid.Parse(metadata[key])
	if err != nil {
		return uuid.Nil
	}
	return id
}

func parseIntMeta(metadata map[string]string, key string) int64 {
	value, err := strconv.ParseInt(metadata[key], 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
