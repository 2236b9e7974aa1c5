package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v84"

	"github.com/luisherrera/barberlane-backend/internal/checkout"
	"github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

// Service routes verified Stripe events into the payment core.
type Service interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

// ServiceParams holds the dependencies for the webhook service.
type ServiceParams struct {
	Checkout checkout.Service
	Logger   *logger.Logger
}

type serviceImpl struct {
	checkout checkout.Service
	logg     *logger.Logger
}

// NewService validates the dependencies and returns a webhook service.
func NewService(params ServiceParams) (Service, error) {
	if params.Checkout == nil {
		return nil, fmt.Errorf("stripewebhook: checkout service is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("stripewebhook: logger is required")
	}
	return &serviceImpl{checkout: params.Checkout, logg: params.Logger}, nil
}

// HandleEvent dispatches on the event type. Unhandled types are acknowledged
// so Stripe stops retrying them.
func (s *serviceImpl) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil {
		return errors.New(errors.CodeValidation, "event is required")
	}

	ctx = s.logg.WithField(ctx, "stripe_event_type", string(event.Type))

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	default:
		s.logg.Info(ctx, "ignoring unhandled stripe event type")
		return nil
	}
}

func (s *serviceImpl) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return errors.Wrap(errors.CodeValidation, err, "decoding checkout session")
	}

	var paymentIntentID string
	if session.PaymentIntent != nil {
		paymentIntentID = session.PaymentIntent.ID
	}

	_, err := s.checkout.Reconcile(ctx, checkout.Event{
		ID:            event.ID,
		SessionID:     session.ID,
		PaymentIntent: paymentIntentID,
		AmountTotal:   session.AmountTotal,
		Currency:      string(session.Currency),
		Metadata:      session.Metadata,
	})
	return err
}
