package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/luisherrera/barberlane-backend/internal/checkout"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

type stubCheckoutService struct {
	events []checkout.Event
	err    error
}

func (s *stubCheckoutService) Reconcile(ctx context.Context, event checkout.Event) (*checkout.Result, error) {
	s.events = append(s.events, event)
	if s.err != nil {
		return nil, s.err
	}
	return &checkout.Result{BookingID: uuid.New(), PaymentIntentID: event.PaymentIntent}, nil
}

func newWebhookService(t *testing.T, checkoutSvc checkout.Service) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Checkout: checkoutSvc,
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return svc
}

func checkoutCompletedEvent(t *testing.T) *stripe.Event {
	t.Helper()

	session := map[string]any{
		"id":             "cs_1",
		"payment_intent": map[string]any{"id": "pi_1"},
		"amount_total":   5000,
		"currency":       "usd",
		"metadata": map[string]string{
			"bookingId": uuid.NewString(),
		},
	}
	raw, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	return &stripe.Event{
		ID:   "evt_1",
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleEvent_DispatchesCheckoutCompleted(t *testing.T) {
	checkoutSvc := &stubCheckoutService{}
	svc := newWebhookService(t, checkoutSvc)

	if err := svc.HandleEvent(context.Background(), checkoutCompletedEvent(t)); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(checkoutSvc.events) != 1 {
		t.Fatalf("expected one reconcile call, got %d", len(checkoutSvc.events))
	}

	event := checkoutSvc.events[0]
	if event.ID != "evt_1" || event.SessionID != "cs_1" {
		t.Fatalf("unexpected event identifiers %+v", event)
	}
	if event.PaymentIntent != "pi_1" {
		t.Fatalf("expected expanded payment intent id, got %q", event.PaymentIntent)
	}
	if event.AmountTotal != 5000 || event.Currency != "usd" {
		t.Fatalf("unexpected amounts %+v", event)
	}
}

func TestHandleEvent_AcksUnhandledTypes(t *testing.T) {
	checkoutSvc := &stubCheckoutService{}
	svc := newWebhookService(t, checkoutSvc)

	err := svc.HandleEvent(context.Background(), &stripe.Event{
		ID:   "evt_2",
		Type: "invoice.paid",
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	})
	if err != nil {
		t.Fatalf("unhandled types must be acknowledged, got %v", err)
	}
	if len(checkoutSvc.events) != 0 {
		t.Fatalf("unhandled type must not hit the checkout service")
	}
}

func TestHandleEvent_RejectsMalformedPayload(t *testing.T) {
	svc := newWebhookService(t, &stubCheckoutService{})

	err := svc.HandleEvent(context.Background(), &stripe.Event{
		ID:   "evt_3",
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: json.RawMessage(`{`)},
	})
	if err == nil {
		t.Fatalf("expected decode error")
	}
}
