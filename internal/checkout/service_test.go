package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luisherrera/barberlane-backend/internal/bookings"
	"github.com/luisherrera/barberlane-backend/internal/notifications"
	"github.com/luisherrera/barberlane-backend/internal/payments"
	"github.com/luisherrera/barberlane-backend/pkg/db/models"
	"github.com/luisherrera/barberlane-backend/pkg/enums"
	pkgerrors "github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

type stubBookingsRepo struct {
	upserts []models.Booking
}

func (s *stubBookingsRepo) WithTx(tx *gorm.DB) bookings.Repository { return s }
func (s *stubBookingsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return nil, nil
}
func (s *stubBookingsRepo) UpsertFromCheckout(ctx context.Context, booking *models.Booking) error {
	s.upserts = append(s.upserts, *booking)
	return nil
}
func (s *stubBookingsRepo) AdvanceStatus(ctx context.Context, id uuid.UUID, next enums.BookingStatus) (bool, error) {
	return false, nil
}
func (s *stubBookingsRepo) FindByAppointmentDate(ctx context.Context, date string, statuses []enums.BookingStatus) ([]models.Booking, error) {
	return nil, nil
}

type stubPaymentsRepo struct {
	upserts []models.Payment
}

func (s *stubPaymentsRepo) WithTx(tx *gorm.DB) payments.Repository { return s }
func (s *stubPaymentsRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error) {
	return nil, nil
}
func (s *stubPaymentsRepo) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Payment, error) {
	return nil, nil
}
func (s *stubPaymentsRepo) UpsertFromCheckout(ctx context.Context, payment *models.Payment) error {
	s.upserts = append(s.upserts, *payment)
	return nil
}
func (s *stubPaymentsRepo) ApplyRefund(ctx context.Context, paymentID uuid.UUID, amountCents int64) error {
	return nil
}

type stubTxRunner struct {
	calls int
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(nil)
}

type stubNotifier struct {
	sent []notifications.SendParams
}

func (s *stubNotifier) WithTx(tx *gorm.DB) notifications.Service { return s }
func (s *stubNotifier) Send(ctx context.Context, params notifications.SendParams) error {
	s.sent = append(s.sent, params)
	return nil
}

func newCheckoutService(t *testing.T, bookingsRepo *stubBookingsRepo, paymentsRepo *stubPaymentsRepo, notifier *stubNotifier) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Bookings:       bookingsRepo,
		Payments:       paymentsRepo,
		TxRunner:       &stubTxRunner{},
		Notifier:       notifier,
		PlatformFeeBPS: 1000,
		Logger:         logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return svc
}

func completedEvent(bookingID uuid.UUID) Event {
	return Event{
		ID:            "evt_1",
		SessionID:     "cs_1",
		PaymentIntent: "pi_1",
		AmountTotal:   5000,
		Currency:      "usd",
		Metadata: map[string]string{
			"bookingId":       bookingID.String(),
			"barberId":        uuid.NewString(),
			"clientId":        uuid.NewString(),
			"serviceId":       uuid.NewString(),
			"appointmentDate": "2026-09-01",
			"appointmentTime": "10:00",
		},
	}
}

func TestReconcile_UpsertsBookingAndPayment(t *testing.T) {
	bookingsRepo := &stubBookingsRepo{}
	paymentsRepo := &stubPaymentsRepo{}
	notifier := &stubNotifier{}
	svc := newCheckoutService(t, bookingsRepo, paymentsRepo, notifier)

	bookingID := uuid.New()
	result, err := svc.Reconcile(context.Background(), completedEvent(bookingID))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.BookingID != bookingID {
		t.Fatalf("expected booking id %s, got %s", bookingID, result.BookingID)
	}

	if len(bookingsRepo.upserts) != 1 {
		t.Fatalf("expected booking upsert")
	}
	booking := bookingsRepo.upserts[0]
	if booking.Status != enums.BookingStatusConfirmed {
		t.Fatalf("expected confirmed booking, got %q", booking.Status)
	}
	if booking.PlatformFeeCents != 500 {
		t.Fatalf("expected 10%% platform fee of 500, got %d", booking.PlatformFeeCents)
	}

	if len(paymentsRepo.upserts) != 1 {
		t.Fatalf("expected payment upsert")
	}
	payment := paymentsRepo.upserts[0]
	if payment.StripePaymentIntentID != "pi_1" {
		t.Fatalf("unexpected intent id %q", payment.StripePaymentIntentID)
	}
	if payment.GrossCents != 5000 || payment.ApplicationFeeCents != 500 {
		t.Fatalf("unexpected amounts %d/%d", payment.GrossCents, payment.ApplicationFeeCents)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected confirmation notification")
	}
	if notifier.sent[0].Type != enums.NotificationTypeBookingConfirmed {
		t.Fatalf("unexpected notification type %q", notifier.sent[0].Type)
	}
}

func TestReconcile_DerivesStableBookingIDWhenMetadataMissing(t *testing.T) {
	bookingsRepo := &stubBookingsRepo{}
	svc := newCheckoutService(t, bookingsRepo, &stubPaymentsRepo{}, &stubNotifier{})

	event := completedEvent(uuid.New())
	delete(event.Metadata, "bookingId")

	result, err := svc.Reconcile(context.Background(), event)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.BookingID == uuid.Nil {
		t.Fatalf("expected derived booking id")
	}

	// A redelivery of the same intent must converge on the same row.
	replay, err := svc.Reconcile(context.Background(), event)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay.BookingID != result.BookingID {
		t.Fatalf("replay produced booking %s, want %s", replay.BookingID, result.BookingID)
	}
	if len(bookingsRepo.upserts) != 2 || bookingsRepo.upserts[0].ID != bookingsRepo.upserts[1].ID {
		t.Fatalf("expected both upserts to target one booking row")
	}
}

func TestReconcile_ValidatesEvent(t *testing.T) {
	svc := newCheckoutService(t, &stubBookingsRepo{}, &stubPaymentsRepo{}, &stubNotifier{})
	ctx := context.Background()

	cases := []struct {
		name  string
		event Event
	}{
		{"missing event id", Event{PaymentIntent: "pi_1", AmountTotal: 100}},
		{"missing payment intent", Event{ID: "evt_1", AmountTotal: 100}},
		{"zero amount", Event{ID: "evt_1", PaymentIntent: "pi_1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Reconcile(ctx, tc.event)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation code, got %v", err)
			}
		})
	}
}

func TestPlatformFee_RoundsDown(t *testing.T) {
	cases := []struct {
		gross int64
		bps   int
		want  int64
	}{
		{5000, 1000, 500},
		{999, 1000, 99},
		{1, 1000, 0},
		{5000, 0, 0},
		{3333, 250, 83},
	}
	for _, tc := range cases {
		if got := platformFee(tc.gross, tc.bps); got != tc.want {
			t.Fatalf("platformFee(%d, %d) = %d, want %d", tc.gross, tc.bps, got, tc.want)
		}
	}
}
