package notifications

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luisherrera/barberlane-backend/pkg/db/models"
	"github.com/luisherrera/barberlane-backend/pkg/enums"
	pkgerrors "github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

type stubRepo struct {
	created []models.Notification
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }
func (s *stubRepo) Create(ctx context.Context, notification *models.Notification) error {
	s.created = append(s.created, *notification)
	return nil
}
func (s *stubRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]models.Notification, error) {
	return nil, nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return svc
}

func TestSend_PersistsNotification(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	recipientID := uuid.New()
	err := svc.Send(context.Background(), SendParams{
		RecipientID: recipientID,
		Type:        enums.NotificationTypePaymentRefunded,
		Title:       "Refund issued",
		Body:        "Your booking was refunded.",
		Metadata:    map[string]any{"bookingId": uuid.NewString()},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one row, got %d", len(repo.created))
	}

	row := repo.created[0]
	if row.RecipientID != recipientID {
		t.Fatalf("unexpected recipient %s", row.RecipientID)
	}
	if row.ID == uuid.Nil {
		t.Fatalf("expected assigned id")
	}
	if len(row.Metadata) == 0 {
		t.Fatalf("expected marshalled metadata")
	}
}

func TestSend_Validation(t *testing.T) {
	svc := newTestService(t, &stubRepo{})
	ctx := context.Background()

	cases := []struct {
		name   string
		params SendParams
	}{
		{"missing recipient", SendParams{Type: enums.NotificationTypeBookingConfirmed, Title: "x"}},
		{"unknown type", SendParams{RecipientID: uuid.New(), Type: "bogus", Title: "x"}},
		{"missing title", SendParams{RecipientID: uuid.New(), Type: enums.NotificationTypeBookingConfirmed}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Send(ctx, tc.params)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
