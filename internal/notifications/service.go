package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luisherrera/barberlane-backend/pkg/db/models"
	"github.com/luisherrera/barberlane-backend/pkg/enums"
	"github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

// SendParams describes one notification to deliver.
type SendParams struct {
	RecipientID uuid.UUID
	Type        enums.NotificationType
	Title       string
	Body        string
	Metadata    map[string]any
}

// Service writes in-app notifications. Callers on payment paths treat send
// failures as best-effort; the reminder scheduler treats them as hard so the
// next run retries.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Send(ctx context.Context, params SendParams) error
}

// ServiceParams holds the dependencies for the notifications service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

type serviceImpl struct {
	repo Repository
	logg *logger.Logger
}

// NewService validates the dependencies and returns a notifications service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("notifications: repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("notifications: logger is required")
	}
	return &serviceImpl{repo: params.Repo, logg: params.Logger}, nil
}

func (s *serviceImpl) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &serviceImpl{repo: s.repo.WithTx(tx), logg: s.logg}
}

func (s *serviceImpl) Send(ctx context.Context, params SendParams) error {
	if params.RecipientID == uuid.Nil {
		return errors.New(errors.CodeValidation, "notification recipient is required")
	}
	if !params.Type.IsValid() {
		return errors.New(errors.CodeValidation, fmt.Sprintf("unknown notification type %q", params.Type))
	}
	if params.Title == "" {
		return errors.New(errors.CodeValidation, "notification title is required")
	}

	var metadata json.RawMessage
	if len(params.Metadata) > 0 {
		raw, err := json.Marshal(params.Metadata)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "marshalling notification metadata")
		}
		metadata = raw
	}

	notification := &models.Notification{
		ID:          uuid.New(),
		RecipientID: params.RecipientID,
		Type:        params.Type,
		Title:       params.Title,
		Body:        params.Body,
		Metadata:    metadata,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "storing notification")
	}
	return nil
}
