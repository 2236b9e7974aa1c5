package barbers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luisherrera/barberlane-backend/pkg/db/models"
)

// Repository exposes persistence helpers for barber profiles and their
// processor sub-accounts. Find helpers return (nil, nil) when no row exists.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.BarberProfile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.BarberProfile, error)
	SetStripeAccountID(ctx context.Context, profileID uuid.UUID, accountID string) error
	CreateConnectAccount(ctx context.Context, account *models.ConnectAccount) error
	FindConnectAccountByBarberID(ctx context.Context, barberID uuid.UUID) (*models.ConnectAccount, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a barbers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.BarberProfile, error) {
	var profile models.BarberProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.BarberProfile, error) {
	var profile models.BarberProfile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repositoryImpl) SetStripeAccountID(ctx context.Context, profileID uuid.UUID, accountID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.BarberProfile{}).
		Where("id = ? AND stripe_account_id IS NULL", profileID).
		Updates(map[string]any{
			"stripe_account_id": accountID,
			"updated_at":        time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) CreateConnectAccount(ctx context.Context, account *models.ConnectAccount) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repositoryImpl) FindConnectAccountByBarberID(ctx context.Context, barberID uuid.UUID) (*models.ConnectAccount, error) {
	var account models.ConnectAccount
	err := r.db.WithContext(ctx).Where("barber_id = ?", barberID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
