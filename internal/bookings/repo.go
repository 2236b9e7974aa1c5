package bookings

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

// Repository exposes persistence helpers for bookings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	UpsertFromCheckout(ctx context.Context, booking *models.Booking) error
	AdvanceStatus(ctx context.Context, id uuid.UUID, next enums.BookingStatus) (bool, error)
	FindByAppointmentDate(ctx context.Context, date string, statuses []enums.BookingStatus) ([]models.Booking, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a bookings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpsertFromCheckout inserts the booking or refreshes the payment-derived
// columns of an existing row. The status expression only ever advances
// pending → confirmed; a cancelled or completed booking is left untouched so
// replayed events cannot regress the lifecycle.
func (r *repositoryImpl) UpsertFromCheckout(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_amount_cents": booking.TotalAmountCents,
			"platform_fee_cents": booking.PlatformFeeCents,
			"stripe_session_id":  booking.StripeSessionID,
			"status": gorm.Expr(
				"CASE WHEN bookings.status = ? THEN ? ELSE bookings.status END",
				enums.BookingStatusPending, enums.BookingStatusConfirmed,
			),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(booking).Error
}

// AdvanceStatus moves the booking to next only when the current status allows
// the transition. Returns false when no row changed (absent booking or a
// disallowed transition).
func (r *repositoryImpl) AdvanceStatus(ctx context.Context, id uuid.UUID, next enums.BookingStatus) (bool, error) {
	froms := transitionSources(next)
	if len(froms) == 0 {
		return false, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status IN ?", id, froms).
		Updates(map[string]any{
			"status":     next,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) FindByAppointmentDate(ctx context.Context, date string, statuses []enums.BookingStatus) ([]models.Booking, error) {
	var rows []models.Booking
	query := r.db.WithContext(ctx).Where("appointment_date = ?", date)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Order("appointment_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func transitionSources(next enums.BookingStatus) []enums.BookingStatus {
	var froms []enums.BookingStatus
	for _, from := range []enums.BookingStatus{
		enums.BookingStatusPending,
		enums.BookingStatusConfirmed,
		enums.BookingStatusCancelled,
		enums.BookingStatusCompleted,
	} {
		if from.CanTransitionTo(next) {
			froms = append(froms, from)
		}
	}
	return froms
}
