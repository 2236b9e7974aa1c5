package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/luisherrera/barberlane-backend/api/middleware"
	"github.com/luisherrera/barberlane-backend/api/responses"
	"github.com/luisherrera/barberlane-backend/api/validators"
	"github.com/luisherrera/barberlane-backend/internal/refunds"
	pkgerrors "github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

type createRefundRequest struct {
	BookingID       string `json:"booking_id" validate:"required,uuid"`
	PaymentIntentID string `json:"payment_intent_id" validate:"omitempty,max=255"`
	AmountCents     *int64 `json:"amount_cents" validate:"omitempty,gt=0"`
	Reason          string `json:"reason" validate:"omitempty,max=500"`
}

// CreateRefund issues a full or partial refund for one of the authenticated
// barber's bookings.
func CreateRefund(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refund service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authenticated user required"))
			return
		}

		var body createRefundRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		bookingID, err := uuid.Parse(body.BookingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "booking_id must be a valid uuid"))
			return
		}

		result, err := svc.Refund(ctx, refunds.RefundParams{
			UserID:          userID,
			BookingID:       bookingID,
			PaymentIntentID: body.PaymentIntentID,
			AmountCents:     body.AmountCents,
			Reason:          body.Reason,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
