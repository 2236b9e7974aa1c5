package controllers

import (
	"net/http"

	"github.com/luisherrera/barberlane-backend/api/responses"
	"github.com/luisherrera/barberlane-backend/api/validators"
	"github.com/luisherrera/barberlane-backend/internal/checkout"
	pkgerrors "github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

type reconcileCheckoutRequest struct {
	ID            string            `json:"id" validate:"required"`
	SessionID     string            `json:"session_id" validate:"omitempty,max=255"`
	PaymentIntent string            `json:"payment_intent" validate:"required"`
	ChargeID      string            `json:"charge_id" validate:"omitempty,max=255"`
	AmountTotal   int64             `json:"amount_total" validate:"required,gt=0"`
	Currency      string            `json:"currency" validate:"omitempty,len=3"`
	Metadata      map[string]string `json:"metadata"`
}

// ReconcileCheckout replays a completed checkout event through the
// reconciler. Internal-only; used to backfill events the webhook missed.
func ReconcileCheckout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body reconcileCheckoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Reconcile(ctx, checkout.Event{
			ID:            body.ID,
			SessionID:     body.SessionID,
			PaymentIntent: body.PaymentIntent,
			ChargeID:      body.ChargeID,
			AmountTotal:   body.AmountTotal,
			Currency:      body.Currency,
			Metadata:      body.Metadata,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
