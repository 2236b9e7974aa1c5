package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/luisherrera/barberlane-backend/api/middleware"
	"github.com/luisherrera/barberlane-backend/api/responses"
	"github.com/luisherrera/barberlane-backend/api/validators"
	"github.com/luisherrera/barberlane-backend/internal/onboarding"
	pkgerrors "github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

type startOnboardingRequest struct {
	BusinessName string `json:"businessName" validate:"omitempty,max=200"`
	Email        string `json:"email" validate:"omitempty,email"`
	Country      string `json:"country" validate:"omitempty,len=2"`
}

// StartOnboarding kicks off or resumes Stripe Connect onboarding for the
// authenticated barber and returns a single-use onboarding link.
func StartOnboarding(svc onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "onboarding service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authenticated user required"))
			return
		}

		var body startOnboardingRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		result, err := svc.Start(ctx, userID, onboarding.Hints{
			BusinessName: body.BusinessName,
			Email:        body.Email,
			Country:      body.Country,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
