package controllers

import (
	"net/http"

	"github.com/luisherrera/barberlane-backend/api/responses"
	"github.com/luisherrera/barberlane-backend/internal/reminders"
	pkgerrors "github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

// RunReminders triggers the daily reminder pass on demand. The route sits
// behind the internal service token so the scheduler platform can call it
// without holding a user credential.
func RunReminders(svc reminders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminder service unavailable"))
			return
		}

		stats, err := svc.RunDaily(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
