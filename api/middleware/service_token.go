package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/luisherrera/barberlane-backend/api/responses"
	"github.com/luisherrera/barberlane-backend/pkg/config"
	pkgerrors "github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

const serviceTokenHeader = "X-Internal-Token"

// RequireServiceToken guards the internal service-to-service routes. An
// unset token is a deployment fault and fails closed with a 500.
func RequireServiceToken(cfg config.InternalConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	expected := strings.TrimSpace(cfg.ServiceToken)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if expected == "" {
				if logg != nil {
					logg.Error(ctx, "internal service token not configured", nil)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "internal access not configured"))
				return
			}

			provided := strings.TrimSpace(r.Header.Get(serviceTokenHeader))
			if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
				if logg != nil {
					logg.Warn(ctx, "internal.token_rejected")
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid service token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
