package middleware

import (
	"net/http"
	"strings"

	"github.com/luisherrera/barberlane-backend/api/responses"
	"github.com/luisherrera/barberlane-backend/pkg/config"
	pkgerrors "github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

// RequireAdmin allows only users on the deployment-owned allowlists through.
// An unconfigured allowlist is a deployment fault: the guard fails closed
// with a 500 instead of quietly granting or denying access.
func RequireAdmin(cfg config.AdminConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	userIDs := make(map[string]struct{}, len(cfg.UserIDs))
	for _, id := range cfg.UserIDs {
		if id = strings.TrimSpace(id); id != "" {
			userIDs[strings.ToLower(id)] = struct{}{}
		}
	}
	emails := make(map[string]struct{}, len(cfg.Emails))
	for _, email := range cfg.Emails {
		if email = strings.TrimSpace(email); email != "" {
			emails[strings.ToLower(email)] = struct{}{}
		}
	}

	configured := len(userIDs) > 0 || len(emails) > 0

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if !configured {
				if logg != nil {
					logg.Error(ctx, "admin allowlist not configured", nil)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin access not configured"))
				return
			}

			userID := strings.ToLower(UserIDFromContext(ctx))
			email := strings.ToLower(EmailFromContext(ctx))

			if _, ok := userIDs[userID]; ok && userID != "" {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := emails[email]; ok && email != "" {
				next.ServeHTTP(w, r)
				return
			}

			if logg != nil {
				logg.Warn(ctx, "admin.denied")
			}
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required"))
		})
	}
}
