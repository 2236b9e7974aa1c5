package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// resolveRequestID trusts the inbound header only when it carries a valid
// UUID. Anything else gets a freshly minted id so callers cannot inject
// arbitrary strings into the logs.
func resolveRequestID(r *http.Request) string {
	if id := r.Header.Get(requestIDHeader); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return uuid.NewString()
}

// RequestID assigns each request an id, echoes it on the response and
// attaches it to every log line for the request.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := resolveRequestID(r)
			w.Header().Set(requestIDHeader, id)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, id)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
