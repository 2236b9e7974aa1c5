package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/luisherrera/barberlane-backend/api/responses"
	"github.com/luisherrera/barberlane-backend/internal/ratelimit"
	pkgerrors "github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

// RateLimit throttles the wrapped routes per caller. Authenticated requests
// count against the user id; anonymous ones against the client IP. Limits
// are shared across instances through the counter store.
func RateLimit(action string, limit int, window time.Duration, svc ratelimit.Service, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 || window <= 0 || svc == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			identifier := UserIDFromContext(ctx)
			if identifier == "" {
				identifier = clientIP(r)
			}
			if identifier == "" {
				identifier = "unknown"
			}

			result, err := svc.Consume(ctx, action, identifier, int64(limit), window)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			if !result.Allowed {
				retryAfter := int(result.RetryAfter.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"action":   action,
						"attempts": result.Used,
						"limit":    limit,
					})
					logg.Warn(logCtx, "rate_limit.blocked")
				}

				err := pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded").
					WithDetails(map[string]any{"retryAfterSeconds": retryAfter})
				responses.WriteError(ctx, logg, w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
