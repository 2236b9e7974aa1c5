package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/luisherrera/barberlane-backend/api/responses"
	pkgerrors "github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

var defaultAllowedOrigins = []string{
	"http://localhost:3000", // local dev
	"https://barberlane.app",
	"https://www.barberlane.app",
}

// OriginPolicy is the single source of truth for browser origins. Both the
// CORS layer and the hard origin gate read from it so they can never drift.
type OriginPolicy struct {
	allowed map[string]struct{}
	origins []string
}

// NewOriginPolicy builds a policy from the configured origins, falling back
// to the platform defaults when none are configured.
func NewOriginPolicy(configured []string) OriginPolicy {
	origins := configured
	if len(origins) == 0 {
		origins = defaultAllowedOrigins
	}
	allowed := make(map[string]struct{}, len(origins))
	clean := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		allowed[strings.ToLower(origin)] = struct{}{}
		clean = append(clean, origin)
	}
	return OriginPolicy{allowed: allowed, origins: clean}
}

// Allows reports whether the given Origin header value is on the allowlist.
func (p OriginPolicy) Allows(origin string) bool {
	origin = strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
	if origin == "" {
		return false
	}
	_, ok := p.allowed[origin]
	return ok
}

// Origins returns the normalized allowlist.
func (p OriginPolicy) Origins() []string {
	origins := make([]string, len(p.origins))
	copy(origins, p.origins)
	return origins
}

// CORS applies the browser origin policy to preflight and response headers.
func CORS(policy OriginPolicy) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   policy.Origins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

// RequireBrowserOrigin hard-rejects requests whose Origin header is missing
// or off the allowlist. CORS alone only advises the browser; this gate makes
// the policy binding for the sensitive payment routes it wraps.
func RequireBrowserOrigin(policy OriginPolicy, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if !policy.Allows(origin) {
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithField(ctx, "origin", origin)
					logg.Warn(ctx, "origin.blocked")
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "origin not allowed"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
