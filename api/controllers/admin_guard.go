package controllers

import (
	"net/http"

	"github.com/luisherrera/barberlane-backend/api/middleware"
	"github.com/luisherrera/barberlane-backend/api/responses"
)

// AdminGuard confirms the caller cleared the admin allowlist. Dashboards
// probe it before rendering admin-only UI.
func AdminGuard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		responses.WriteSuccess(w, map[string]any{
			"ok": true,
			"principal": map[string]any{
				"userId": middleware.UserIDFromContext(ctx),
				"email":  middleware.EmailFromContext(ctx),
			},
		})
	}
}
