package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/luisherrera/barberlane-backend/api/controllers"
	webhookcontrollers "github.com/luisherrera/barberlane-backend/api/controllers/webhooks"
	"github.com/luisherrera/barberlane-backend/api/middleware"
	checkoutsvc "github.com/luisherrera/barberlane-backend/internal/checkout"
	onboardingsvc "github.com/luisherrera/barberlane-backend/internal/onboarding"
	"github.com/luisherrera/barberlane-backend/internal/ratelimit"
	refundsvc "github.com/luisherrera/barberlane-backend/internal/refunds"
	remindersvc "github.com/luisherrera/barberlane-backend/internal/reminders"
	stripewebhook "github.com/luisherrera/barberlane-backend/internal/webhooks/stripe"
	"github.com/luisherrera/barberlane-backend/pkg/config"
	"github.com/luisherrera/barberlane-backend/pkg/db"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
	"github.com/luisherrera/barberlane-backend/pkg/redis"
	"github.com/luisherrera/barberlane-backend/pkg/stripe"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config            *config.Config
	Logger            *logger.Logger
	DB                db.Pinger
	Redis             *redis.Client
	StripeClient      *stripe.Client
	RateLimiter       ratelimit.Service
	OnboardingService onboardingsvc.Service
	RefundService     refundsvc.Service
	CheckoutService   checkoutsvc.Service
	ReminderService   remindersvc.Service
	WebhookService    stripewebhook.Service
	WebhookGuard      *stripewebhook.IdempotencyGuard
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	originPolicy := middleware.NewOriginPolicy(cfg.CORS.AllowedOrigins)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	// Server-to-server: Stripe authenticates with its signature, so neither
	// the origin gate nor bearer auth applies here.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe-checkout", webhookcontrollers.StripeCheckoutWebhook(deps.WebhookService, deps.StripeClient, deps.WebhookGuard, logg))
	})

	r.Route("/api/internal/v1", func(r chi.Router) {
		r.Use(middleware.RequireServiceToken(cfg.Internal, logg))
		r.With(middleware.RateLimit(
			"reconcile", cfg.RateLimit.ReconcileLimit, cfg.RateLimit.ReconcileWindow, deps.RateLimiter, logg,
		)).Post("/checkout/reconcile", controllers.ReconcileCheckout(deps.CheckoutService, logg))
		r.Post("/reminders/run", controllers.RunReminders(deps.ReminderService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.CORS(originPolicy),
			middleware.RequireBrowserOrigin(originPolicy, logg),
			middleware.Auth(cfg.JWT, logg),
		)

		r.With(middleware.RateLimit(
			"onboarding", cfg.RateLimit.OnboardingLimit, cfg.RateLimit.OnboardingWindow, deps.RateLimiter, logg,
		)).Post("/connect/onboarding", controllers.StartOnboarding(deps.OnboardingService, logg))

		r.With(middleware.RateLimit(
			"refund", cfg.RateLimit.RefundLimit, cfg.RateLimit.RefundWindow, deps.RateLimiter, logg,
		)).Post("/payments/refund", controllers.CreateRefund(deps.RefundService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(
			middleware.CORS(originPolicy),
			middleware.RequireBrowserOrigin(originPolicy, logg),
			middleware.Auth(cfg.JWT, logg),
			middleware.RequireAdmin(cfg.Admin, logg),
		)
		r.Get("/guard", controllers.AdminGuard())
	})

	return r
}
