package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/luisherrera/barberlane-backend/api/routes"
	"github.com/luisherrera/barberlane-backend/internal/barbers"
	"github.com/luisherrera/barberlane-backend/internal/bookings"
	"github.com/luisherrera/barberlane-backend/internal/checkout"
	"github.com/luisherrera/barberlane-backend/internal/notifications"
	"github.com/luisherrera/barberlane-backend/internal/onboarding"
	"github.com/luisherrera/barberlane-backend/internal/payments"
	"github.com/luisherrera/barberlane-backend/internal/ratelimit"
	"github.com/luisherrera/barberlane-backend/internal/refunds"
	"github.com/luisherrera/barberlane-backend/internal/reminders"
	stripewebhook "github.com/luisherrera/barberlane-backend/internal/webhooks/stripe"
	"github.com/luisherrera/barberlane-backend/pkg/config"
	"github.com/luisherrera/barberlane-backend/pkg/db"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
	"github.com/luisherrera/barberlane-backend/pkg/migrate"
	"github.com/luisherrera/barberlane-backend/pkg/redis"
	"github.com/luisherrera/barberlane-backend/pkg/stripe"
)

const webhookReplayScope = "stripe-checkout"

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	barbersRepo := barbers.NewRepository(dbClient.DB())
	bookingsRepo := bookings.NewRepository(dbClient.DB())
	paymentsRepo := payments.NewRepository(dbClient.DB())
	remindersRepo := reminders.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())

	notifier, err := notifications.NewService(notifications.ServiceParams{
		Repo:   notificationsRepo,
		Logger: logg,
	})
	exitOnErr(logg, "notifications service", err)

	rateLimiter, err := ratelimit.NewService(ratelimit.ServiceParams{
		Store:    ratelimit.NewStore(dbClient.DB()),
		FailOpen: cfg.RateLimit.FailOpen,
		Logger:   logg,
	})
	exitOnErr(logg, "rate limit service", err)

	onboardingService, err := onboarding.NewService(onboarding.ServiceParams{
		Barbers:  barbersRepo,
		Stripe:   onboarding.NewStripeClient(stripeClient),
		TxRunner: dbClient,
		Config:   cfg.Stripe,
		Logger:   logg,
	})
	exitOnErr(logg, "onboarding service", err)

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Bookings:       bookingsRepo,
		Payments:       paymentsRepo,
		TxRunner:       dbClient,
		Notifier:       notifier,
		PlatformFeeBPS: cfg.Stripe.PlatformFeeBPS,
		Logger:         logg,
	})
	exitOnErr(logg, "checkout service", err)

	refundService, err := refunds.NewService(refunds.ServiceParams{
		Barbers:  barbersRepo,
		Bookings: bookingsRepo,
		Payments: paymentsRepo,
		Stripe:   refunds.NewStripeClient(stripeClient),
		TxRunner: dbClient,
		Notifier: notifier,
		Logger:   logg,
	})
	exitOnErr(logg, "refund service", err)

	reminderService, err := reminders.NewService(reminders.ServiceParams{
		Bookings:      bookingsRepo,
		Records:       remindersRepo,
		Notifier:      notifier,
		Location:      cfg.Reminders.Location(),
		RetentionDays: cfg.Reminders.RetentionDays,
		Logger:        logg,
	})
	exitOnErr(logg, "reminder service", err)

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Checkout: checkoutService,
		Logger:   logg,
	})
	exitOnErr(logg, "webhook service", err)

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.WebhookReplayTTL, webhookReplayScope)
	exitOnErr(logg, "webhook guard", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:            cfg,
			Logger:            logg,
			DB:                dbClient,
			Redis:             redisClient,
			StripeClient:      stripeClient,
			RateLimiter:       rateLimiter,
			OnboardingService: onboardingService,
			RefundService:     refundService,
			CheckoutService:   checkoutService,
			ReminderService:   reminderService,
			WebhookService:    webhookService,
			WebhookGuard:      webhookGuard,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func exitOnErr(logg *logger.Logger, what string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+what, err)
		os.Exit(1)
	}
}
