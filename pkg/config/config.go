package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "BARBERLANE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Admin        AdminConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Stripe       StripeConfig
	Reminders    RemindersConfig
	Internal     InternalConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BARBERLANE_APP_ENV" required:"true"`
	Port         string `envconfig:"BARBERLANE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BARBERLANE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BARBERLANE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BARBERLANE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BARBERLANE_DB_DSN" required:"true"`
	Driver string `envconfig:"BARBERLANE_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"BARBERLANE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BARBERLANE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BARBERLANE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BARBERLANE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BARBERLANE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BARBERLANE_REDIS_ADDR"`
	Password     string        `envconfig:"BARBERLANE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BARBERLANE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BARBERLANE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BARBERLANE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BARBERLANE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BARBERLANE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BARBERLANE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BARBERLANE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BARBERLANE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BARBERLANE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AdminConfig carries the deployment-owned admin allowlists. Both lists empty
// means the admin surface is misconfigured and the guard fails closed.
type AdminConfig struct {
	UserIDs []string `envconfig:"BARBERLANE_ADMIN_USER_IDS"`
	Emails  []string `envconfig:"BARBERLANE_ADMIN_EMAILS"`
}

func (a AdminConfig) Configured() bool {
	return len(a.UserIDs) > 0 || len(a.Emails) > 0
}

type RateLimitConfig struct {
	// FailOpen keeps requests flowing when the counter store errors. Flip to
	// false for deployments that would rather shed traffic than over-admit.
	FailOpen bool `envconfig:"BARBERLANE_RATE_LIMIT_FAIL_OPEN" default:"true"`

	RefundLimit      int           `envconfig:"BARBERLANE_RATE_LIMIT_REFUND_LIMIT" default:"10"`
	RefundWindow     time.Duration `envconfig:"BARBERLANE_RATE_LIMIT_REFUND_WINDOW" default:"1m"`
	OnboardingLimit  int           `envconfig:"BARBERLANE_RATE_LIMIT_ONBOARDING_LIMIT" default:"5"`
	OnboardingWindow time.Duration `envconfig:"BARBERLANE_RATE_LIMIT_ONBOARDING_WINDOW" default:"1m"`
	ReconcileLimit   int           `envconfig:"BARBERLANE_RATE_LIMIT_RECONCILE_LIMIT" default:"30"`
	ReconcileWindow  time.Duration `envconfig:"BARBERLANE_RATE_LIMIT_RECONCILE_WINDOW" default:"1m"`
	CounterRetention time.Duration `envconfig:"BARBERLANE_RATE_LIMIT_COUNTER_RETENTION" default:"48h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"BARBERLANE_CORS_ALLOWED_ORIGINS"`
}

type StripeConfig struct {
	APIKey            string `envconfig:"BARBERLANE_STRIPE_API_KEY"`
	Secret            string `envconfig:"BARBERLANE_STRIPE_SECRET"`
	Env               string `envconfig:"BARBERLANE_STRIPE_ENV" default:"test"`
	ConnectRefreshURL string `envconfig:"BARBERLANE_STRIPE_CONNECT_REFRESH_URL"`
	ConnectReturnURL  string `envconfig:"BARBERLANE_STRIPE_CONNECT_RETURN_URL"`

	// PlatformFeeBPS is the marketplace cut in basis points (1000 = 10%).
	PlatformFeeBPS int `envconfig:"BARBERLANE_STRIPE_PLATFORM_FEE_BPS" default:"1000"`

	WebhookReplayTTL time.Duration `envconfig:"BARBERLANE_STRIPE_WEBHOOK_REPLAY_TTL" default:"720h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type RemindersConfig struct {
	Timezone      string `envconfig:"BARBERLANE_REMINDERS_TIMEZONE" default:"UTC"`
	RetentionDays int    `envconfig:"BARBERLANE_REMINDERS_RETENTION_DAYS" default:"30"`
}

// Location resolves the configured IANA timezone, falling back to UTC.
func (r RemindersConfig) Location() *time.Location {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type InternalConfig struct {
	ServiceToken string `envconfig:"BARBERLANE_INTERNAL_SERVICE_TOKEN"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BARBERLANE_AUTO_MIGRATE" default:"false"`
}
