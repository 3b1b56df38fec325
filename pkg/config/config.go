package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/daleelcare/daleelcare-backend/pkg/types"
)

const (
	EnvPrefix  = ""
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Policy       PolicyConfig
	Outbox       OutboxConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DALEELCARE_APP_ENV" required:"true"`
	Port         string `envconfig:"DALEELCARE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"DALEELCARE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DALEELCARE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"DALEELCARE_DB_DSN"`

	Host     string `envconfig:"DALEELCARE_DB_HOST"`
	Port     int    `envconfig:"DALEELCARE_DB_PORT" default:"5432"`
	User     string `envconfig:"DALEELCARE_DB_USER"`
	Password string `envconfig:"DALEELCARE_DB_PASSWORD"`
	Name     string `envconfig:"DALEELCARE_DB_NAME"`
	SSLMode  string `envconfig:"DALEELCARE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DALEELCARE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DALEELCARE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DALEELCARE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DALEELCARE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if strings.TrimSpace(d.DSN) != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database DSN or host/user/name settings are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"DALEELCARE_REDIS_URL"`
	Address      string        `envconfig:"DALEELCARE_REDIS_ADDR"`
	Password     string        `envconfig:"DALEELCARE_REDIS_PASSWORD"`
	DB           int           `envconfig:"DALEELCARE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DALEELCARE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DALEELCARE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DALEELCARE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DALEELCARE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DALEELCARE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DALEELCARE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DALEELCARE_JWT_ISSUER" default:"daleelcare"`
	ExpirationMinutes int    `envconfig:"DALEELCARE_JWT_EXPIRATION_MINUTES" default:"720"`
}

// PolicyConfig feeds the PlatformPolicy threaded through workflow calls.
type PolicyConfig struct {
	FeePercent     decimal.Decimal `envconfig:"DALEELCARE_POLICY_FEE_PERCENT" default:"20"`
	DepositPercent decimal.Decimal `envconfig:"DALEELCARE_POLICY_DEPOSIT_PERCENT" default:"0"`
	DebtLimit      decimal.Decimal `envconfig:"DALEELCARE_POLICY_DEBT_LIMIT" default:"0"`
}

// Platform materializes the policy value handed to workflow calls.
func (p PolicyConfig) Platform() types.PlatformPolicy {
	return types.PlatformPolicy{
		FeePercent:     p.FeePercent,
		DepositPercent: p.DepositPercent,
		DebtLimit:      p.DebtLimit,
	}
}

type OutboxConfig struct {
	SinkURL            string        `envconfig:"DALEELCARE_OUTBOX_SINK_URL"`
	SinkToken          string        `envconfig:"DALEELCARE_OUTBOX_SINK_TOKEN"`
	BatchSize          int           `envconfig:"DALEELCARE_OUTBOX_BATCH_SIZE" default:"50"`
	MaxAttempts        int           `envconfig:"DALEELCARE_OUTBOX_MAX_ATTEMPTS" default:"5"`
	BackoffBaseMinutes int           `envconfig:"DALEELCARE_OUTBOX_BACKOFF_BASE_MINUTES" default:"2"`
	SendTimeout        time.Duration `envconfig:"DALEELCARE_OUTBOX_SEND_TIMEOUT" default:"10s"`
	PollIntervalMS     int           `envconfig:"DALEELCARE_OUTBOX_POLL_INTERVAL_MS" default:"30000"`
}

type CronConfig struct {
	Interval           time.Duration `envconfig:"DALEELCARE_CRON_INTERVAL" default:"10m"`
	LockTTL            time.Duration `envconfig:"DALEELCARE_CRON_LOCK_TTL" default:"9m"`
	LateCheckinGrace   time.Duration `envconfig:"DALEELCARE_CRON_LATE_CHECKIN_GRACE" default:"30m"`
	MetricsListenAddr  string        `envconfig:"DALEELCARE_CRON_METRICS_ADDR" default:":9091"`
	LateCheckinEnabled bool          `envconfig:"DALEELCARE_CRON_LATE_CHECKIN_ENABLED" default:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DALEELCARE_AUTO_MIGRATE" default:"false"`
}
