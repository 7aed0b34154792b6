package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Stripe       StripeConfig
	Billing      BillingConfig
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
	Env          string `envconfig:"EQUIHERDS_APP_ENV" required:"true"`
	Port         string `envconfig:"EQUIHERDS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"EQUIHERDS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EQUIHERDS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"EQUIHERDS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"EQUIHERDS_DB_DSN"`
	Driver string `envconfig:"EQUIHERDS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EQUIHERDS_DB_HOST"`
	LegacyPort     int    `envconfig:"EQUIHERDS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EQUIHERDS_DB_USER"`
	LegacyPassword string `envconfig:"EQUIHERDS_DB_PASSWORD"`
	LegacyName     string `envconfig:"EQUIHERDS_DB_NAME"`
	LegacySSLMode  string `envconfig:"EQUIHERDS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EQUIHERDS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EQUIHERDS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EQUIHERDS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EQUIHERDS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EQUIHERDS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EQUIHERDS_REDIS_ADDR"`
	Password     string        `envconfig:"EQUIHERDS_REDIS_PASSWORD"`
	DB           int           `envconfig:"EQUIHERDS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EQUIHERDS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EQUIHERDS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EQUIHERDS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EQUIHERDS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EQUIHERDS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StripeConfig struct {
	APIKey string `envconfig:"EQUIHERDS_STRIPE_API_KEY"`
	Env    string `envconfig:"EQUIHERDS_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// BillingConfig carries the renewal engine knobs.
type BillingConfig struct {
	Currency         string        `envconfig:"EQUIHERDS_BILLING_CURRENCY" default:"usd"`
	CooldownWindow   time.Duration `envconfig:"EQUIHERDS_BILLING_COOLDOWN_WINDOW" default:"2h"`
	OperationTimeout time.Duration `envconfig:"EQUIHERDS_BILLING_OPERATION_TIMEOUT" default:"10s"`
	SweepInterval    time.Duration `envconfig:"EQUIHERDS_BILLING_SWEEP_INTERVAL" default:"1h"`
	SweepLimit       int           `envconfig:"EQUIHERDS_BILLING_SWEEP_LIMIT" default:"250"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EQUIHERDS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
