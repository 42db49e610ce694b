package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Service   ServiceConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Payments  PaymentsConfig
	Orders    OrdersConfig
	Outbox    OutboxConfig
	RateLimit RateLimitConfig
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
	Env          string `envconfig:"PARTSMARKET_APP_ENV" required:"true"`
	Port         string `envconfig:"PARTSMARKET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PARTSMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PARTSMARKET_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"PARTSMARKET_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PARTSMARKET_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PARTSMARKET_DB_DSN"`
	Driver string `envconfig:"PARTSMARKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PARTSMARKET_DB_HOST"`
	LegacyPort     int    `envconfig:"PARTSMARKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PARTSMARKET_DB_USER"`
	LegacyPassword string `envconfig:"PARTSMARKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"PARTSMARKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"PARTSMARKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PARTSMARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PARTSMARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PARTSMARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PARTSMARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PARTSMARKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PARTSMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"PARTSMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"PARTSMARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PARTSMARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PARTSMARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PARTSMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PARTSMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PARTSMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PARTSMARKET_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PARTSMARKET_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PARTSMARKET_JWT_EXPIRATION_MINUTES" required:"true"`
}

// Expiration returns the access token TTL configured in minutes.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PaymentsConfig struct {
	GatewayBaseURL     string        `envconfig:"PARTSMARKET_PAYMENTS_GATEWAY_URL"`
	GatewayAPIKey      string        `envconfig:"PARTSMARKET_PAYMENTS_GATEWAY_API_KEY"`
	GatewayTimeout     time.Duration `envconfig:"PARTSMARKET_PAYMENTS_GATEWAY_TIMEOUT" default:"10s"`
	GatewayMaxAttempts int           `envconfig:"PARTSMARKET_PAYMENTS_GATEWAY_MAX_ATTEMPTS" default:"3"`
}

type OrdersConfig struct {
	NumberMaxAttempts int `envconfig:"PARTSMARKET_ORDERS_NUMBER_MAX_ATTEMPTS" default:"1"`
}

type RateLimitConfig struct {
	Enabled      bool          `envconfig:"PARTSMARKET_RATE_LIMIT_ENABLED" default:"true"`
	Window       time.Duration `envconfig:"PARTSMARKET_RATE_LIMIT_WINDOW" default:"1m"`
	RequestLimit int64         `envconfig:"PARTSMARKET_RATE_LIMIT_REQUESTS" default:"120"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PARTSMARKET_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PARTSMARKET_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PARTSMARKET_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
