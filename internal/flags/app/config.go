package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/flagtree/internal/flags/cache"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env                 string        `env:"ENV" envDefault:"dev"`                      // Environment (dev, staging, prod)
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info"`               // debug, info, warn, error
	LogFormat           string        `env:"LOG_FORMAT" envDefault:"json"`              // json, text
	Port                int           `env:"PORT" envDefault:"8080"`                    // HTTP server port
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`    // Graceful shutdown timeout
	DatabaseFile        string        `env:"FLAGS_DATABASE_FILE" envDefault:"flags.db"` // SQLite file, or ":memory:"
	MaxDepth            int           `env:"FLAGS_MAX_DEPTH" envDefault:"32"`           // Bound on ancestor walks
	SeedSystemFlags     bool          `env:"FLAGS_SEED_SYSTEM_FLAGS" envDefault:"true"` // Create the service's own flags on startup
	AuditInterval       time.Duration `env:"FLAGS_AUDIT_INTERVAL" envDefault:"10m"`     // Hierarchy audit period
	UsageBuffer         int           `env:"FLAGS_USAGE_BUFFER" envDefault:"1024"`      // Usage event queue length

	CacheDriver         string        `env:"FLAGS_CACHE_DRIVER" envDefault:"memory"` // memory, redis, none
	CacheTTL            time.Duration `env:"FLAGS_CACHE_TTL" envDefault:"5s"`
	RedisURL            string        `env:"REDIS_URL"`                              // Required when CacheDriver is redis
	RedisConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
	RedisRetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RedisRetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"1s"`

	Issuer      string        `env:"AUTH_ISSUER" envDefault:"bartab-auth"` // Expected iss claim; empty disables the check
	Audience    []string      `env:"AUTH_AUDIENCE" envSeparator:","`       // Expected aud values; empty disables the check
	JWKSURL     string        `env:"AUTH_JWKS_URL,required,notEmpty"`      // Auth service JWKS URL or local file
	JWKSRefresh time.Duration `env:"AUTH_JWKS_REFRESH" envDefault:"5m"`    // Key refresh period
}

// LoadConfig reads .env (when present) and then the process environment.
func LoadConfig() (Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that env tags cannot express.
func (c Config) Validate() error {
	var errs []error

	switch c.CacheDriver {
	case cache.DriverMemory, cache.DriverNone:
	case cache.DriverRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when FLAGS_CACHE_DRIVER=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", cache.ErrUnknownDriver, c.CacheDriver))
	}

	if c.MaxDepth < 1 {
		errs = append(errs, errors.New("FLAGS_MAX_DEPTH must be at least 1"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.JWKSRefresh <= 0 {
		errs = append(errs, errors.New("AUTH_JWKS_REFRESH must be positive"))
	}

	return errors.Join(errs...)
}
