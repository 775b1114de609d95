package app

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/joeshaw/envdecode"
)

// Refresh token backends.
const (
	RefreshStoreMemory = "memory"
	RefreshStoreSQLite = "sqlite"
	RefreshStoreRedis  = "redis"
)

// Secret comparison modes.
const (
	SecretHashingPlain  = "plain"
	SecretHashingArgon2 = "argon2"
)

type Config struct {
	// Token issuance. Key, issuer and audience are required; the key must be
	// at least 32 bytes.
	SigningKey       string `env:"AUTH_SIGNING_KEY"`
	Issuer           string `env:"AUTH_ISSUER"`
	Audience         string `env:"AUTH_AUDIENCE"`
	AccessTTLMinutes int    `env:"AUTH_ACCESS_TTL_MINUTES,default=15"`
	RefreshTTLDays   int    `env:"AUTH_REFRESH_TTL_DAYS,default=7"`

	// Refresh token backend: memory, sqlite or redis.
	RefreshStore string `env:"AUTH_REFRESH_STORE,default=memory"`
	DatabaseFile string `env:"AUTH_DATABASE_FILE,default=auth.db"`
	RedisAddr    string `env:"AUTH_REDIS_ADDR,default=localhost:6379"`
	RedisPrefix  string `env:"AUTH_REDIS_PREFIX,default=tokenauth:refresh:"`

	// How seeded secrets are held and compared: plain or argon2.
	SecretHashing string `env:"AUTH_SECRET_HASHING,default=plain"`

	Env                  string        `env:"ENV,default=dev"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	LogFormat            string        `env:"LOG_FORMAT,default=json"`
	Port                 int           `env:"PORT,default=8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD,default=10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL,default=1h"`

	// Per-IP limit on login and refresh.
	RateLimitRequests int           `env:"RATELIMIT_STRICT_REQUESTS,default=5"`
	RateLimitWindow   time.Duration `env:"RATELIMIT_STRICT_WINDOW,default=1m"`
	RateLimitBurst    int           `env:"RATELIMIT_STRICT_BURST,default=5"`

	// LogOutput is not read from the environment. Nil means stdout.
	LogOutput io.Writer
}

// LoadConfig reads the configuration from the environment. It does not
// validate; New does.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}

var (
	ErrMissingSigningKey = errors.New("AUTH_SIGNING_KEY is required")
	ErrMissingIssuer     = errors.New("AUTH_ISSUER is required")
	ErrMissingAudience   = errors.New("AUTH_AUDIENCE is required")
)

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error

	switch {
	case c.SigningKey == "":
		errs = append(errs, ErrMissingSigningKey)
	case len(c.SigningKey) < jwtx.MinKeyLength:
		errs = append(errs, fmt.Errorf("AUTH_SIGNING_KEY: %w", jwtx.ErrKeyTooShort))
	}
	if strings.TrimSpace(c.Issuer) == "" {
		errs = append(errs, ErrMissingIssuer)
	}
	if strings.TrimSpace(c.Audience) == "" {
		errs = append(errs, ErrMissingAudience)
	}
	if c.AccessTTLMinutes <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_ACCESS_TTL_MINUTES must be positive, got %d", c.AccessTTLMinutes))
	}
	if c.RefreshTTLDays <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_REFRESH_TTL_DAYS must be positive, got %d", c.RefreshTTLDays))
	}

	switch c.RefreshStore {
	case RefreshStoreMemory:
	case RefreshStoreSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_FILE is required for the sqlite refresh store"))
		}
	case RefreshStoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("AUTH_REDIS_ADDR is required for the redis refresh store"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_REFRESH_STORE: unknown backend %q", c.RefreshStore))
	}

	switch c.SecretHashing {
	case SecretHashingPlain, SecretHashingArgon2:
	default:
		errs = append(errs, fmt.Errorf("AUTH_SECRET_HASHING: unknown mode %q", c.SecretHashing))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATELIMIT_STRICT_* values must be positive"))
	}

	return errors.Join(errs...)
}

func (c Config) accessTTL() time.Duration  { return time.Duration(c.AccessTTLMinutes) * time.Minute }
func (c Config) refreshTTL() time.Duration { return time.Duration(c.RefreshTTLDays) * 24 * time.Hour }

func (c Config) strictLimit() httpx.RateLimitConfig {
	return httpx.RateLimitConfig{
		RequestsPerWindow: c.RateLimitRequests,
		Window:            c.RateLimitWindow,
		Burst:             c.RateLimitBurst,
	}
}
