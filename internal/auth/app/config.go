package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/authgate/pkg/httpx"
	"github.com/aussiebroadwan/authgate/pkg/jwtx"
	"github.com/aussiebroadwan/authgate/pkg/siam"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

type Config struct {
	Env                 string        `env:"ENV" envDefault:"dev" yaml:"env"`
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info" yaml:"log_level"`
	LogFormat           string        `env:"LOG_FORMAT" envDefault:"json" yaml:"log_format"`
	Port                int           `env:"PORT" envDefault:"8080" yaml:"port"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s" yaml:"shutdown_grace_period"`

	// ConfigFile is an optional YAML file applied on top of the environment.
	ConfigFile string `env:"AUTH_CONFIG_FILE" yaml:"-"`

	Tokens    TokensConfig    `yaml:"tokens"`
	Siam      SiamConfig      `yaml:"siam"`
	Store     StoreConfig     `yaml:"store"`
	SelfCheck SelfCheckConfig `yaml:"selfcheck"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envPrefix:"AUTH_RATELIMIT_"`
}

type TokensConfig struct {
	AccessSecret    string        `env:"AUTH_ACCESS_SECRET" yaml:"access_secret"`
	AccessLifetime  time.Duration `env:"AUTH_ACCESS_LIFETIME" envDefault:"10m" yaml:"access_lifetime"`
	RefreshSecret   string        `env:"AUTH_REFRESH_SECRET" yaml:"refresh_secret"`
	RefreshLifetime time.Duration `env:"AUTH_REFRESH_LIFETIME" envDefault:"12h" yaml:"refresh_lifetime"`
	Algorithm       string        `env:"AUTH_JWT_ALGORITHM" envDefault:"HS256" yaml:"algorithm"`

	// MaxSessionAge bounds refresh token renewal, measured from the login.
	MaxSessionAge time.Duration `env:"AUTH_MAX_SESSION_AGE" envDefault:"168h" yaml:"max_session_age"`
}

func (c TokensConfig) Access() jwtx.Config {
	return jwtx.Config{Secret: []byte(c.AccessSecret), Lifetime: c.AccessLifetime, Algorithm: c.Algorithm}
}

func (c TokensConfig) Refresh() jwtx.Config {
	return jwtx.Config{Secret: []byte(c.RefreshSecret), Lifetime: c.RefreshLifetime, Algorithm: c.Algorithm}
}

type SiamConfig struct {
	URL            string        `env:"SIAM_URL" yaml:"url"`
	AppID          string        `env:"SIAM_APP_ID" yaml:"app_id"`
	AselectServer  string        `env:"SIAM_A_SELECT_SERVER" yaml:"aselect_server"`
	SharedSecret   string        `env:"SIAM_SHARED_SECRET" yaml:"shared_secret"`
	ConnectTimeout time.Duration `env:"SIAM_CONNECT_TIMEOUT" envDefault:"3050ms" yaml:"connect_timeout"`
	ReadTimeout    time.Duration `env:"SIAM_READ_TIMEOUT" envDefault:"1s" yaml:"read_timeout"`
}

func (c SiamConfig) Identity() siam.Identity {
	return siam.Identity{
		BaseURL:       c.URL,
		AppID:         c.AppID,
		AselectServer: c.AselectServer,
		SharedSecret:  c.SharedSecret,
	}
}

func (c SiamConfig) Timeout() siam.Timeout {
	return siam.Timeout{Connect: c.ConnectTimeout, Read: c.ReadTimeout}
}

type StoreConfig struct {
	Driver       string `env:"AUTH_STORE_DRIVER" envDefault:"sqlite" yaml:"driver"`
	DatabaseFile string `env:"AUTH_DATABASE_FILE" envDefault:"auth.db" yaml:"database_file"`
	DatabaseURL  string `env:"AUTH_DATABASE_URL" yaml:"database_url"`
	MaxConns     int32  `env:"AUTH_DATABASE_MAX_CONNS" envDefault:"10" yaml:"max_conns"`
	BoltFile     string `env:"AUTH_BOLT_FILE" envDefault:"auth.bolt" yaml:"bolt_file"`
}

type SelfCheckConfig struct {
	Enabled  bool   `env:"AUTH_SELFCHECK" envDefault:"true" yaml:"enabled"`
	Callback string `env:"AUTH_SELFCHECK_CALLBACK" envDefault:"http://test" yaml:"callback"`
}

// RateLimitConfig holds the per-IP limit of each route group, e.g.
// AUTH_RATELIMIT_LOGIN_REQUESTS=10 and AUTH_RATELIMIT_LOGIN_WINDOW=1m.
type RateLimitConfig struct {
	Login  Limit `envPrefix:"LOGIN_" yaml:"login"`
	Tokens Limit `envPrefix:"TOKENS_" yaml:"tokens"`
	Admin  Limit `envPrefix:"ADMIN_" yaml:"admin"`
	Health Limit `envPrefix:"HEALTH_" yaml:"health"`
}

type Limit struct {
	Requests int           `env:"REQUESTS" yaml:"requests"`
	Window   time.Duration `env:"WINDOW" yaml:"window"`
	Burst    int           `env:"BURST" yaml:"burst"`
}

func limitOf(c httpx.RateLimitConfig) Limit {
	return Limit{Requests: c.RequestsPerWindow, Window: c.Window, Burst: c.Burst}
}

func (l Limit) rate() httpx.RateLimitConfig {
	return httpx.RateLimitConfig{RequestsPerWindow: l.Requests, Window: l.Window, Burst: l.Burst}
}

// DefaultConfig returns the values env.Parse starts from. Everything with
// an envDefault tag is set by env.Parse itself.
func DefaultConfig() Config {
	return Config{
		RateLimit: RateLimitConfig{
			Login:  limitOf(httpx.StrictLimit),
			Tokens: limitOf(httpx.ModerateLimit),
			Admin:  limitOf(httpx.ModerateLimit),
			Health: limitOf(httpx.LenientLimit),
		},
	}
}

// LoadConfig reads the configuration with ReadConfig and validates all of it.
func LoadConfig() (Config, error) {
	cfg, err := ReadConfig()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// ReadConfig reads an optional .env file, the environment and then the
// optional AUTH_CONFIG_FILE. Nothing is validated; commands that only touch
// the store validate just that section.
func ReadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.ConfigFile != "" {
		if err := cfg.ApplyFile(cfg.ConfigFile, nil); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// Validate checks everything that would otherwise fail at request time.
func (c *Config) Validate() error {
	var errs []error
	req := func(v, name string) {
		if v == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}

	req(c.Siam.URL, "SIAM_URL")
	req(c.Siam.AppID, "SIAM_APP_ID")
	req(c.Siam.AselectServer, "SIAM_A_SELECT_SERVER")
	req(c.Siam.SharedSecret, "SIAM_SHARED_SECRET")
	req(c.Tokens.AccessSecret, "AUTH_ACCESS_SECRET")
	req(c.Tokens.RefreshSecret, "AUTH_REFRESH_SECRET")

	if c.Tokens.AccessSecret != "" && c.Tokens.AccessSecret == c.Tokens.RefreshSecret {
		errs = append(errs, errors.New("AUTH_ACCESS_SECRET and AUTH_REFRESH_SECRET must differ"))
	}
	if c.Tokens.AccessSecret != "" {
		if _, err := jwtx.NewAccessBuilder(c.Tokens.Access()); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Tokens.RefreshSecret != "" {
		if _, err := jwtx.NewRefreshBuilder(c.Tokens.Refresh()); err != nil {
			errs = append(errs, err)
		}
	}
	// A fresh refresh token already spans its lifetime plus the backdated
	// issued-at, so anything shorter rejects the very first renewal.
	if c.Tokens.MaxSessionAge < c.Tokens.RefreshLifetime+jwtx.Backdate {
		errs = append(errs, fmt.Errorf("AUTH_MAX_SESSION_AGE must be at least AUTH_REFRESH_LIFETIME plus %s", jwtx.Backdate))
	}

	if c.Siam.ConnectTimeout < 0 || c.Siam.ReadTimeout < 0 {
		errs = append(errs, errors.New("SIAM timeouts must not be negative"))
	}

	if err := c.Store.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}

	return errors.Join(errs...)
}

func (c StoreConfig) Validate() error {
	var missing string
	switch c.Driver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			missing = "AUTH_DATABASE_FILE"
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			missing = "AUTH_DATABASE_URL"
		}
	case DriverBolt:
		if c.BoltFile == "" {
			missing = "AUTH_BOLT_FILE"
		}
	default:
		return fmt.Errorf("unknown AUTH_STORE_DRIVER %q", c.Driver)
	}
	if missing != "" {
		return fmt.Errorf("%s is required", missing)
	}
	return nil
}
