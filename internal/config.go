package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	CredentialModeToken   = "token"
	CredentialModeSession = "session"

	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
)

type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Redis         RedisConfig         `mapstructure:"redis"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type AppConfig struct {
	Env string `mapstructure:"env" env:"APP_ENV, default=development"`
}

// IsDevelopment reports whether cookies may be sent over plain HTTP.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" env:"PORT, default=5500"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT, default=5s"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" env:"HTTP_READ_TIMEOUT, default=15s"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" env:"HTTP_IDLE_TIMEOUT, default=60s"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" env:"HTTP_WRITE_TIMEOUT, default=15s"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" env:"DB_MAX_OPEN_CONNS, default=10"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" env:"DB_MAX_IDLE_CONNS, default=5"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME, default=30m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME, default=5m"`
	Source          string        `mapstructure:"source" env:"DATABASE_URL"`
}

type SecurityConfig struct {
	CredentialMode string        `mapstructure:"credential_mode" env:"CREDENTIAL_MODE, default=token"`
	SessionStore   string        `mapstructure:"session_store" env:"SESSION_STORE, default=postgres"`
	TokenSecret    string        `mapstructure:"token_secret" env:"ACCESS_TOKEN_SECRET"`
	FlashSecret    string        `mapstructure:"flash_secret" env:"FLASH_SECRET"`
	CredentialTTL  time.Duration `mapstructure:"credential_ttl" env:"CREDENTIAL_TTL, default=1h"`
	BCryptCost     int           `mapstructure:"bcrypt_cost" env:"BCRYPT_COST, default=10"`
}

type RedisConfig struct {
	Addr    string        `mapstructure:"addr" env:"REDIS_ADDR, default=localhost:6379"`
	DB      int           `mapstructure:"db" env:"REDIS_DB, default=0"`
	Timeout time.Duration `mapstructure:"timeout" env:"REDIS_TIMEOUT, default=5s"`
}

type RateLimitConfig struct {
	LoginPerMinute    int `mapstructure:"login_per_minute" env:"RATE_LIMIT_LOGIN, default=10"`
	RegisterPerMinute int `mapstructure:"register_per_minute" env:"RATE_LIMIT_REGISTER, default=5"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" env:"METRICS_ENABLED, default=true"`
	Path    string `mapstructure:"path" env:"METRICS_PATH, default=/metrics"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" env:"LOG_LEVEL, default=info"`
	Format string `mapstructure:"format" env:"LOG_FORMAT, default=json"`
}

// LoadConfigFromEnv builds the configuration for container deployments where no config file is mounted.
func LoadConfigFromEnv(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration from environment: %w", err)
	}
	return &cfg, nil
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if c.Security.CredentialMode == CredentialModeSession && c.Security.SessionStore == SessionStoreRedis && c.Redis.Addr == "" {
		errs = append(errs, "redis config: addr is required for the redis session store")
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	switch c.CredentialMode {
	case CredentialModeToken:
		if len(c.TokenSecret) < 32 {
			return errors.New("token_secret must be at least 32 characters")
		}
	case CredentialModeSession:
		if c.SessionStore != SessionStorePostgres && c.SessionStore != SessionStoreRedis {
			return fmt.Errorf("unknown session_store %q", c.SessionStore)
		}
	default:
		return fmt.Errorf("unknown credential_mode %q", c.CredentialMode)
	}
	if len(c.FlashSecret) < 32 {
		return errors.New("flash_secret must be at least 32 characters")
	}
	if c.CredentialTTL <= 0 {
		return errors.New("credential_ttl must be positive")
	}
	if c.BCryptCost < 10 || c.BCryptCost > 15 {
		return errors.New("bcrypt_cost must be between 10 and 15")
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q", c.Level)
	}
	switch c.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
