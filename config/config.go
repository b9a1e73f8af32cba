// Package config loads process settings from the environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"github.com/coreybb/dietlog/datastore"
)

type Config struct {
	Port string `env:"PORT,default=3333"`

	DatabaseDriver  string        `env:"DB_DRIVER,default=postgres"`
	DatabaseURL     string        `env:"DB_CONNECTION_STRING,default=user=postgres password=password dbname=dietlog host=localhost port=5432 sslmode=disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=25"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=5m"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`

	SessionCookieName   string        `env:"SESSION_COOKIE_NAME,default=sessionId"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE,default=false"`
	SessionTTL          time.Duration `env:"SESSION_TTL,default=720h"`

	LoginRatePerSecond float64 `env:"LOGIN_RATE_PER_SECOND,default=1"`
	LoginRateBurst     int     `env:"LOGIN_RATE_BURST,default=5"`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT,default=60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=15s"`
}

// Load reads envFile when it exists and then decodes the environment.
// Variables already present in the environment take precedence over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("failed to decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case datastore.DriverPostgres, datastore.DriverSQLite, datastore.DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DatabaseDriver)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat)
	}
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.SessionCookieName == "" {
		return errors.New("SESSION_COOKIE_NAME must not be empty")
	}
	if c.SessionTTL <= 0 || c.RequestTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return errors.New("SESSION_TTL, REQUEST_TIMEOUT and SHUTDOWN_TIMEOUT must be positive")
	}
	if c.LoginRatePerSecond <= 0 || c.LoginRateBurst <= 0 {
		return errors.New("LOGIN_RATE_PER_SECOND and LOGIN_RATE_BURST must be positive")
	}
	return nil
}

// Pool returns the connection pool settings for the datastore.
func (c Config) Pool() datastore.PoolConfig {
	return datastore.PoolConfig{
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}
