// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full application configuration.
type Config struct {
	App      App
	Database Database
	Redis    Redis
	JWT      JWT
	CORS     CORS
}

// App holds process-level settings.
type App struct {
	Name            string        `env:"APP_NAME" envDefault:"apikit"`
	Env             string        `env:"APP_ENV" envDefault:"development"`
	Port            string        `env:"PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	StaticDir       string        `env:"STATIC_DIR"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// IsProduction reports whether the app runs in production mode.
func (a App) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// Database holds PostgreSQL settings.
type Database struct {
	URL            string        `env:"DATABASE_URL,required"`
	MaxConns       int32         `env:"DB_MAX_CONNS" envDefault:"25"`
	MinConns       int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	MaxConnIdle    time.Duration `env:"DB_MAX_CONN_IDLE" envDefault:"30m"`
	MigrateOnStart bool          `env:"DB_MIGRATE_ON_START" envDefault:"true"`
	MigrationTable string        `env:"DB_MIGRATION_TABLE" envDefault:"schema_migrations"`

	// Transaction settings; isolation uses PostgreSQL's spelling.
	TxIsolation      string        `env:"DB_TX_ISOLATION" envDefault:"read committed"`
	StatementTimeout time.Duration `env:"DB_STATEMENT_TIMEOUT" envDefault:"30s"`
}

// Redis holds token store settings.
type Redis struct {
	URL           string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	PoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	KeyPrefix     string        `env:"REDIS_KEY_PREFIX" envDefault:"auth:token"`
}

// JWT holds token signing settings.
type JWT struct {
	Secret      string        `env:"JWT_SECRET,required"`
	Issuer      string        `env:"JWT_ISSUER" envDefault:"apikit"`
	TTL         time.Duration `env:"JWT_TTL" envDefault:"24h"`
	RememberTTL time.Duration `env:"JWT_REMEMBER_TTL" envDefault:"720h"`
}

// CORS holds cross-origin settings.
type CORS struct {
	AllowOrigins     []string      `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
	AllowCredentials bool          `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           time.Duration `env:"CORS_MAX_AGE" envDefault:"60m"`
}

// Load reads an optional .env file and parses the environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWT.Secret) < 16 {
		return errors.New("config: JWT_SECRET must be at least 16 characters")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("config: JWT_TTL must be positive")
	}
	switch c.Database.TxIsolation {
	case "serializable", "repeatable read", "read committed", "read uncommitted":
	default:
		return fmt.Errorf("config: unknown DB_TX_ISOLATION %q", c.Database.TxIsolation)
	}
	if c.Database.StatementTimeout < 0 {
		return errors.New("config: DB_STATEMENT_TIMEOUT must not be negative")
	}
	return nil
}
