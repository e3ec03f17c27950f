// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded the configuration is read-only and handed to components through
their constructors. Nothing reads the environment after startup.
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Mail drivers.
const (
	MailSMTP = "smtp"
	MailLog  = "log"
)

// minSigningKeyLength mirrors sec.MinSigningKeyLength; config must not import sec.
const minSigningKeyLength = 32

// # Configuration Schema

// Config holds all runtime configuration for the Passport API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"4000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// MetricsAddr is the internal listener for /metrics (e.g. "127.0.0.1:9100").
	// Empty disables it. Never exposed on the public router.
	MetricsAddr string `env:"METRICS_ADDR"`

	// Account storage: "postgres" or "memory" (local development only)
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Identity cache (Redis). Empty disables the cache.
	RedisURL         string        `env:"REDIS_URL"`
	IdentityCacheTTL time.Duration `env:"IDENTITY_CACHE_TTL" envDefault:"1m"`

	// Password reset links point at the web client.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// Cross-Origin Resource Sharing
	AllowedOrigins []string `env:"FRONTEND_URLS" envSeparator:","`

	Credentials Credentials
	Mail        Mail
}

// Credentials is the security policy shared by the hasher, the token codec
// and the reset flow.
type Credentials struct {
	// HashCost is the bcrypt cost factor (security/speed tradeoff).
	HashCost int `env:"HASH_COST" envDefault:"10"`

	// SigningKey is the HMAC key for session tokens.
	SigningKey string `env:"JWT_SECRET,required,unset"`

	// SessionTTL is the validity window of a session token.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// ResetTTL is the validity window of a password reset token.
	ResetTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"10m"`
}

// Mail configures outbound delivery of reset links.
type Mail struct {
	Driver   string `env:"EMAIL_DRIVER"   envDefault:"smtp"`
	Host     string `env:"EMAIL_HOST"     envDefault:"smtp.gmail.com"`
	Port     int    `env:"EMAIL_PORT"     envDefault:"587"`
	Username string `env:"EMAIL_USER"`
	Password string `env:"EMAIL_PASSWORD,unset"`
	From     string `env:"EMAIL_FROM"     envDefault:"noreply@passport.app"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE_DRIVER=postgres"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, c.StorageDriver))
	}

	if c.Credentials.HashCost < bcrypt.MinCost || c.Credentials.HashCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("HASH_COST must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if len(c.Credentials.SigningKey) < minSigningKeyLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSigningKeyLength))
	}
	if c.Credentials.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Credentials.ResetTTL <= 0 {
		errs = append(errs, errors.New("RESET_TOKEN_TTL must be positive"))
	}
	if c.RedisURL != "" && c.IdentityCacheTTL <= 0 {
		errs = append(errs, errors.New("IDENTITY_CACHE_TTL must be positive when REDIS_URL is set"))
	}

	switch c.Mail.Driver {
	case MailSMTP:
		if c.Mail.Host == "" {
			errs = append(errs, errors.New("EMAIL_HOST is required when EMAIL_DRIVER=smtp"))
		}
	case MailLog:
	default:
		errs = append(errs, fmt.Errorf("EMAIL_DRIVER must be %q or %q, got %q", MailSMTP, MailLog, c.Mail.Driver))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// MetricsEnabled reports whether the internal metrics listener is configured.
func (c *Config) MetricsEnabled() bool {
	return c.MetricsAddr != ""
}

// CacheEnabled reports whether the redis identity cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}
