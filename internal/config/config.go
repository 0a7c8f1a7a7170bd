// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads Minispace settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env        string `env:"MINISPACE_ENV" envDefault:"development" validate:"oneof=development production"`
	ServerHost string `env:"MINISPACE_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"MINISPACE_SERVER_PORT" envDefault:"8080" validate:"min=1,max=65535"`
	LogLevel   string `env:"MINISPACE_LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// Tenant resolution
	BaseDomain    string `env:"MINISPACE_BASE_DOMAIN" envDefault:"minispace.dev" validate:"required,hostname"`
	DevBaseDomain string `env:"MINISPACE_DEV_BASE_DOMAIN" envDefault:"localhost" validate:"required,hostname"`

	// Backend toggles
	BackendEnabled bool `env:"MINISPACE_BACKEND_ENABLED" envDefault:"true"`
	DemoMode       bool `env:"MINISPACE_DEMO_MODE" envDefault:"false"` // Always serve demo content

	// Database configuration
	DBDriver string `env:"MINISPACE_DB_DRIVER" envDefault:"sqlite" validate:"oneof=sqlite mysql"`
	DBPath   string `env:"MINISPACE_DB_PATH" envDefault:"./data/minispace.db"`
	DBDSN    string `env:"MINISPACE_DB_DSN" validate:"required_if=DBDriver mysql"` // MySQL DSN
	DoSeed   bool   `env:"MINISPACE_DO_SEED" envDefault:"false"`                   // Seed demo tenant on startup

	// Themes
	ThemesDir    string `env:"MINISPACE_THEMES_DIR" envDefault:"./custom/themes"`
	DefaultTheme string `env:"MINISPACE_DEFAULT_THEME" envDefault:"altay" validate:"required"`

	// Cache configuration
	RedisURL     string `env:"MINISPACE_REDIS_URL"`                              // Optional Redis URL for distributed caching
	CachePrefix  string `env:"MINISPACE_CACHE_PREFIX" envDefault:"minispace:"`   // Redis key prefix
	CacheTTL     int    `env:"MINISPACE_CACHE_TTL" envDefault:"0" validate:"min=0"` // Seconds, 0 disables tenant caching
	CacheMaxSize int    `env:"MINISPACE_CACHE_MAX_SIZE" envDefault:"10000" validate:"min=0"`

	// Rate limiting per client IP
	RateLimitRPS   float64 `env:"MINISPACE_RATE_LIMIT_RPS" envDefault:"20" validate:"gte=0"`
	RateLimitBurst int     `env:"MINISPACE_RATE_LIMIT_BURST" envDefault:"40" validate:"gte=0"`

	// Backend circuit breaker
	BreakerMaxFailures uint32 `env:"MINISPACE_BREAKER_MAX_FAILURES" envDefault:"5" validate:"min=1"`
	BreakerOpenSeconds int    `env:"MINISPACE_BREAKER_OPEN_SECONDS" envDefault:"30" validate:"min=1"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheEnabled reports whether tenant data should be cached.
func (c Config) CacheEnabled() bool {
	return c.CacheTTL > 0
}

// CacheDuration returns the tenant cache TTL.
func (c Config) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// BreakerTimeout returns how long the backend breaker stays open.
func (c Config) BreakerTimeout() time.Duration {
	return time.Duration(c.BreakerOpenSeconds) * time.Second
}

// BaseDomains returns the domains tenant subdomains hang off. The
// development domain is only honoured outside production.
func (c Config) BaseDomains() []string {
	domains := []string{strings.ToLower(c.BaseDomain)}
	if c.IsDevelopment() && !strings.EqualFold(c.DevBaseDomain, c.BaseDomain) {
		domains = append(domains, strings.ToLower(c.DevBaseDomain))
	}
	return domains
}

// Load parses environment variables and returns a validated Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating config: %w", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			messages = append(messages, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		messages = append(messages, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}
