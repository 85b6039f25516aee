// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

// Package config loads and validates application configuration.
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables > YAML config file > defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Store    StoreConfig    `koanf:"store"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SecurityConfig holds credential and rate-limit settings.
type SecurityConfig struct {
	// JWTSecret signs access and refresh tokens. 32+ characters required.
	JWTSecret string `koanf:"jwt_secret"`

	// AccessTokenTTL is the access token lifetime.
	AccessTokenTTL time.Duration `koanf:"access_token_ttl"`

	// RefreshTokenTTL is the refresh token lifetime. Also bounds the
	// credential store's active-refresh record expiry.
	RefreshTokenTTL time.Duration `koanf:"refresh_token_ttl"`

	// BcryptCost is the password hashing cost factor.
	BcryptCost int `koanf:"bcrypt_cost"`

	// RateLimitReqs is the request budget per window per client IP.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limiting window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// RateLimitDisabled disables rate limiting (CI/CD only).
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`

	// LoginAttempts is the per-account login attempt budget per LoginWindow.
	LoginAttempts int `koanf:"login_attempts"`

	// LoginWindow is the login throttle window.
	LoginWindow time.Duration `koanf:"login_window"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// StoreConfig holds BadgerDB settings. One database backs both the entity
// record store and the credential store, under separate key namespaces.
type StoreConfig struct {
	// Path is the on-disk database directory. Empty means in-memory,
	// which is only appropriate for tests.
	Path string `koanf:"path"`

	// GCInterval is how often value-log garbage collection runs.
	GCInterval time.Duration `koanf:"gc_interval"`

	// GCDiscardRatio is the badger value-log rewrite threshold.
	GCDiscardRatio float64 `koanf:"gc_discard_ratio"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8640,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			AccessTokenTTL:    15 * time.Minute,
			RefreshTokenTTL:   30 * 24 * time.Hour,
			BcryptCost:        12,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			LoginAttempts:     5,
			LoginWindow:       5 * time.Minute,
			CORSOrigins:       []string{"*"},
		},
		Store: StoreConfig{
			Path:           "/data/easyview",
			GCInterval:     10 * time.Minute,
			GCDiscardRatio: 0.5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
