// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = "test-secret-that-is-long-enough-for-hs256"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing jwt secret", func(c *Config) { c.Security.JWTSecret = "" }, "JWT_SECRET"},
		{"short jwt secret", func(c *Config) { c.Security.JWTSecret = "too-short" }, "32 characters"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"bad environment", func(c *Config) { c.Server.Environment = "staging" }, "ENVIRONMENT"},
		{"refresh ttl below access ttl", func(c *Config) {
			c.Security.AccessTokenTTL = time.Hour
			c.Security.RefreshTokenTTL = time.Minute
		}, "REFRESH_TOKEN_TTL"},
		{"bcrypt cost too low", func(c *Config) { c.Security.BcryptCost = 4 }, "BCRYPT_COST"},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQS"},
		{"rate limit disabled skips budget check", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, ""},
		{"memory store in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Store.Path = ""
		}, "STORE_PATH"},
		{"gc ratio out of range", func(c *Config) { c.Store.GCDiscardRatio = 1.5 }, "STORE_GC_RATIO"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-that-is-long-enough-for-hs256")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("STORE_PATH", t.TempDir())
	t.Setenv("CORS_ORIGINS", "https://viewer.example.com, https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[0] != "https://viewer.example.com" {
		t.Errorf("cors origins = %v, want two trimmed entries", cfg.Security.CORSOrigins)
	}
	// Unset fields keep their defaults.
	if cfg.Security.AccessTokenTTL != 15*time.Minute {
		t.Errorf("access token ttl = %v, want default 15m", cfg.Security.AccessTokenTTL)
	}
}

func TestLoadIgnoresUnmappedEnvVars(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-that-is-long-enough-for-hs256")
	t.Setenv("STORE_PATH", t.TempDir())
	t.Setenv("SERVER", "garbage-that-should-be-dropped")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want default 0.0.0.0", cfg.Server.Host)
	}
}

func TestAddr(t *testing.T) {
	c := ServerConfig{Host: "127.0.0.1", Port: 8640}
	if got := c.Addr(); got != "127.0.0.1:8640" {
		t.Errorf("Addr() = %q, want 127.0.0.1:8640", got)
	}
}
