// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

// Package main is the entry point for the EasyView server.
//
// EasyView is a self-hosted backend for publishing engineering building
// models and sharing camera viewpoints inside them. It serves a REST API
// for identities, projects, buildings and viewpoints, with JWT-based
// authentication and per-project access control.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables > config.yaml > defaults (Koanf v2)
//  2. Storage: a single BadgerDB backing entity records and credentials
//  3. Token service: HS256 access/refresh tokens with a revocation blacklist
//  4. Audit bus: in-process Watermill pub/sub for domain audit events
//  5. Domain services: authorization engine, ownership cascade manager
//  6. HTTP server: chi router under a suture supervisor tree
//
// # Configuration
//
// Required settings:
//   - JWT_SECRET: 32+ character secret for token signing
//
// Common settings:
//   - SERVER_HOST, SERVER_PORT (default 0.0.0.0:8640)
//   - STORE_PATH: BadgerDB directory (default /data/easyview)
//   - LOGGING_LEVEL, LOGGING_FORMAT (json or console)
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests, the audit bus closes, and the database syncs to disk.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/technoborsch/easyview/internal/api"
	"github.com/technoborsch/easyview/internal/auth"
	"github.com/technoborsch/easyview/internal/authz"
	"github.com/technoborsch/easyview/internal/cascade"
	"github.com/technoborsch/easyview/internal/config"
	"github.com/technoborsch/easyview/internal/credstore"
	"github.com/technoborsch/easyview/internal/events"
	"github.com/technoborsch/easyview/internal/logging"
	"github.com/technoborsch/easyview/internal/service"
	"github.com/technoborsch/easyview/internal/store"
	"github.com/technoborsch/easyview/internal/supervisor"
	"github.com/technoborsch/easyview/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("store_path", cfg.Store.Path).
		Str("environment", cfg.Server.Environment).
		Msg("Starting EasyView")

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	// Credential records share the entity database under their own key
	// namespace; the breaker keeps a database stall from hanging every
	// authentication attempt.
	creds := credstore.NewBreakerStore(
		credstore.NewBadgerStore(st.DB()),
		credstore.DefaultBreakerConfig(),
	)

	tokens, err := token.NewService(&cfg.Security, creds)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize token service")
	}

	bus := events.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing audit bus")
		}
	}()

	engine := authz.NewEngine()
	manager := cascade.NewManager(st, tokens, bus)
	lockout := auth.NewLockout(cfg.Security.LoginAttempts, cfg.Security.LoginWindow)
	defer lockout.Close()
	authenticator := auth.NewAuthenticator(tokens, st)

	services := &service.Services{
		Identities: service.NewIdentityService(st, tokens, engine, manager, lockout, bus, cfg.Security.BcryptCost),
		Projects:   service.NewProjectService(st, engine, manager),
		Buildings:  service.NewBuildingService(st, engine, manager),
		Viewpoints: service.NewViewpointService(st, engine, manager),
	}

	router := api.NewRouter(services, authenticator, cfg, st)
	server := router.Server()

	tree := supervisor.NewTree(supervisor.DefaultTreeConfig())
	tree.AddDataService(supervisor.NewGCService(st, cfg.Store.GCInterval, cfg.Store.GCDiscardRatio))
	tree.AddDataService(events.NewAuditWriter(bus))
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.Timeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Server listening")

	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor shutdown error")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	logging.Info().Msg("Shutdown complete")
}
