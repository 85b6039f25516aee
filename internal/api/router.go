// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

// Package api provides HTTP routing and handlers using the chi router.
// Handlers do transport only: decode and validate the request, call the
// service layer, render the result. Every policy decision lives below.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/technoborsch/easyview/internal/auth"
	"github.com/technoborsch/easyview/internal/config"
	"github.com/technoborsch/easyview/internal/middleware"
	"github.com/technoborsch/easyview/internal/service"
)

// Router wires handlers, authentication and rate limits into one tree.
type Router struct {
	handler       *Handler
	authenticator *auth.Authenticator
	cfg           *config.Config
}

// NewRouter creates the API router.
func NewRouter(services *service.Services, authenticator *auth.Authenticator, cfg *config.Config, health HealthChecker) *Router {
	return &Router{
		handler:       NewHandler(services, health),
		authenticator: authenticator,
		cfg:           cfg,
	}
}

// Setup builds the route tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestLogger)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", rt.handler.HealthLive)
		r.Get("/ready", rt.handler.HealthReady)
	})

	// Auth endpoints carry the strictest rate limits: login and register
	// are the brute-force surface.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		if !rt.cfg.Security.RateLimitDisabled {
			r.Use(httprate.LimitByIP(rt.cfg.Security.RateLimitReqs, rt.cfg.Security.RateLimitWindow))
		}

		loginLimit := func(next http.Handler) http.Handler { return next }
		if !rt.cfg.Security.RateLimitDisabled {
			loginLimit = httprate.LimitByIP(rt.cfg.Security.LoginAttempts, rt.cfg.Security.LoginWindow)
		}

		r.With(loginLimit).Post("/register", rt.handler.Register)
		r.With(loginLimit).Post("/login", rt.handler.Login)
		r.With(rt.authenticator.RequireRefresh).Post("/refresh", rt.handler.Refresh)
		r.With(rt.authenticator.RequireAuth).Post("/logout", rt.handler.Logout)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		if !rt.cfg.Security.RateLimitDisabled {
			r.Use(httprate.LimitByIP(rt.cfg.Security.RateLimitReqs, rt.cfg.Security.RateLimitWindow))
		}

		// Reads admit anonymous callers; visibility is decided per entity.
		r.Group(func(r chi.Router) {
			r.Use(rt.authenticator.OptionalAuth)

			r.Get("/projects/{id}", rt.handler.GetProject)
			r.Get("/buildings/{id}", rt.handler.GetBuilding)
			r.Get("/buildings/{id}/viewpoints", rt.handler.ListViewpoints)
			r.Get("/viewpoints/{id}", rt.handler.GetViewpoint)
		})

		// Everything else requires an access credential.
		r.Group(func(r chi.Router) {
			r.Use(rt.authenticator.RequireAuth)

			r.Get("/identities/{id}", rt.handler.GetIdentity)
			r.Patch("/identities/{id}", rt.handler.UpdateIdentity)
			r.Post("/identities/{id}/deactivate", rt.handler.DeactivateIdentity)
			r.Delete("/identities/{id}", rt.handler.DeleteIdentity)

			r.Post("/projects", rt.handler.CreateProject)
			r.Patch("/projects/{id}", rt.handler.UpdateProject)
			r.Delete("/projects/{id}", rt.handler.DeleteProject)
			r.Put("/projects/{id}/participants/{identityID}", rt.handler.AddParticipant)
			r.Delete("/projects/{id}/participants/{identityID}", rt.handler.RemoveParticipant)

			r.Post("/projects/{id}/buildings", rt.handler.CreateBuilding)
			r.Patch("/buildings/{id}", rt.handler.UpdateBuilding)
			r.Delete("/buildings/{id}", rt.handler.DeleteBuilding)

			r.Post("/buildings/{id}/viewpoints", rt.handler.CreateViewpoint)
			r.Patch("/viewpoints/{id}", rt.handler.UpdateViewpoint)
			r.Delete("/viewpoints/{id}", rt.handler.DeleteViewpoint)
			r.Put("/viewpoints/{id}/owners/{identityID}", rt.handler.AddOwner)
			r.Delete("/viewpoints/{id}/owners/{identityID}", rt.handler.RemoveOwner)
		})
	})

	return r
}

// Server builds the http.Server for the configured listen address.
func (rt *Router) Server() *http.Server {
	return &http.Server{
		Addr:              rt.cfg.Server.Addr(),
		Handler:           rt.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
