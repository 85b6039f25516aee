// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package api

import (
	"context"
	"net/http"

	"github.com/technoborsch/easyview/internal/service"
)

// HealthChecker reports readiness of the backing store.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// Handler holds the services behind the HTTP surface.
type Handler struct {
	services *service.Services
	health   HealthChecker
}

// NewHandler creates the handler set.
func NewHandler(services *service.Services, health HealthChecker) *Handler {
	return &Handler{services: services, health: health}
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady reports readiness, checking the backing store.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Healthy(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
