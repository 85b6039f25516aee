// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/technoborsch/easyview/internal/auth"
	"github.com/technoborsch/easyview/internal/service"
	"github.com/technoborsch/easyview/internal/validation"
)

// CreateBuilding handles POST /api/v1/projects/{id}/buildings.
func (h *Handler) CreateBuilding(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBuildingRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	building, err := h.services.Buildings.Create(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, building)
}

// GetBuilding handles GET /api/v1/buildings/{id}.
func (h *Handler) GetBuilding(w http.ResponseWriter, r *http.Request) {
	building, err := h.services.Buildings.Get(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, building)
}

// UpdateBuilding handles PATCH /api/v1/buildings/{id}.
func (h *Handler) UpdateBuilding(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateBuildingRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	building, err := h.services.Buildings.Update(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, building)
}

// DeleteBuilding handles DELETE /api/v1/buildings/{id}.
func (h *Handler) DeleteBuilding(w http.ResponseWriter, r *http.Request) {
	err := h.services.Buildings.Delete(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
