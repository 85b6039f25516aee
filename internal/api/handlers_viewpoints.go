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

// CreateViewpoint handles POST /api/v1/buildings/{id}/viewpoints.
func (h *Handler) CreateViewpoint(w http.ResponseWriter, r *http.Request) {
	var req service.CreateViewpointRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	viewpoint, err := h.services.Viewpoints.Create(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewpoint)
}

// GetViewpoint handles GET /api/v1/viewpoints/{id}.
func (h *Handler) GetViewpoint(w http.ResponseWriter, r *http.Request) {
	viewpoint, err := h.services.Viewpoints.Get(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewpoint)
}

// ListViewpoints handles GET /api/v1/buildings/{id}/viewpoints.
func (h *Handler) ListViewpoints(w http.ResponseWriter, r *http.Request) {
	viewpoints, err := h.services.Viewpoints.List(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewpoints)
}

// UpdateViewpoint handles PATCH /api/v1/viewpoints/{id}.
func (h *Handler) UpdateViewpoint(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateViewpointRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	viewpoint, err := h.services.Viewpoints.Update(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewpoint)
}

// DeleteViewpoint handles DELETE /api/v1/viewpoints/{id}.
func (h *Handler) DeleteViewpoint(w http.ResponseWriter, r *http.Request) {
	err := h.services.Viewpoints.Delete(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// AddOwner handles PUT /api/v1/viewpoints/{id}/owners/{identityID}.
func (h *Handler) AddOwner(w http.ResponseWriter, r *http.Request) {
	err := h.services.Viewpoints.AddOwner(r.Context(), auth.IdentityFrom(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "identityID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// RemoveOwner handles DELETE /api/v1/viewpoints/{id}/owners/{identityID}.
// The response reports whether the removal deleted the viewpoint outright.
func (h *Handler) RemoveOwner(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.services.Viewpoints.RemoveOwner(r.Context(), auth.IdentityFrom(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "identityID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"viewpoint_deleted": deleted})
}
