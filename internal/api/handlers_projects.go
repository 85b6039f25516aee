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

// CreateProject handles POST /api/v1/projects.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProjectRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := h.services.Projects.Create(r.Context(), auth.IdentityFrom(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// GetProject handles GET /api/v1/projects/{id}.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.services.Projects.Get(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// UpdateProject handles PATCH /api/v1/projects/{id}.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProjectRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := h.services.Projects.Update(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// DeleteProject handles DELETE /api/v1/projects/{id}.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	err := h.services.Projects.Delete(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// AddParticipant handles PUT /api/v1/projects/{id}/participants/{identityID}.
func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	err := h.services.Projects.AddParticipant(r.Context(), auth.IdentityFrom(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "identityID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// RemoveParticipant handles DELETE /api/v1/projects/{id}/participants/{identityID}.
func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	err := h.services.Projects.RemoveParticipant(r.Context(), auth.IdentityFrom(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "identityID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
