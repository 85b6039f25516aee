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

// GetIdentity handles GET /api/v1/identities/{id}.
func (h *Handler) GetIdentity(w http.ResponseWriter, r *http.Request) {
	identity, err := h.services.Identities.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// UpdateIdentity handles PATCH /api/v1/identities/{id}.
func (h *Handler) UpdateIdentity(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateIdentityRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	identity, err := h.services.Identities.Update(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// DeactivateIdentity handles POST /api/v1/identities/{id}/deactivate.
func (h *Handler) DeactivateIdentity(w http.ResponseWriter, r *http.Request) {
	err := h.services.Identities.Deactivate(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// DeleteIdentity handles DELETE /api/v1/identities/{id}.
func (h *Handler) DeleteIdentity(w http.ResponseWriter, r *http.Request) {
	err := h.services.Identities.Delete(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
