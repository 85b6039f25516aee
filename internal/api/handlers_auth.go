// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package api

import (
	"net/http"

	"github.com/technoborsch/easyview/internal/auth"
	"github.com/technoborsch/easyview/internal/service"
	"github.com/technoborsch/easyview/internal/validation"
)

// loginResponse carries the identity and its fresh credential pair.
type loginResponse struct {
	Identity interface{}       `json:"identity"`
	Tokens   service.TokenPair `json:"tokens"`
}

// Register handles POST /api/v1/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	identity, err := h.services.Identities.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, identity)
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	identity, pair, err := h.services.Identities.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Identity: identity, Tokens: pair})
}

// Refresh handles POST /api/v1/auth/refresh. The middleware already
// verified the refresh credential; rotation re-verifies under the
// per-identity critical section.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	pair, err := h.services.Identities.Refresh(r.Context(), auth.TokenFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// Logout handles POST /api/v1/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFrom(r.Context())
	if err := h.services.Identities.Logout(r.Context(), identity, auth.TokenFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
