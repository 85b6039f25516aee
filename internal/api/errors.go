// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package api

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/technoborsch/easyview/internal/apperr"
	"github.com/technoborsch/easyview/internal/logging"
	"github.com/technoborsch/easyview/internal/middleware"
)

// errorResponse is the single error envelope. Only the taxonomy message is
// exposed; internal causes stay in the log.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON renders a success payload.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps an error to its fixed status and single-sentence message.
// Unclassified and Fatal errors are logged with the request id and leave
// the process as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	if status == http.StatusInternalServerError {
		logging.Error().Err(err).
			Str("request_id", middleware.RequestIDFrom(r.Context())).
			Str("path", r.URL.Path).
			Msg("Request failed")
	}
	writeJSON(w, status, errorResponse{Error: apperr.Message(err)})
}
