// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantEcho bool
	}{
		{"generates when absent", "", false},
		{"honors supplied id", "client-supplied-id", true},
		{"rejects oversized id", strings.Repeat("x", 65), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFrom(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if seen == "" {
				t.Fatal("no request id in handler context")
			}
			if echoed := rec.Header().Get(RequestIDHeader); echoed != seen {
				t.Errorf("response header = %q, context id = %q, want them equal", echoed, seen)
			}
			if tt.wantEcho && seen != tt.incoming {
				t.Errorf("context id = %q, want supplied %q", seen, tt.incoming)
			}
			if !tt.wantEcho && seen == tt.incoming {
				t.Errorf("context id kept rejected value %q", tt.incoming)
			}
		})
	}
}

func TestRequestIDFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := RequestIDFrom(req.Context()); got != "" {
		t.Errorf("RequestIDFrom on bare context = %q, want empty", got)
	}
}
