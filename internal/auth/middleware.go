// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package auth

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/technoborsch/easyview/internal/apperr"
	"github.com/technoborsch/easyview/internal/models"
)

type contextKey string

const (
	identityContextKey contextKey = "identity"
	tokenContextKey    contextKey = "token"
)

// IdentityFrom returns the authenticated identity from the request context,
// or nil for anonymous requests.
func IdentityFrom(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(identityContextKey).(*models.Identity)
	return identity
}

// TokenFrom returns the presented token string from the request context.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// withCredential stores the resolved identity and token on the context.
func withCredential(ctx context.Context, identity *models.Identity, token string) context.Context {
	ctx = context.WithValue(ctx, identityContextKey, identity)
	return context.WithValue(ctx, tokenContextKey, token)
}

// RequireAuth rejects requests without a valid access credential.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, token, err := a.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			writeAuthError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withCredential(r.Context(), identity, token)))
	})
}

// RequireRefresh rejects requests without a valid refresh credential.
// Used only by the token rotation and logout endpoints.
func (a *Authenticator) RequireRefresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, token, err := a.AuthenticateRefresh(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			writeAuthError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withCredential(r.Context(), identity, token)))
	})
}

// OptionalAuth resolves a credential when one is presented but lets
// anonymous requests through. A presented-but-invalid credential is still
// rejected: silently downgrading to anonymous would mask client bugs.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawHeader := r.Header.Get("Authorization")
		if rawHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, token, err := a.Authenticate(r.Context(), rawHeader)
		if err != nil {
			writeAuthError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withCredential(r.Context(), identity, token)))
	})
}

// writeAuthError renders an authentication failure. Only the taxonomy
// message leaves the process.
func writeAuthError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(apperr.KindOf(err)))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": apperr.Message(err)})
}
