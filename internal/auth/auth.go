// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

// Package auth glues the token service and the identity directory into a
// request-scoped authentication check. Access tokens are presented as
// "Bearer <token>" and refresh tokens as "Refresh <token>"; the schemes are
// distinct and enforced, so presenting one where the other is required is
// rejected rather than silently accepted.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/technoborsch/easyview/internal/apperr"
	"github.com/technoborsch/easyview/internal/logging"
	"github.com/technoborsch/easyview/internal/models"
	"github.com/technoborsch/easyview/internal/token"
)

// Credential presentation schemes.
const (
	SchemeBearer  = "Bearer"
	SchemeRefresh = "Refresh"
)

// Directory resolves identities by id. The entity store satisfies it;
// a nil identity with a nil error means the id is unknown.
type Directory interface {
	GetIdentity(ctx context.Context, id string) (*models.Identity, error)
}

// Authenticator resolves raw Authorization headers into identities.
type Authenticator struct {
	tokens    *token.Service
	directory Directory
}

// NewAuthenticator creates an authenticator over the given token service
// and identity directory.
func NewAuthenticator(tokens *token.Service, directory Directory) *Authenticator {
	return &Authenticator{tokens: tokens, directory: directory}
}

// Authenticate resolves an access credential into its identity. The token
// string is returned alongside so callers can revoke it on logout.
func (a *Authenticator) Authenticate(ctx context.Context, rawHeader string) (*models.Identity, string, error) {
	return a.authenticate(ctx, rawHeader, SchemeBearer, token.KindAccess)
}

// AuthenticateRefresh resolves a refresh credential into its identity.
func (a *Authenticator) AuthenticateRefresh(ctx context.Context, rawHeader string) (*models.Identity, string, error) {
	return a.authenticate(ctx, rawHeader, SchemeRefresh, token.KindRefresh)
}

func (a *Authenticator) authenticate(ctx context.Context, rawHeader, scheme string, kind token.Kind) (*models.Identity, string, error) {
	tokenString, err := extractToken(rawHeader, scheme)
	if err != nil {
		RecordAuthentication(scheme, "malformed")
		return nil, "", err
	}

	claims, err := a.tokens.VerifyAndDecode(ctx, tokenString, kind)
	if err != nil {
		RecordAuthentication(scheme, verificationOutcome(err))
		return nil, "", apperr.Wrap(apperr.KindUnauthenticated, credentialMessage(err), err)
	}

	identity, err := a.directory.GetIdentity(ctx, claims.Subject)
	if err != nil {
		RecordAuthentication(scheme, "directory_error")
		return nil, "", apperr.Wrap(apperr.KindUnauthenticated, "invalid credential", err)
	}
	if identity == nil {
		RecordAuthentication(scheme, "unknown_identity")
		return nil, "", apperr.Unauthenticated("invalid credential")
	}
	if !identity.IsActive {
		RecordAuthentication(scheme, "inactive")
		return nil, "", apperr.Unauthenticated("account is deactivated")
	}

	RecordAuthentication(scheme, "success")
	return identity, tokenString, nil
}

// extractToken validates the "<Scheme> <token>" shape. A recognized but
// wrong scheme gets the wrong-kind message so clients can tell scheme
// confusion from a bad token.
func extractToken(rawHeader, wantScheme string) (string, error) {
	if rawHeader == "" {
		return "", apperr.Unauthenticated("missing credential")
	}

	parts := strings.SplitN(rawHeader, " ", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", apperr.Unauthenticated("malformed credential")
	}
	if parts[0] != wantScheme {
		if parts[0] == SchemeBearer || parts[0] == SchemeRefresh {
			return "", apperr.Unauthenticated("wrong credential kind")
		}
		return "", apperr.Unauthenticated("malformed credential")
	}
	return parts[1], nil
}

// credentialMessage maps a verification failure to its fixed response
// message.
func credentialMessage(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "credential expired"
	case errors.Is(err, token.ErrBlacklisted):
		return "credential revoked"
	case errors.Is(err, token.ErrWrongKind):
		return "wrong credential kind"
	case errors.Is(err, token.ErrStoreUnavailable):
		logging.Error().Err(err).Msg("Credential store unavailable during verification")
		return "credential verification unavailable"
	default:
		return "invalid credential"
	}
}

func verificationOutcome(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrBlacklisted):
		return "blacklisted"
	case errors.Is(err, token.ErrWrongKind):
		return "wrong_kind"
	case errors.Is(err, token.ErrStoreUnavailable):
		return "store_error"
	default:
		return "invalid"
	}
}
