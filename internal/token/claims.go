// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

// Package token implements the token service: issuance, verification,
// revocation and rotation of signed bearer credentials.
//
// Two credential kinds exist. Access tokens are short-lived and authorize
// ordinary API calls. Refresh tokens are longer-lived, exchangeable for a
// fresh access/refresh pair, and subject to a single-active-instance policy
// per identity: issuing or rotating a refresh token invalidates the
// previous one even before its expiry.
//
// Per refresh token the lifecycle is
//
//	Issued(active) -> Rotated(blacklisted)
//	Issued(active) -> Revoked(blacklisted)
//
// both terminal; no token ever transitions back to active.
package token

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes the two credential kinds.
type Kind string

const (
	// KindAccess authorizes ordinary API calls.
	KindAccess Kind = "access"

	// KindRefresh is exchangeable for a new access/refresh pair.
	KindRefresh Kind = "refresh"
)

// Verification errors, ordered by the verification pipeline: signature and
// expiry first, then the revocation lookup, then the kind check.
var (
	// ErrInvalid indicates a malformed token or bad signature.
	ErrInvalid = errors.New("token is invalid")

	// ErrExpired indicates a lapsed expiry on an otherwise valid token.
	ErrExpired = errors.New("token is expired")

	// ErrBlacklisted indicates a revoked or superseded token.
	ErrBlacklisted = errors.New("token is blacklisted")

	// ErrWrongKind indicates an access token presented where a refresh
	// token is required, or vice versa.
	ErrWrongKind = errors.New("token is of the wrong kind")

	// ErrStoreUnavailable indicates the revocation check could not
	// complete. Verification fails closed: the caller denies access.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// Claims is the signed token payload. Subject carries the identity id;
// Refresh marks refresh tokens and is absent from access tokens.
type Claims struct {
	Refresh bool `json:"refresh,omitempty"`
	jwt.RegisteredClaims
}

// Kind returns the credential kind encoded in the claims.
func (c *Claims) Kind() Kind {
	if c.Refresh {
		return KindRefresh
	}
	return KindAccess
}
