// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

// Package credstore provides the credential store: a keyed-value store with
// per-key expiry used by the token service for revocation markers and the
// single live refresh token per identity.
//
// Keys are namespaced strings:
//
//	bl_<token>            blacklist (revocation) marker
//	refresh_<identityId>  currently valid refresh token
//
// The store exposes single-key upserts, deletes and a compare-and-swap; no
// multi-key transactions are assumed. All operations honor the caller's
// context deadline, and callers treat any store error as a verification
// failure (fail closed).
package credstore

import (
	"context"
	"errors"
	"time"
)

// Store errors.
var (
	// ErrNotFound is returned by Get when the key is absent or expired.
	ErrNotFound = errors.New("credential store: key not found")

	// ErrCASMismatch is returned by CompareAndSwap when the current value
	// does not match the expected one.
	ErrCASMismatch = errors.New("credential store: compare-and-swap mismatch")
)

// Store is the credential store capability injected into the token service.
// Implementations: BadgerStore (production), MemoryStore (tests),
// BreakerStore (circuit-breaker decorator).
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// SetWithExpiry upserts key with the given value. The entry disappears
	// at expiresAt.
	SetWithExpiry(ctx context.Context, key, value string, expiresAt time.Time) error

	// Delete removes key; absent keys are a no-op.
	Delete(ctx context.Context, key string) error

	// CompareAndSwap atomically replaces the value of key with value if the
	// current value equals expect. An expect of "" requires the key to be
	// absent. Returns ErrCASMismatch otherwise.
	CompareAndSwap(ctx context.Context, key, expect, value string, expiresAt time.Time) error

	// DeletePrefix removes every key with the given prefix. Used by the
	// identity deletion cascade to drop all records for an identity.
	DeletePrefix(ctx context.Context, prefix string) error
}
