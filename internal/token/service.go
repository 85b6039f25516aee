// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package token

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/technoborsch/easyview/internal/config"
	"github.com/technoborsch/easyview/internal/credstore"
	"github.com/technoborsch/easyview/internal/logging"
)

// Credential store key namespaces.
const (
	blacklistKeyPrefix = "bl_"
	refreshKeyPrefix   = "refresh_"
)

// BlacklistKey returns the revocation marker key for a token.
func BlacklistKey(token string) string {
	return blacklistKeyPrefix + token
}

// RefreshKey returns the active-refresh-record key for an identity.
func RefreshKey(identityID string) string {
	return refreshKeyPrefix + identityID
}

// Service issues and verifies signed credentials. Tokens are HMAC-SHA256
// JWTs; revocation state lives in the injected credential store so that a
// restart never resurrects a revoked token.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      credstore.Store

	// rotation critical sections are serialized per identity
	locks lockRegistry

	// now is swappable in tests
	now func() time.Time
}

// NewService creates a token service with the configured secret and
// lifetimes. The secret must be at least 32 characters; it is stored as
// []byte to avoid string interning.
func NewService(cfg *config.SecurityConfig, store credstore.Store) (*Service, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if store == nil {
		return nil, fmt.Errorf("credential store is required")
	}

	return &Service{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		store:      store,
		locks:      lockRegistry{locks: make(map[string]*sync.Mutex)},
		now:        time.Now,
	}, nil
}

// sign produces a serialized token for identityID of the given kind.
func (s *Service) sign(identityID string, kind Kind, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		Refresh: kind == KindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// IssueAccessToken issues a short-lived access token for identityID.
func (s *Service) IssueAccessToken(ctx context.Context, identityID string) (string, error) {
	signed, err := s.sign(identityID, KindAccess, s.accessTTL)
	if err != nil {
		RecordTokenOperation("issue_access", "error")
		return "", err
	}
	RecordTokenOperation("issue_access", "success")
	return signed, nil
}

// IssueRefreshToken issues a refresh token for identityID and makes it the
// single active one: the credential store's active-refresh record is
// overwritten and any previously active token is additionally blacklisted
// so that an unexpired copy is rejected.
func (s *Service) IssueRefreshToken(ctx context.Context, identityID string) (string, error) {
	unlock := s.locks.lock(identityID)
	defer unlock()

	prev, err := s.store.Get(ctx, RefreshKey(identityID))
	if err != nil && !errors.Is(err, credstore.ErrNotFound) {
		RecordTokenOperation("issue_refresh", "store_error")
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	signed, err := s.sign(identityID, KindRefresh, s.refreshTTL)
	if err != nil {
		RecordTokenOperation("issue_refresh", "error")
		return "", err
	}

	if err := s.store.SetWithExpiry(ctx, RefreshKey(identityID), signed, s.now().Add(s.refreshTTL)); err != nil {
		RecordTokenOperation("issue_refresh", "store_error")
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if prev != "" && prev != signed {
		if err := s.blacklist(ctx, prev); err != nil {
			// The active record already points at the new token; the old
			// one can no longer rotate. Report but do not fail issuance.
			logging.Error().Err(err).Str("identity_id", identityID).
				Msg("Failed to blacklist displaced refresh token")
		}
	}

	RecordTokenOperation("issue_refresh", "success")
	return signed, nil
}

// parse verifies signature and expiry and decodes the claims. This step is
// local and CPU-bound; revocation is checked separately. Expiry is judged
// against the service clock so signing and validation share one time source.
func (s *Service) parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}

// VerifyAndDecode verifies a token and returns its claims. The checks run
// in a fixed order: (1) signature and expiry, (2) revocation lookup in the
// credential store, (3) kind match. A store failure during the revocation
// lookup denies access; no path short-circuits past a pending revocation
// check.
func (s *Service) VerifyAndDecode(ctx context.Context, tokenString string, expectedKind Kind) (*Claims, error) {
	start := s.now()

	claims, err := s.parse(tokenString)
	if err != nil {
		RecordTokenVerification(expectedKind, outcomeFor(err), s.now().Sub(start))
		return nil, err
	}

	_, err = s.store.Get(ctx, BlacklistKey(tokenString))
	switch {
	case err == nil:
		RecordTokenVerification(expectedKind, "blacklisted", s.now().Sub(start))
		return nil, ErrBlacklisted
	case errors.Is(err, credstore.ErrNotFound):
		// not revoked
	default:
		RecordTokenVerification(expectedKind, "store_error", s.now().Sub(start))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if claims.Kind() != expectedKind {
		RecordTokenVerification(expectedKind, "wrong_kind", s.now().Sub(start))
		return nil, ErrWrongKind
	}

	RecordTokenVerification(expectedKind, "success", s.now().Sub(start))
	return claims, nil
}

// Revoke blacklists a token for its remaining lifetime. Used for logout and
// for refresh rotation. Revoking an already invalid or expired token is a
// no-op: it can no longer be used anyway.
func (s *Service) Revoke(ctx context.Context, tokenString string) error {
	if err := s.blacklist(ctx, tokenString); err != nil {
		RecordTokenOperation("revoke", "store_error")
		return err
	}
	RecordTokenOperation("revoke", "success")
	return nil
}

// blacklist writes the revocation marker with TTL equal to the token's
// remaining validity.
func (s *Service) blacklist(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil
	}

	expiresAt := claims.ExpiresAt.Time
	if !expiresAt.After(s.now()) {
		return nil
	}

	if err := s.store.SetWithExpiry(ctx, BlacklistKey(tokenString), "revoked", expiresAt); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// RotateRefresh exchanges a refresh token for a fresh access/refresh pair.
// The presented token must both verify as a refresh token and match the
// identity's active-refresh record; a token that was already rotated fails
// Blacklisted. The read of the active record, the write of the new one and
// the revocation of the old token form a critical section per identity,
// backed by a compare-and-set on the store entry, so concurrent rotation
// attempts with the same stale token produce at most one winner.
func (s *Service) RotateRefresh(ctx context.Context, oldRefreshToken string) (accessToken, newRefreshToken string, err error) {
	claims, err := s.VerifyAndDecode(ctx, oldRefreshToken, KindRefresh)
	if err != nil {
		RecordTokenOperation("rotate", "verify_failed")
		return "", "", err
	}
	identityID := claims.Subject

	unlock := s.locks.lock(identityID)
	defer unlock()

	active, err := s.store.Get(ctx, RefreshKey(identityID))
	switch {
	case errors.Is(err, credstore.ErrNotFound):
		RecordTokenOperation("rotate", "blacklisted")
		return "", "", ErrBlacklisted
	case err != nil:
		RecordTokenOperation("rotate", "store_error")
		return "", "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	case active != oldRefreshToken:
		// A newer token was already issued; reuse of the stale one is
		// treated the same as revocation.
		RecordTokenOperation("rotate", "blacklisted")
		return "", "", ErrBlacklisted
	}

	newRefreshToken, err = s.sign(identityID, KindRefresh, s.refreshTTL)
	if err != nil {
		RecordTokenOperation("rotate", "error")
		return "", "", err
	}

	err = s.store.CompareAndSwap(ctx, RefreshKey(identityID), oldRefreshToken, newRefreshToken, s.now().Add(s.refreshTTL))
	switch {
	case errors.Is(err, credstore.ErrCASMismatch):
		RecordTokenOperation("rotate", "blacklisted")
		return "", "", ErrBlacklisted
	case err != nil:
		RecordTokenOperation("rotate", "store_error")
		return "", "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := s.blacklist(ctx, oldRefreshToken); err != nil {
		// The CAS already displaced the old token; it cannot rotate again.
		logging.Error().Err(err).Str("identity_id", identityID).
			Msg("Failed to blacklist rotated refresh token")
	}

	accessToken, err = s.IssueAccessToken(ctx, identityID)
	if err != nil {
		RecordTokenOperation("rotate", "error")
		return "", "", err
	}

	RecordTokenOperation("rotate", "success")
	return accessToken, newRefreshToken, nil
}

// RevokeAllForIdentity drops every credential-store record for an identity.
// The active refresh token is blacklisted first so it cannot be replayed,
// then every record under the identity's refresh key prefix is swept. Called
// by the identity deletion cascade.
func (s *Service) RevokeAllForIdentity(ctx context.Context, identityID string) error {
	active, err := s.store.Get(ctx, RefreshKey(identityID))
	if err == nil && active != "" {
		if err := s.blacklist(ctx, active); err != nil {
			return err
		}
	} else if err != nil && !errors.Is(err, credstore.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := s.store.DeletePrefix(ctx, RefreshKey(identityID)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// outcomeFor maps a verification error to a metrics label.
func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrBlacklisted):
		return "blacklisted"
	case errors.Is(err, ErrWrongKind):
		return "wrong_kind"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_error"
	default:
		return "invalid"
	}
}

// lockRegistry hands out one mutex per identity id. Entries are tiny and
// bounded by the number of identities seen since startup.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the mutex for id and returns its unlock function.
func (r *lockRegistry) lock(id string) func() {
	r.mu.Lock()
	m, ok := r.locks[id]
	if !ok {
		m = &sync.Mutex{}
		r.locks[id] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}
