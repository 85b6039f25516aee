// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package credstore

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/technoborsch/easyview/internal/logging"
)

// BreakerConfig holds circuit breaker settings for the credential store.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the breaker.
	FailureThreshold uint32

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
}

// DefaultBreakerConfig returns production defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Timeout:          10 * time.Second,
	}
}

// BreakerStore decorates a Store with a circuit breaker. An open breaker
// returns an error immediately; since token verification fails closed on any
// store error, a broken credential store denies access fast instead of
// stacking up timed-out lookups.
type BreakerStore struct {
	inner Store
	cb    *gobreaker.CircuitBreaker[string]
}

// NewBreakerStore wraps inner with a circuit breaker.
func NewBreakerStore(inner Store, cfg BreakerConfig) *BreakerStore {
	settings := gobreaker.Settings{
		Name:    "credential-store",
		Timeout: cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Credential store breaker state change")
		},
		IsSuccessful: func(err error) bool {
			// Expected outcomes must not trip the breaker.
			return err == nil || err == ErrNotFound || err == ErrCASMismatch
		},
	}

	return &BreakerStore{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[string](settings),
	}
}

// Get returns the value for key, or ErrNotFound.
func (s *BreakerStore) Get(ctx context.Context, key string) (string, error) {
	return s.cb.Execute(func() (string, error) {
		return s.inner.Get(ctx, key)
	})
}

// SetWithExpiry upserts key.
func (s *BreakerStore) SetWithExpiry(ctx context.Context, key, value string, expiresAt time.Time) error {
	_, err := s.cb.Execute(func() (string, error) {
		return "", s.inner.SetWithExpiry(ctx, key, value, expiresAt)
	})
	return err
}

// Delete removes key.
func (s *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := s.cb.Execute(func() (string, error) {
		return "", s.inner.Delete(ctx, key)
	})
	return err
}

// CompareAndSwap replaces key's value if the current value equals expect.
func (s *BreakerStore) CompareAndSwap(ctx context.Context, key, expect, value string, expiresAt time.Time) error {
	_, err := s.cb.Execute(func() (string, error) {
		return "", s.inner.CompareAndSwap(ctx, key, expect, value, expiresAt)
	})
	return err
}

// DeletePrefix removes every key with the given prefix.
func (s *BreakerStore) DeletePrefix(ctx context.Context, prefix string) error {
	_, err := s.cb.Execute(func() (string, error) {
		return "", s.inner.DeletePrefix(ctx, prefix)
	})
	return err
}

// State returns the breaker state name for health reporting.
func (s *BreakerStore) State() string {
	return s.cb.State().String()
}
