// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package credstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// The memory and badger implementations must behave identically; both run
// through the same suite.
func openStores(t *testing.T) map[string]Store {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("failed to open in-memory badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"badger": NewBadgerStore(db),
	}
}

func TestGetSetDelete(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "bl_token"); !errors.Is(err, ErrNotFound) {
				t.Errorf("get absent key: error = %v, want ErrNotFound", err)
			}

			expiry := time.Now().Add(time.Hour)
			if err := store.SetWithExpiry(ctx, "bl_token", "revoked", expiry); err != nil {
				t.Fatalf("failed to set: %v", err)
			}
			value, err := store.Get(ctx, "bl_token")
			if err != nil {
				t.Fatalf("failed to get: %v", err)
			}
			if value != "revoked" {
				t.Errorf("value = %q, want revoked", value)
			}

			if err := store.Delete(ctx, "bl_token"); err != nil {
				t.Fatalf("failed to delete: %v", err)
			}
			if _, err := store.Get(ctx, "bl_token"); !errors.Is(err, ErrNotFound) {
				t.Errorf("get deleted key: error = %v, want ErrNotFound", err)
			}

			// Deleting again is a no-op.
			if err := store.Delete(ctx, "bl_token"); err != nil {
				t.Errorf("repeat delete: error = %v, want nil", err)
			}
		})
	}
}

func TestCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			// Empty expect requires the key to be absent.
			if err := store.CompareAndSwap(ctx, "refresh_i1", "", "r1", expiry); err != nil {
				t.Fatalf("cas on absent key: %v", err)
			}
			if err := store.CompareAndSwap(ctx, "refresh_i1", "", "r2", expiry); !errors.Is(err, ErrCASMismatch) {
				t.Errorf("cas expecting absent over present key: error = %v, want ErrCASMismatch", err)
			}

			if err := store.CompareAndSwap(ctx, "refresh_i1", "r1", "r2", expiry); err != nil {
				t.Fatalf("cas with matching expect: %v", err)
			}
			if err := store.CompareAndSwap(ctx, "refresh_i1", "r1", "r3", expiry); !errors.Is(err, ErrCASMismatch) {
				t.Errorf("cas with stale expect: error = %v, want ErrCASMismatch", err)
			}

			value, err := store.Get(ctx, "refresh_i1")
			if err != nil {
				t.Fatalf("failed to get: %v", err)
			}
			if value != "r2" {
				t.Errorf("value after cas chain = %q, want r2", value)
			}
		})
	}
}

func TestCompareAndSwapSingleWinner(t *testing.T) {
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.SetWithExpiry(ctx, "refresh_i1", "old", expiry); err != nil {
				t.Fatalf("failed to seed: %v", err)
			}

			var wg sync.WaitGroup
			wins := make(chan int, 8)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					if err := store.CompareAndSwap(ctx, "refresh_i1", "old", "new", expiry); err == nil {
						wins <- n
					}
				}(i)
			}
			wg.Wait()
			close(wins)

			won := 0
			for range wins {
				won++
			}
			if won != 1 {
				t.Errorf("concurrent cas winners = %d, want 1", won)
			}
		})
	}
}

func TestDeletePrefix(t *testing.T) {
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"bl_a", "bl_b", "refresh_i1"} {
				if err := store.SetWithExpiry(ctx, key, "x", expiry); err != nil {
					t.Fatalf("failed to seed %s: %v", key, err)
				}
			}

			if err := store.DeletePrefix(ctx, "bl_"); err != nil {
				t.Fatalf("failed to delete prefix: %v", err)
			}

			for _, key := range []string{"bl_a", "bl_b"} {
				if _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
					t.Errorf("get %s after prefix delete: error = %v, want ErrNotFound", key, err)
				}
			}
			if _, err := store.Get(ctx, "refresh_i1"); err != nil {
				t.Errorf("unrelated key swept by prefix delete: %v", err)
			}
		})
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return current })

	if err := store.SetWithExpiry(ctx, "bl_token", "revoked", current.Add(time.Minute)); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if _, err := store.Get(ctx, "bl_token"); err != nil {
		t.Fatalf("get before expiry: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "bl_token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after expiry: error = %v, want ErrNotFound", err)
	}

	// Writing an already-expired entry is a no-op.
	if err := store.SetWithExpiry(ctx, "bl_other", "revoked", current.Add(-time.Second)); err != nil {
		t.Fatalf("failed to set expired entry: %v", err)
	}
	if _, err := store.Get(ctx, "bl_other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get expired-on-write entry: error = %v, want ErrNotFound", err)
	}
}

// failingInner always errors, to exercise the breaker.
type failingInner struct{}

var errDown = errors.New("store down")

func (failingInner) Get(context.Context, string) (string, error) { return "", errDown }
func (failingInner) SetWithExpiry(context.Context, string, string, time.Time) error {
	return errDown
}
func (failingInner) Delete(context.Context, string) error { return errDown }
func (failingInner) CompareAndSwap(context.Context, string, string, string, time.Time) error {
	return errDown
}
func (failingInner) DeletePrefix(context.Context, string) error { return errDown }

func TestBreakerOpensOnConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	store := NewBreakerStore(failingInner{}, BreakerConfig{FailureThreshold: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		if _, err := store.Get(ctx, "bl_token"); !errors.Is(err, errDown) {
			t.Fatalf("attempt %d: error = %v, want underlying failure", i, err)
		}
	}

	// The breaker is open now; the inner store is no longer reached.
	if _, err := store.Get(ctx, "bl_token"); errors.Is(err, errDown) || err == nil {
		t.Errorf("open breaker: error = %v, want breaker rejection", err)
	}
	if store.State() != "open" {
		t.Errorf("breaker state = %q, want open", store.State())
	}
}

func TestBreakerIgnoresExpectedOutcomes(t *testing.T) {
	ctx := context.Background()
	store := NewBreakerStore(NewMemoryStore(), BreakerConfig{FailureThreshold: 2, Timeout: time.Minute})

	// ErrNotFound is a normal outcome and must not accumulate failures.
	for i := 0; i < 10; i++ {
		if _, err := store.Get(ctx, "bl_absent"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("attempt %d: error = %v, want ErrNotFound", i, err)
		}
	}
	if store.State() != "closed" {
		t.Errorf("breaker state = %q, want closed", store.State())
	}
}
