// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package credstore

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory. It exists so the token
// service can be tested without a BadgerDB instance; expiry is evaluated
// lazily on read.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	// now is swappable in tests to simulate passage of time.
	now func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// SetClock replaces the store's time source. Test use only.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) get(key string) (memoryEntry, bool) {
	entry, ok := s.entries[key]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

// Get returns the value for key, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.get(key)
	if !ok {
		return "", ErrNotFound
	}
	return entry.value, nil
}

// SetWithExpiry upserts key.
func (s *MemoryStore) SetWithExpiry(ctx context.Context, key, value string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.now().Before(expiresAt) {
		return nil
	}
	s.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// CompareAndSwap replaces key's value if the current value equals expect.
func (s *MemoryStore) CompareAndSwap(ctx context.Context, key, expect, value string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.get(key)
	if ok {
		if entry.value != expect {
			return ErrCASMismatch
		}
	} else if expect != "" {
		return ErrCASMismatch
	}

	s.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	return nil
}

// DeletePrefix removes every key with the given prefix.
func (s *MemoryStore) DeletePrefix(ctx context.Context, prefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}
