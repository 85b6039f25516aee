// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// credKeyPrefix namespaces credential entries inside the shared BadgerDB so
// they never collide with entity records.
const credKeyPrefix = "cred:"

// BadgerStore implements Store on BadgerDB with native per-entry TTLs.
// Suitable for production use with persistence across restarts.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a BadgerDB-backed credential store.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Get returns the value for key, or ErrNotFound. Expired entries are
// reported as absent by badger itself.
func (s *BadgerStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}

	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(credKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}

		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if err != nil {
		return "", err
	}

	return value, nil
}

// SetWithExpiry upserts key with a TTL derived from expiresAt. Entries whose
// expiry is already in the past are not written.
func (s *BadgerStore) SetWithExpiry(ctx context.Context, key, value string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(credKeyPrefix+key), []byte(value)).WithTTL(ttl)
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		return nil
	})
}

// Delete removes key; absent keys are a no-op.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(credKeyPrefix + key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return nil
	})
}

// CompareAndSwap replaces key's value inside a single transaction. Badger's
// serializable snapshot isolation turns a concurrent writer into
// badger.ErrConflict, which is surfaced as ErrCASMismatch so the losing
// caller fails rather than overwriting.
func (s *BadgerStore) CompareAndSwap(ctx context.Context, key, expect, value string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cas %s: %w", key, err)
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("cas %s: expiry already passed", key)
	}

	fullKey := []byte(credKeyPrefix + key)
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(fullKey)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			if expect != "" {
				return ErrCASMismatch
			}
		case err != nil:
			return fmt.Errorf("cas read %s: %w", key, err)
		default:
			var current string
			if err := item.Value(func(val []byte) error {
				current = string(val)
				return nil
			}); err != nil {
				return fmt.Errorf("cas read %s: %w", key, err)
			}
			if current != expect {
				return ErrCASMismatch
			}
		}

		return txn.SetEntry(badger.NewEntry(fullKey, []byte(value)).WithTTL(ttl))
	})
	if errors.Is(err, badger.ErrConflict) {
		return ErrCASMismatch
	}
	return err
}

// DeletePrefix removes every key with the given prefix.
func (s *BadgerStore) DeletePrefix(ctx context.Context, prefix string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete prefix %s: %w", prefix, err)
	}

	// Collect first, then delete: badger iterators are read-only views.
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(credKeyPrefix + prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan prefix %s: %w", prefix, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete(k); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete prefix %s: %w", prefix, err)
			}
		}
		return nil
	})
}
