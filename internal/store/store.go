// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

// Package store persists entity records in BadgerDB.
//
// Each entity kind lives under a typed key prefix with go-json-encoded
// values. Secondary index keys back the Identity Directory's global
// email/username uniqueness and the by-building viewpoint lookup; the
// per-scope name/slug uniqueness of projects and buildings is enforced by
// the cascade manager, which reads sibling records through this package.
//
// Lookups return (nil, nil) when the record is absent; callers translate
// absence into the NotFound taxonomy where appropriate.
package store

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/technoborsch/easyview/internal/logging"
)

// Key prefixes for BadgerDB storage.
const (
	identityKeyPrefix         = "identity:"
	identityEmailKeyPrefix    = "identity_email:"
	identityUsernameKeyPrefix = "identity_username:"
	projectKeyPrefix          = "project:"
	buildingKeyPrefix         = "building:"
	viewpointKeyPrefix        = "viewpoint:"
	viewpointBuildingPrefix   = "viewpoint_building:"
)

// Store is the BadgerDB-backed record store. A single DB handle is shared
// with the credential store, which uses its own key namespace.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the database at path. An empty path opens an
// in-memory database, which is only appropriate for tests.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logger is too chatty; we log GC ourselves
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}

	return &Store{db: db}, nil
}

// DB exposes the underlying handle so the credential store can share it.
func (s *Store) DB() *badger.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Healthy reports whether the database can serve reads. Used by the
// readiness probe.
func (s *Store) Healthy(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return fmt.Errorf("database is closed")
	}
	return s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("health:probe"))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

// RunGC runs one round of value-log garbage collection. Badger returns an
// error when there was nothing to rewrite; that is not a failure.
func (s *Store) RunGC(discardRatio float64) {
	for {
		if err := s.db.RunValueLogGC(discardRatio); err != nil {
			return
		}
		logging.Debug().Msg("Badger value log file rewritten")
	}
}

// get reads and decodes a single record. Returns (false, nil) when absent.
func (s *Store) get(key []byte, decode func([]byte) error) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(decode)
	})
	return found, err
}
