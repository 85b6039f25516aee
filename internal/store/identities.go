// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/technoborsch/easyview/internal/apperr"
	"github.com/technoborsch/easyview/internal/models"
)

// Identity Directory over the record store. Email and username are kept
// globally unique through secondary index keys written in the same
// transaction as the record itself; soft-deactivated records keep their
// index entries so the uniqueness invariant spans active-or-not records.

// identityRecord is the storage envelope for identities. The API-facing
// struct keeps PasswordHash out of its JSON with a "-" tag; persistence
// needs the hash, so the envelope re-exposes it under an explicit key.
type identityRecord struct {
	*models.Identity
	PasswordHash []byte `json:"password_hash"`
}

func encodeIdentity(identity *models.Identity) ([]byte, error) {
	return json.Marshal(identityRecord{
		Identity:     identity,
		PasswordHash: identity.PasswordHash,
	})
}

func decodeIdentity(val []byte) (*models.Identity, error) {
	record := identityRecord{Identity: &models.Identity{}}
	if err := json.Unmarshal(val, &record); err != nil {
		return nil, err
	}
	record.Identity.PasswordHash = record.PasswordHash
	return record.Identity, nil
}

// CreateIdentity stores a new identity. Fails Conflict when the email or
// username is already taken.
func (s *Store) CreateIdentity(ctx context.Context, identity *models.Identity) error {
	if err := ctx.Err(); err != nil {
		return apperr.Fatal("identity store unavailable", err)
	}

	data, err := encodeIdentity(identity)
	if err != nil {
		return apperr.Fatal("encode identity", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte(identityEmailKeyPrefix + identity.Email)
		if _, err := txn.Get(emailKey); err == nil {
			return apperr.Conflict("email is already registered")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		usernameKey := []byte(identityUsernameKeyPrefix + identity.Username)
		if _, err := txn.Get(usernameKey); err == nil {
			return apperr.Conflict("username is already taken")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set([]byte(identityKeyPrefix+identity.ID), data); err != nil {
			return err
		}
		if err := txn.Set(emailKey, []byte(identity.ID)); err != nil {
			return err
		}
		return txn.Set(usernameKey, []byte(identity.ID))
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return err
		}
		return apperr.Fatal("store identity", err)
	}
	return nil
}

// GetIdentity returns the identity with the given id, or nil when absent.
func (s *Store) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Fatal("identity store unavailable", err)
	}

	var identity *models.Identity
	found, err := s.get([]byte(identityKeyPrefix+id), func(val []byte) error {
		decoded, err := decodeIdentity(val)
		if err != nil {
			return err
		}
		identity = decoded
		return nil
	})
	if err != nil {
		return nil, apperr.Fatal("read identity", err)
	}
	if !found {
		return nil, nil
	}
	return identity, nil
}

// FindIdentityByEmail returns the identity registered under email, or nil.
func (s *Store) FindIdentityByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return s.findIdentityByIndex(ctx, identityEmailKeyPrefix+email)
}

// FindIdentityByUsername returns the identity holding username, or nil.
func (s *Store) FindIdentityByUsername(ctx context.Context, username string) (*models.Identity, error) {
	return s.findIdentityByIndex(ctx, identityUsernameKeyPrefix+username)
}

func (s *Store) findIdentityByIndex(ctx context.Context, indexKey string) (*models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Fatal("identity store unavailable", err)
	}

	var id string
	found, err := s.get([]byte(indexKey), func(val []byte) error {
		id = string(val)
		return nil
	})
	if err != nil {
		return nil, apperr.Fatal("read identity index", err)
	}
	if !found {
		return nil, nil
	}
	return s.GetIdentity(ctx, id)
}

// UpdateIdentity rewrites an existing identity record, moving its index
// entries when email or username changed. The caller is responsible for
// having loaded the record through this store first.
func (s *Store) UpdateIdentity(ctx context.Context, identity *models.Identity) error {
	if err := ctx.Err(); err != nil {
		return apperr.Fatal("identity store unavailable", err)
	}

	data, err := encodeIdentity(identity)
	if err != nil {
		return apperr.Fatal("encode identity", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		prev, err := readIdentity(txn, identity.ID)
		if err != nil {
			return err
		}
		if prev == nil {
			return apperr.NotFound("user does not exist")
		}

		if prev.Email != identity.Email {
			if err := moveIndex(txn, identityEmailKeyPrefix, prev.Email, identity.Email, identity.ID, "email is already registered"); err != nil {
				return err
			}
		}
		if prev.Username != identity.Username {
			if err := moveIndex(txn, identityUsernameKeyPrefix, prev.Username, identity.Username, identity.ID, "username is already taken"); err != nil {
				return err
			}
		}

		return txn.Set([]byte(identityKeyPrefix+identity.ID), data)
	})
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindConflict, apperr.KindNotFound:
			return err
		}
		return apperr.Fatal("update identity", err)
	}
	return nil
}

// DeleteIdentity removes the identity record and its index entries.
// Deleting an absent identity is a no-op.
func (s *Store) DeleteIdentity(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return apperr.Fatal("identity store unavailable", err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		identity, err := readIdentity(txn, id)
		if err != nil {
			return err
		}
		if identity == nil {
			return nil
		}

		if err := txn.Delete([]byte(identityKeyPrefix + id)); err != nil {
			return err
		}
		if err := txn.Delete([]byte(identityEmailKeyPrefix + identity.Email)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Delete([]byte(identityUsernameKeyPrefix + identity.Username)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return apperr.Fatal("delete identity", err)
	}
	return nil
}

// readIdentity reads an identity inside an open transaction.
func readIdentity(txn *badger.Txn, id string) (*models.Identity, error) {
	item, err := txn.Get([]byte(identityKeyPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var identity *models.Identity
	if err := item.Value(func(val []byte) error {
		decoded, err := decodeIdentity(val)
		if err != nil {
			return err
		}
		identity = decoded
		return nil
	}); err != nil {
		return nil, err
	}
	return identity, nil
}

// moveIndex retargets a unique index entry from oldVal to newVal, failing
// Conflict when the new value is already claimed by another record.
func moveIndex(txn *badger.Txn, prefix, oldVal, newVal, id, conflictMsg string) error {
	newKey := []byte(prefix + newVal)
	if item, err := txn.Get(newKey); err == nil {
		var holder string
		if err := item.Value(func(val []byte) error {
			holder = string(val)
			return nil
		}); err != nil {
			return err
		}
		if holder != id {
			return apperr.Conflict(conflictMsg)
		}
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}

	if err := txn.Delete([]byte(prefix + oldVal)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	return txn.Set(newKey, []byte(id))
}
