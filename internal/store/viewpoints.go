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

// CreateViewpoint stores a new viewpoint and its by-building index entry.
func (s *Store) CreateViewpoint(ctx context.Context, viewpoint *models.Viewpoint) error {
	if err := ctx.Err(); err != nil {
		return apperr.Fatal("viewpoint store unavailable", err)
	}

	data, err := json.Marshal(viewpoint)
	if err != nil {
		return apperr.Fatal("encode viewpoint", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(viewpointKeyPrefix+viewpoint.ID), data); err != nil {
			return err
		}
		indexKey := []byte(viewpointBuildingPrefix + viewpoint.BuildingID + ":" + viewpoint.ID)
		return txn.Set(indexKey, []byte(viewpoint.ID))
	})
	if err != nil {
		return apperr.Fatal("store viewpoint", err)
	}
	return nil
}

// GetViewpoint returns the viewpoint with the given id, or nil when absent.
func (s *Store) GetViewpoint(ctx context.Context, id string) (*models.Viewpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Fatal("viewpoint store unavailable", err)
	}

	var viewpoint models.Viewpoint
	found, err := s.get([]byte(viewpointKeyPrefix+id), func(val []byte) error {
		return json.Unmarshal(val, &viewpoint)
	})
	if err != nil {
		return nil, apperr.Fatal("read viewpoint", err)
	}
	if !found {
		return nil, nil
	}
	return &viewpoint, nil
}

// UpdateViewpoint rewrites an existing viewpoint record. BuildingID is
// immutable, so the index entry never moves.
func (s *Store) UpdateViewpoint(ctx context.Context, viewpoint *models.Viewpoint) error {
	return s.putRecord(ctx, viewpointKeyPrefix+viewpoint.ID, viewpoint, "update viewpoint")
}

// DeleteViewpoint removes a viewpoint record and its index entry.
func (s *Store) DeleteViewpoint(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return apperr.Fatal("viewpoint store unavailable", err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(viewpointKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var viewpoint models.Viewpoint
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &viewpoint)
		}); err != nil {
			return err
		}

		if err := txn.Delete([]byte(viewpointKeyPrefix + id)); err != nil {
			return err
		}
		indexKey := []byte(viewpointBuildingPrefix + viewpoint.BuildingID + ":" + id)
		if err := txn.Delete(indexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return apperr.Fatal("delete viewpoint", err)
	}
	return nil
}

// ListViewpointsByBuilding returns every viewpoint under a building, via the
// by-building index.
func (s *Store) ListViewpointsByBuilding(ctx context.Context, buildingID string) ([]*models.Viewpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Fatal("viewpoint store unavailable", err)
	}

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(viewpointBuildingPrefix + buildingID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Fatal("list viewpoints", err)
	}

	viewpoints := make([]*models.Viewpoint, 0, len(ids))
	for _, id := range ids {
		vp, err := s.GetViewpoint(ctx, id)
		if err != nil {
			return nil, err
		}
		if vp != nil {
			viewpoints = append(viewpoints, vp)
		}
	}
	return viewpoints, nil
}
