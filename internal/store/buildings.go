// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package store

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/technoborsch/easyview/internal/apperr"
	"github.com/technoborsch/easyview/internal/models"
)

// CreateBuilding stores a new building record. Per-project name/slug
// uniqueness is checked by the cascade manager before this is called.
func (s *Store) CreateBuilding(ctx context.Context, building *models.Building) error {
	return s.putRecord(ctx, buildingKeyPrefix+building.ID, building, "store building")
}

// GetBuilding returns the building with the given id, or nil when absent.
func (s *Store) GetBuilding(ctx context.Context, id string) (*models.Building, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Fatal("building store unavailable", err)
	}

	var building models.Building
	found, err := s.get([]byte(buildingKeyPrefix+id), func(val []byte) error {
		return json.Unmarshal(val, &building)
	})
	if err != nil {
		return nil, apperr.Fatal("read building", err)
	}
	if !found {
		return nil, nil
	}
	return &building, nil
}

// UpdateBuilding rewrites an existing building record.
func (s *Store) UpdateBuilding(ctx context.Context, building *models.Building) error {
	return s.putRecord(ctx, buildingKeyPrefix+building.ID, building, "update building")
}

// DeleteBuilding removes a building record. Absent records are a no-op.
func (s *Store) DeleteBuilding(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, buildingKeyPrefix+id, "delete building")
}
