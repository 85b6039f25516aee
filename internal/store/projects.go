// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package store

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/technoborsch/easyview/internal/apperr"
	"github.com/technoborsch/easyview/internal/models"
)

// CreateProject stores a new project record. Per-author name/slug
// uniqueness is checked by the cascade manager before this is called.
func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	return s.putRecord(ctx, projectKeyPrefix+project.ID, project, "store project")
}

// GetProject returns the project with the given id, or nil when absent.
func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Fatal("project store unavailable", err)
	}

	var project models.Project
	found, err := s.get([]byte(projectKeyPrefix+id), func(val []byte) error {
		return json.Unmarshal(val, &project)
	})
	if err != nil {
		return nil, apperr.Fatal("read project", err)
	}
	if !found {
		return nil, nil
	}
	return &project, nil
}

// UpdateProject rewrites an existing project record.
func (s *Store) UpdateProject(ctx context.Context, project *models.Project) error {
	return s.putRecord(ctx, projectKeyPrefix+project.ID, project, "update project")
}

// DeleteProject removes a project record. Absent records are a no-op.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, projectKeyPrefix+id, "delete project")
}

// putRecord encodes and writes a single keyed record.
func (s *Store) putRecord(ctx context.Context, key string, record interface{}, what string) error {
	if err := ctx.Err(); err != nil {
		return apperr.Fatal(what+" unavailable", err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return apperr.Fatal("encode "+what, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return apperr.Fatal(what, err)
	}
	return nil
}

// deleteRecord removes a single keyed record.
func (s *Store) deleteRecord(ctx context.Context, key, what string) error {
	if err := ctx.Err(); err != nil {
		return apperr.Fatal(what+" unavailable", err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil && err != badger.ErrKeyNotFound {
		return apperr.Fatal(what, err)
	}
	return nil
}
