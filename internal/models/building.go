// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package models

import (
	"time"

	"github.com/google/uuid"
)

// Building is a model inside a project. (ProjectID, Name) and
// (ProjectID, Slug) are each unique within the project. The slug is read
// live from this record, never cached on the project, so a rename cannot
// leave a stale slug behind.
type Building struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	ProjectID   string    `json:"project_id"`
	AuthorID    string    `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewBuilding creates a building with a fresh id and a slug derived from name.
func NewBuilding(name, projectID, authorID string) *Building {
	now := time.Now().UTC()
	return &Building{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      Slugify(name),
		ProjectID: projectID,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
