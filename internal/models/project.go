// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package models

import (
	"time"

	"github.com/google/uuid"
)

// Project groups buildings under a single author. (AuthorID, Name) and
// (AuthorID, Slug) are each unique: no author owns two projects with the
// same name or slug. BuildingIDs must always equal the set of buildings
// whose ProjectID is this project's id.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	AuthorID    string    `json:"author_id"`
	IsPrivate   bool      `json:"is_private"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// ParticipantIDs lists identities granted read access when the
	// project is private. Bidirectional with Identity.ParticipatingProjectIDs.
	ParticipantIDs []string `json:"participant_ids"`

	// BuildingIDs indexes the buildings under this project.
	BuildingIDs []string `json:"building_ids"`
}

// NewProject creates a project with a fresh id and a slug derived from name.
func NewProject(name, authorID string, isPrivate bool) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      Slugify(name),
		AuthorID:  authorID,
		IsPrivate: isPrivate,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasParticipant reports whether the given identity id is a participant.
func (p *Project) HasParticipant(identityID string) bool {
	for _, id := range p.ParticipantIDs {
		if id == identityID {
			return true
		}
	}
	return false
}
