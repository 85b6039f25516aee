// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package models

import (
	"time"

	"github.com/google/uuid"
)

// Viewpoint is a saved camera position inside a building. OwnerIDs is
// non-empty while the record exists; the cascade manager deletes the record
// when the last owner is removed.
type Viewpoint struct {
	ID          string    `json:"id"`
	BuildingID  string    `json:"building_id"`
	AuthorID    string    `json:"author_id"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// OwnerIDs lists identities entitled to delete this viewpoint.
	OwnerIDs []string `json:"owner_ids"`

	// Camera state.
	Position         [3]float64 `json:"position"`
	Quaternion       [4]float64 `json:"quaternion"`
	FOV              float64    `json:"fov"`
	DistanceToTarget float64    `json:"distance_to_target"`

	// Clip plane state: one status flag and one constant per plane.
	ClipConstantsStatus [6]bool    `json:"clip_constants_status"`
	ClipConstants       [6]float64 `json:"clip_constants"`
}

// NewViewpoint creates a viewpoint authored and initially owned by authorID.
func NewViewpoint(buildingID, authorID string) *Viewpoint {
	now := time.Now().UTC()
	return &Viewpoint{
		ID:         uuid.NewString(),
		BuildingID: buildingID,
		AuthorID:   authorID,
		OwnerIDs:   []string{authorID},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// HasOwner reports whether the given identity id is in the owner set.
func (v *Viewpoint) HasOwner(identityID string) bool {
	for _, id := range v.OwnerIDs {
		if id == identityID {
			return true
		}
	}
	return false
}
