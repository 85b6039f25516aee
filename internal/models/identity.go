// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

// Package models defines the entity records of the EasyView backend.
//
// Records hold no behavior beyond pure accessors and carry no
// cross-references to services; all cascade logic lives in
// internal/cascade and all persistence in internal/store. This layering
// keeps the dependency graph acyclic: store and cascade depend on record
// shapes, never the other way around.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Identity is an account record. Email and Username are each globally
// unique among all records, active or not. IsActive=false is a soft-delete
// marker: the record remains and keeps holding its unique email/username.
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Name         string    `json:"name,omitempty"`
	PasswordHash []byte    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
	IsModerator  bool      `json:"is_moderator"`
	IsPremium    bool      `json:"is_premium"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// OwnedProjectIDs indexes the projects this identity authors.
	// Maintained by the cascade manager, bidirectional with Project.AuthorID.
	OwnedProjectIDs []string `json:"owned_project_ids"`

	// OwnedBuildingIDs indexes the buildings this identity authors.
	OwnedBuildingIDs []string `json:"owned_building_ids"`

	// ParticipatingProjectIDs indexes non-owned projects this identity
	// participates in, bidirectional with Project.ParticipantIDs.
	ParticipatingProjectIDs []string `json:"participating_project_ids"`
}

// NewIdentity creates an active identity with a fresh id.
func NewIdentity(email, username string, passwordHash []byte) *Identity {
	now := time.Now().UTC()
	return &Identity{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsPrivileged reports whether the identity bypasses ownership checks.
func (i *Identity) IsPrivileged() bool {
	return i != nil && (i.IsAdmin || i.IsModerator)
}

// Role constants for the flat role enum exposed over the API.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleRegular   = "regular"
)

// Role returns the identity's role name.
func (i *Identity) Role() string {
	switch {
	case i.IsAdmin:
		return RoleAdmin
	case i.IsModerator:
		return RoleModerator
	default:
		return RoleRegular
	}
}
