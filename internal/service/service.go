// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

// Package service orchestrates entity operations: each call loads the
// records a decision needs, asks the authorization engine, and applies
// mutations through the cascade manager so denormalized lists stay
// consistent. Handlers above this layer do transport only; storage below
// it does persistence only.
package service

import (
	"context"

	"github.com/technoborsch/easyview/internal/apperr"
	"github.com/technoborsch/easyview/internal/models"
	"github.com/technoborsch/easyview/internal/store"
)

// TokenPair is an access/refresh credential pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Services bundles the per-entity services sharing one dependency set.
type Services struct {
	Identities *IdentityService
	Projects   *ProjectService
	Buildings  *BuildingService
	Viewpoints *ViewpointService
}

// requireActor guards mutating operations against anonymous callers. The
// middleware normally rejects these earlier; this is the service-level
// contract.
func requireActor(actor *models.Identity) error {
	if actor == nil {
		return apperr.Unauthenticated("authentication required")
	}
	return nil
}

// loadProject fetches a project, mapping absence to NotFound.
func loadProject(ctx context.Context, st *store.Store, id string) (*models.Project, error) {
	project, err := st.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("project not found")
	}
	return project, nil
}

// loadBuilding fetches a building and its parent project. Absence of
// either maps to NotFound; authorization decides whether the caller may
// learn more.
func loadBuilding(ctx context.Context, st *store.Store, id string) (*models.Building, *models.Project, error) {
	building, err := st.GetBuilding(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if building == nil {
		return nil, nil, apperr.NotFound("building not found")
	}

	project, err := st.GetProject(ctx, building.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if project == nil {
		return nil, nil, apperr.NotFound("building not found")
	}
	return building, project, nil
}
