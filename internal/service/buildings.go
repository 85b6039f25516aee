// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package service

import (
	"context"

	"github.com/technoborsch/easyview/internal/authz"
	"github.com/technoborsch/easyview/internal/cascade"
	"github.com/technoborsch/easyview/internal/models"
	"github.com/technoborsch/easyview/internal/store"
)

// BuildingService handles building lifecycle within projects.
type BuildingService struct {
	store   *store.Store
	authz   *authz.Engine
	cascade *cascade.Manager
}

// NewBuildingService creates the building service.
func NewBuildingService(st *store.Store, engine *authz.Engine, manager *cascade.Manager) *BuildingService {
	return &BuildingService{store: st, authz: engine, cascade: manager}
}

// CreateBuildingRequest declares the building creation fields.
type CreateBuildingRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=128"`
	Description string `json:"description" validate:"omitempty,max=2048"`
}

// Create creates a building under a project. Requires project modification
// rights; the name must be unique within the project.
func (s *BuildingService) Create(ctx context.Context, actor *models.Identity, projectID string, req CreateBuildingRequest) (*models.Building, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, s.store, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeBuildingCreate(actor, project); err != nil {
		return nil, err
	}
	return s.cascade.CreateBuilding(ctx, actor, project, req.Name, req.Description)
}

// Get returns a building the actor may read; visibility follows the
// parent project.
func (s *BuildingService) Get(ctx context.Context, actor *models.Identity, id string) (*models.Building, error) {
	building, project, err := loadBuilding(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeBuilding(actor, project, building, authz.ActionRead); err != nil {
		return nil, err
	}
	return building, nil
}

// UpdateBuildingRequest declares the mutable building fields.
type UpdateBuildingRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=128"`
	Description *string `json:"description" validate:"omitempty,max=2048"`
}

// Update mutates a building. A rename recomputes the slug and re-checks
// per-project uniqueness.
func (s *BuildingService) Update(ctx context.Context, actor *models.Identity, id string, req UpdateBuildingRequest) (*models.Building, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	building, project, err := loadBuilding(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeBuilding(actor, project, building, authz.ActionUpdate); err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != building.Name {
		if err := s.cascade.RenameBuilding(ctx, project, building, *req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		building.Description = *req.Description
		if err := s.store.UpdateBuilding(ctx, building); err != nil {
			return nil, err
		}
	}
	return building, nil
}

// Delete removes a building, its viewpoints, and its list entries.
func (s *BuildingService) Delete(ctx context.Context, actor *models.Identity, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	building, project, err := loadBuilding(ctx, s.store, id)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeBuilding(actor, project, building, authz.ActionDelete); err != nil {
		return err
	}
	return s.cascade.DeleteBuilding(ctx, project, building)
}
