// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package service

import (
	"context"

	"github.com/technoborsch/easyview/internal/apperr"
	"github.com/technoborsch/easyview/internal/authz"
	"github.com/technoborsch/easyview/internal/cascade"
	"github.com/technoborsch/easyview/internal/models"
	"github.com/technoborsch/easyview/internal/store"
)

// ViewpointService handles viewpoint lifecycle and ownership.
type ViewpointService struct {
	store   *store.Store
	authz   *authz.Engine
	cascade *cascade.Manager
}

// NewViewpointService creates the viewpoint service.
func NewViewpointService(st *store.Store, engine *authz.Engine, manager *cascade.Manager) *ViewpointService {
	return &ViewpointService{store: st, authz: engine, cascade: manager}
}

// CreateViewpointRequest declares the camera state captured by a viewpoint.
type CreateViewpointRequest struct {
	Description         string     `json:"description" validate:"omitempty,max=2048"`
	IsPublic            bool       `json:"is_public"`
	Position            [3]float64 `json:"position"`
	Quaternion          [4]float64 `json:"quaternion" validate:"quaternion"`
	FOV                 float64    `json:"fov" validate:"required,gt=0,lte=180"`
	DistanceToTarget    float64    `json:"distance_to_target" validate:"omitempty,gte=0"`
	ClipConstantsStatus [6]bool    `json:"clip_constants_status"`
	ClipConstants       [6]float64 `json:"clip_constants"`
}

// Create captures a viewpoint under a building. Anyone who may read the
// parent project may create viewpoints; the author becomes the initial
// owner.
func (s *ViewpointService) Create(ctx context.Context, actor *models.Identity, buildingID string, req CreateViewpointRequest) (*models.Viewpoint, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	building, project, err := loadBuilding(ctx, s.store, buildingID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeViewpointCreate(actor, project); err != nil {
		return nil, err
	}

	viewpoint := models.NewViewpoint(building.ID, actor.ID)
	viewpoint.Description = req.Description
	viewpoint.IsPublic = req.IsPublic
	viewpoint.Position = req.Position
	viewpoint.Quaternion = req.Quaternion
	viewpoint.FOV = req.FOV
	viewpoint.DistanceToTarget = req.DistanceToTarget
	viewpoint.ClipConstantsStatus = req.ClipConstantsStatus
	viewpoint.ClipConstants = req.ClipConstants

	if err := s.cascade.CreateViewpoint(ctx, actor, viewpoint); err != nil {
		return nil, err
	}
	return viewpoint, nil
}

// load fetches a viewpoint with its building and project context.
func (s *ViewpointService) load(ctx context.Context, id string) (*models.Viewpoint, *models.Project, error) {
	viewpoint, err := s.store.GetViewpoint(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if viewpoint == nil {
		return nil, nil, apperr.NotFound("viewpoint not found")
	}

	_, project, err := loadBuilding(ctx, s.store, viewpoint.BuildingID)
	if err != nil {
		return nil, nil, err
	}
	return viewpoint, project, nil
}

// Get returns a viewpoint the actor may read.
func (s *ViewpointService) Get(ctx context.Context, actor *models.Identity, id string) (*models.Viewpoint, error) {
	viewpoint, project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeViewpoint(actor, project, viewpoint, authz.ActionRead); err != nil {
		return nil, err
	}
	return viewpoint, nil
}

// List returns the viewpoints under a building that the actor may read.
// Non-public viewpoints belonging to others are filtered out rather than
// failing the whole listing.
func (s *ViewpointService) List(ctx context.Context, actor *models.Identity, buildingID string) ([]*models.Viewpoint, error) {
	_, project, err := loadBuilding(ctx, s.store, buildingID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeProject(actor, project, authz.ActionRead); err != nil {
		return nil, err
	}

	all, err := s.store.ListViewpointsByBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	visible := make([]*models.Viewpoint, 0, len(all))
	for _, vp := range all {
		if s.authz.AuthorizeViewpoint(actor, project, vp, authz.ActionRead) == nil {
			visible = append(visible, vp)
		}
	}
	return visible, nil
}

// UpdateViewpointRequest declares the mutable viewpoint fields.
type UpdateViewpointRequest struct {
	Description *string `json:"description" validate:"omitempty,max=2048"`
	IsPublic    *bool   `json:"is_public"`
}

// Update mutates a viewpoint. Only its author may do so.
func (s *ViewpointService) Update(ctx context.Context, actor *models.Identity, id string, req UpdateViewpointRequest) (*models.Viewpoint, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	viewpoint, project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeViewpoint(actor, project, viewpoint, authz.ActionUpdate); err != nil {
		return nil, err
	}

	if req.Description != nil {
		viewpoint.Description = *req.Description
	}
	if req.IsPublic != nil {
		viewpoint.IsPublic = *req.IsPublic
	}
	if err := s.store.UpdateViewpoint(ctx, viewpoint); err != nil {
		return nil, err
	}
	return viewpoint, nil
}

// Delete removes a viewpoint explicitly. The author or any owner may
// delete.
func (s *ViewpointService) Delete(ctx context.Context, actor *models.Identity, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	viewpoint, project, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeViewpoint(actor, project, viewpoint, authz.ActionDelete); err != nil {
		return err
	}
	return s.cascade.DeleteViewpoint(ctx, viewpoint)
}

// AddOwner grants another identity ownership of a viewpoint. Requires the
// author's update right; the target identity must exist.
func (s *ViewpointService) AddOwner(ctx context.Context, actor *models.Identity, id, identityID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	viewpoint, project, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeViewpoint(actor, project, viewpoint, authz.ActionUpdate); err != nil {
		return err
	}

	target, err := s.store.GetIdentity(ctx, identityID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperr.NotFound("identity not found")
	}
	return s.cascade.AddOwner(ctx, viewpoint, identityID)
}

// RemoveOwner revokes an identity's ownership. Owners may remove
// themselves; removing someone else requires the author's update right.
// Removing the last owner deletes the viewpoint; the returned flag
// reports that.
func (s *ViewpointService) RemoveOwner(ctx context.Context, actor *models.Identity, id, identityID string) (deleted bool, err error) {
	if err := requireActor(actor); err != nil {
		return false, err
	}
	viewpoint, project, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}

	if actor.ID != identityID {
		if err := s.authz.AuthorizeViewpoint(actor, project, viewpoint, authz.ActionUpdate); err != nil {
			return false, err
		}
	} else if err := s.authz.AuthorizeViewpoint(actor, project, viewpoint, authz.ActionRead); err != nil {
		return false, err
	}

	return s.cascade.RemoveOwner(ctx, viewpoint, identityID)
}
