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

// ProjectService handles project lifecycle and participant management.
type ProjectService struct {
	store   *store.Store
	authz   *authz.Engine
	cascade *cascade.Manager
}

// NewProjectService creates the project service.
func NewProjectService(st *store.Store, engine *authz.Engine, manager *cascade.Manager) *ProjectService {
	return &ProjectService{store: st, authz: engine, cascade: manager}
}

// CreateProjectRequest declares the project creation fields.
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=128"`
	Description string `json:"description" validate:"omitempty,max=2048"`
	IsPrivate   bool   `json:"is_private"`
}

// Create creates a project authored by actor. The author may not own two
// projects sharing a name or slug.
func (s *ProjectService) Create(ctx context.Context, actor *models.Identity, req CreateProjectRequest) (*models.Project, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.cascade.CreateProject(ctx, actor, req.Name, req.Description, req.IsPrivate)
}

// Get returns a project the actor may read. Private projects are invisible
// to outsiders: the denial is NotFound, not Forbidden.
func (s *ProjectService) Get(ctx context.Context, actor *models.Identity, id string) (*models.Project, error) {
	project, err := loadProject(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeProject(actor, project, authz.ActionRead); err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProjectRequest declares the mutable project fields.
type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=128"`
	Description *string `json:"description" validate:"omitempty,max=2048"`
	IsPrivate   *bool   `json:"is_private"`
}

// Update mutates a project. A rename recomputes the slug and re-checks the
// author's uniqueness constraint.
func (s *ProjectService) Update(ctx context.Context, actor *models.Identity, id string, req UpdateProjectRequest) (*models.Project, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeProject(actor, project, authz.ActionUpdate); err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != project.Name {
		author, err := s.store.GetIdentity(ctx, project.AuthorID)
		if err != nil {
			return nil, err
		}
		if author == nil {
			return nil, apperr.NotFound("project not found")
		}
		if err := s.cascade.RenameProject(ctx, author, project, *req.Name); err != nil {
			return nil, err
		}
	}

	changed := false
	if req.Description != nil {
		project.Description = *req.Description
		changed = true
	}
	if req.IsPrivate != nil {
		project.IsPrivate = *req.IsPrivate
		changed = true
	}
	if changed {
		if err := s.store.UpdateProject(ctx, project); err != nil {
			return nil, err
		}
	}
	return project, nil
}

// Delete removes a project and cascades through its buildings and
// viewpoints.
func (s *ProjectService) Delete(ctx context.Context, actor *models.Identity, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	project, err := loadProject(ctx, s.store, id)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeProject(actor, project, authz.ActionDelete); err != nil {
		return err
	}
	return s.cascade.DeleteProject(ctx, project)
}

// AddParticipant grants an identity read access to a project. Only the
// project author or a privileged actor manages participants.
func (s *ProjectService) AddParticipant(ctx context.Context, actor *models.Identity, projectID, identityID string) error {
	project, participant, err := s.participantTarget(ctx, actor, projectID, identityID)
	if err != nil {
		return err
	}
	return s.cascade.AddParticipant(ctx, project, participant)
}

// RemoveParticipant revokes an identity's participation. Participants may
// also remove themselves.
func (s *ProjectService) RemoveParticipant(ctx context.Context, actor *models.Identity, projectID, identityID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	// self-removal needs only read visibility
	if actor.ID == identityID {
		project, err := s.Get(ctx, actor, projectID)
		if err != nil {
			return err
		}
		return s.cascade.RemoveParticipant(ctx, project, actor)
	}

	project, participant, err := s.participantTarget(ctx, actor, projectID, identityID)
	if err != nil {
		return err
	}
	return s.cascade.RemoveParticipant(ctx, project, participant)
}

func (s *ProjectService) participantTarget(ctx context.Context, actor *models.Identity, projectID, identityID string) (*models.Project, *models.Identity, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	project, err := loadProject(ctx, s.store, projectID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authz.AuthorizeProject(actor, project, authz.ActionUpdate); err != nil {
		return nil, nil, err
	}

	participant, err := s.store.GetIdentity(ctx, identityID)
	if err != nil {
		return nil, nil, err
	}
	if participant == nil {
		return nil, nil, apperr.NotFound("identity not found")
	}
	return project, participant, nil
}
