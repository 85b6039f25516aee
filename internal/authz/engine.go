// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

// Package authz decides whether an identity may perform an action on an
// entity. Rules are ownership-transitive: a building's effective owner set
// is the building author plus the parent project author, and a viewpoint's
// mutation rights belong to its author and owners regardless of project
// ownership. Admins and moderators bypass every check.
//
// Denials carry one of two kinds. When the target is marked private and the
// requester has no visibility into it, the engine returns NotFound so that
// the denial does not confirm the resource exists. When the requester can
// see the resource but lacks the right, it returns Forbidden. The same
// convention applies to every entity kind, including viewpoints.
package authz

import (
	"github.com/technoborsch/easyview/internal/apperr"
	"github.com/technoborsch/easyview/internal/models"
)

// Action is an intended operation on an entity.
type Action int

const (
	ActionRead Action = iota
	ActionUpdate
	ActionDelete
)

// String returns the action name for logging and metrics.
func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Engine evaluates authorization rules. It is stateless and safe for
// concurrent use; callers supply the entity records the decision depends
// on, so the engine never touches storage.
type Engine struct{}

// NewEngine creates an authorization engine.
func NewEngine() *Engine {
	return &Engine{}
}

// privileged reports whether identity bypasses ownership checks.
// Anonymous (nil) identities are never privileged.
func privileged(identity *models.Identity) bool {
	return identity != nil && identity.IsPrivileged()
}

// canReadProject reports plain visibility without constructing errors.
func canReadProject(identity *models.Identity, project *models.Project) bool {
	if !project.IsPrivate {
		return true
	}
	if identity == nil {
		return false
	}
	if privileged(identity) {
		return true
	}
	return project.AuthorID == identity.ID || project.HasParticipant(identity.ID)
}

// AuthorizeProject checks an action against a project. Read requires
// visibility; update and delete require authorship.
func (e *Engine) AuthorizeProject(identity *models.Identity, project *models.Project, action Action) error {
	err := e.authorizeProject(identity, project, action)
	RecordDecision("project", action, err)
	return err
}

func (e *Engine) authorizeProject(identity *models.Identity, project *models.Project, action Action) error {
	if !canReadProject(identity, project) {
		return apperr.NotFound("project not found")
	}
	if action == ActionRead {
		return nil
	}
	if privileged(identity) {
		return nil
	}
	if identity != nil && project.AuthorID == identity.ID {
		return nil
	}
	return apperr.Forbidden("not allowed to modify this project")
}

// AuthorizeBuilding checks an action against a building. Visibility follows
// the parent project; mutation rights belong to the effective owner set,
// which is the building author plus the project author.
func (e *Engine) AuthorizeBuilding(identity *models.Identity, project *models.Project, building *models.Building, action Action) error {
	err := e.authorizeBuilding(identity, project, building, action)
	RecordDecision("building", action, err)
	return err
}

func (e *Engine) authorizeBuilding(identity *models.Identity, project *models.Project, building *models.Building, action Action) error {
	if !canReadProject(identity, project) {
		return apperr.NotFound("building not found")
	}
	if action == ActionRead {
		return nil
	}
	if privileged(identity) {
		return nil
	}
	if identity != nil && (building.AuthorID == identity.ID || project.AuthorID == identity.ID) {
		return nil
	}
	return apperr.Forbidden("not allowed to modify this building")
}

// AuthorizeViewpoint checks an action against a viewpoint. A non-public
// viewpoint is visible only to its author, its owners and privileged
// identities; update is restricted to the author, delete additionally to
// any owner.
func (e *Engine) AuthorizeViewpoint(identity *models.Identity, project *models.Project, viewpoint *models.Viewpoint, action Action) error {
	err := e.authorizeViewpoint(identity, project, viewpoint, action)
	RecordDecision("viewpoint", action, err)
	return err
}

func (e *Engine) authorizeViewpoint(identity *models.Identity, project *models.Project, viewpoint *models.Viewpoint, action Action) error {
	if !canReadProject(identity, project) {
		return apperr.NotFound("viewpoint not found")
	}

	isAuthor := identity != nil && viewpoint.AuthorID == identity.ID
	isOwner := identity != nil && viewpoint.HasOwner(identity.ID)
	visible := viewpoint.IsPublic || isAuthor || isOwner || privileged(identity)

	if !visible {
		return apperr.NotFound("viewpoint not found")
	}
	if action == ActionRead {
		return nil
	}
	if privileged(identity) {
		return nil
	}

	switch action {
	case ActionUpdate:
		if isAuthor {
			return nil
		}
	case ActionDelete:
		if isAuthor || isOwner {
			return nil
		}
	}
	return apperr.Forbidden("not allowed to modify this viewpoint")
}

// AuthorizeViewpointCreate delegates to project read authorization: any
// identity that may read the project may create viewpoints against its
// buildings.
func (e *Engine) AuthorizeViewpointCreate(identity *models.Identity, project *models.Project) error {
	err := e.authorizeProject(identity, project, ActionRead)
	RecordDecision("viewpoint_create", ActionRead, err)
	return err
}

// AuthorizeBuildingCreate requires project modification rights: only the
// project author or a privileged identity may add buildings to a project.
func (e *Engine) AuthorizeBuildingCreate(identity *models.Identity, project *models.Project) error {
	err := e.authorizeProject(identity, project, ActionUpdate)
	RecordDecision("building_create", ActionUpdate, err)
	return err
}

// AuthorizeIdentity checks whether actor may modify the target identity
// record: the identity itself or a privileged identity.
func (e *Engine) AuthorizeIdentity(actor *models.Identity, target *models.Identity, action Action) error {
	err := e.authorizeIdentity(actor, target, action)
	RecordDecision("identity", action, err)
	return err
}

func (e *Engine) authorizeIdentity(actor *models.Identity, target *models.Identity, action Action) error {
	if action == ActionRead {
		return nil
	}
	if privileged(actor) {
		return nil
	}
	if actor != nil && actor.ID == target.ID {
		return nil
	}
	return apperr.Forbidden("not allowed to modify this identity")
}
