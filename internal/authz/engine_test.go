// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package authz

import (
	"testing"

	"github.com/technoborsch/easyview/internal/apperr"
	"github.com/technoborsch/easyview/internal/models"
)

func identity(id string) *models.Identity {
	return &models.Identity{ID: id, IsActive: true}
}

func admin(id string) *models.Identity {
	i := identity(id)
	i.IsAdmin = true
	return i
}

func moderator(id string) *models.Identity {
	i := identity(id)
	i.IsModerator = true
	return i
}

// wantKind asserts err carries the expected kind; kind 0 means allow.
func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if kind == apperr.KindUnknown {
		if err != nil {
			t.Errorf("expected allow, got %v", err)
		}
		return
	}
	if apperr.KindOf(err) != kind {
		t.Errorf("error = %v, want kind %v", err, kind)
	}
}

func TestAuthorizeProject(t *testing.T) {
	public := &models.Project{ID: "p1", AuthorID: "author"}
	private := &models.Project{ID: "p2", AuthorID: "author", IsPrivate: true, ParticipantIDs: []string{"member"}}

	tests := []struct {
		name     string
		identity *models.Identity
		project  *models.Project
		action   Action
		want     apperr.Kind
	}{
		{"anonymous reads public", nil, public, ActionRead, apperr.KindUnknown},
		{"anonymous reads private", nil, private, ActionRead, apperr.KindNotFound},
		{"anonymous updates public", nil, public, ActionUpdate, apperr.KindForbidden},
		{"stranger reads public", identity("stranger"), public, ActionRead, apperr.KindUnknown},
		{"stranger reads private", identity("stranger"), private, ActionRead, apperr.KindNotFound},
		{"stranger updates public", identity("stranger"), public, ActionUpdate, apperr.KindForbidden},
		{"stranger deletes private", identity("stranger"), private, ActionDelete, apperr.KindNotFound},
		{"participant reads private", identity("member"), private, ActionRead, apperr.KindUnknown},
		{"participant updates private", identity("member"), private, ActionUpdate, apperr.KindForbidden},
		{"author updates private", identity("author"), private, ActionUpdate, apperr.KindUnknown},
		{"author deletes public", identity("author"), public, ActionDelete, apperr.KindUnknown},
		{"admin updates private", admin("root"), private, ActionUpdate, apperr.KindUnknown},
		{"moderator reads private", moderator("mod"), private, ActionRead, apperr.KindUnknown},
	}

	e := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantKind(t, e.AuthorizeProject(tt.identity, tt.project, tt.action), tt.want)
		})
	}
}

func TestAuthorizeBuilding(t *testing.T) {
	projectAuthor := "p-author"
	buildingAuthor := "b-author"
	public := &models.Project{ID: "p1", AuthorID: projectAuthor}
	private := &models.Project{ID: "p2", AuthorID: projectAuthor, IsPrivate: true, ParticipantIDs: []string{"member"}}
	building := &models.Building{ID: "b1", AuthorID: buildingAuthor, ProjectID: "p1"}

	tests := []struct {
		name     string
		identity *models.Identity
		project  *models.Project
		action   Action
		want     apperr.Kind
	}{
		{"anonymous reads in public project", nil, public, ActionRead, apperr.KindUnknown},
		{"anonymous reads in private project", nil, private, ActionRead, apperr.KindNotFound},
		{"building author updates", identity(buildingAuthor), public, ActionUpdate, apperr.KindUnknown},
		{"project author deletes", identity(projectAuthor), public, ActionDelete, apperr.KindUnknown},
		{"participant updates in private project", identity("member"), private, ActionUpdate, apperr.KindForbidden},
		{"stranger updates in private project", identity("stranger"), private, ActionUpdate, apperr.KindNotFound},
		{"stranger updates in public project", identity("stranger"), public, ActionUpdate, apperr.KindForbidden},
		{"admin deletes", admin("root"), private, ActionDelete, apperr.KindUnknown},
	}

	e := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantKind(t, e.AuthorizeBuilding(tt.identity, tt.project, building, tt.action), tt.want)
		})
	}
}

func TestAuthorizeViewpoint(t *testing.T) {
	project := &models.Project{ID: "p1", AuthorID: "p-author"}
	publicVP := &models.Viewpoint{ID: "v1", AuthorID: "v-author", OwnerIDs: []string{"v-author", "co-owner"}, IsPublic: true}
	privateVP := &models.Viewpoint{ID: "v2", AuthorID: "v-author", OwnerIDs: []string{"v-author", "co-owner"}}

	tests := []struct {
		name      string
		identity  *models.Identity
		viewpoint *models.Viewpoint
		action    Action
		want      apperr.Kind
	}{
		{"anonymous reads public viewpoint", nil, publicVP, ActionRead, apperr.KindUnknown},
		{"anonymous reads private viewpoint", nil, privateVP, ActionRead, apperr.KindNotFound},
		{"stranger reads private viewpoint", identity("stranger"), privateVP, ActionRead, apperr.KindNotFound},
		{"co-owner reads private viewpoint", identity("co-owner"), privateVP, ActionRead, apperr.KindUnknown},
		{"author updates", identity("v-author"), privateVP, ActionUpdate, apperr.KindUnknown},
		{"co-owner updates", identity("co-owner"), privateVP, ActionUpdate, apperr.KindForbidden},
		{"co-owner deletes", identity("co-owner"), privateVP, ActionDelete, apperr.KindUnknown},
		{"stranger updates public viewpoint", identity("stranger"), publicVP, ActionUpdate, apperr.KindForbidden},
		{"project author cannot update foreign viewpoint", identity("p-author"), publicVP, ActionUpdate, apperr.KindForbidden},
		{"admin updates", admin("root"), privateVP, ActionUpdate, apperr.KindUnknown},
	}

	e := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantKind(t, e.AuthorizeViewpoint(tt.identity, project, tt.viewpoint, tt.action), tt.want)
		})
	}
}

func TestAuthorizeViewpointHiddenInPrivateProject(t *testing.T) {
	private := &models.Project{ID: "p2", AuthorID: "p-author", IsPrivate: true}
	publicVP := &models.Viewpoint{ID: "v1", AuthorID: "v-author", OwnerIDs: []string{"v-author"}, IsPublic: true}

	e := NewEngine()
	err := e.AuthorizeViewpoint(identity("stranger"), private, publicVP, ActionRead)
	wantKind(t, err, apperr.KindNotFound)
}

func TestAuthorizeViewpointCreate(t *testing.T) {
	private := &models.Project{ID: "p2", AuthorID: "author", IsPrivate: true, ParticipantIDs: []string{"member"}}

	tests := []struct {
		name     string
		identity *models.Identity
		want     apperr.Kind
	}{
		{"participant may create", identity("member"), apperr.KindUnknown},
		{"author may create", identity("author"), apperr.KindUnknown},
		{"stranger may not", identity("stranger"), apperr.KindNotFound},
		{"anonymous may not", nil, apperr.KindNotFound},
	}

	e := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantKind(t, e.AuthorizeViewpointCreate(tt.identity, private), tt.want)
		})
	}
}

func TestAuthorizeBuildingCreate(t *testing.T) {
	private := &models.Project{ID: "p2", AuthorID: "author", IsPrivate: true, ParticipantIDs: []string{"member"}}

	tests := []struct {
		name     string
		identity *models.Identity
		want     apperr.Kind
	}{
		{"author may create", identity("author"), apperr.KindUnknown},
		{"participant may not", identity("member"), apperr.KindForbidden},
		{"stranger may not", identity("stranger"), apperr.KindNotFound},
		{"admin may create", admin("root"), apperr.KindUnknown},
	}

	e := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantKind(t, e.AuthorizeBuildingCreate(tt.identity, private), tt.want)
		})
	}
}

func TestAuthorizeIdentity(t *testing.T) {
	target := identity("target")

	tests := []struct {
		name   string
		actor  *models.Identity
		action Action
		want   apperr.Kind
	}{
		{"self may update", identity("target"), ActionUpdate, apperr.KindUnknown},
		{"other may not update", identity("other"), ActionUpdate, apperr.KindForbidden},
		{"other may read", identity("other"), ActionRead, apperr.KindUnknown},
		{"admin may delete", admin("root"), ActionDelete, apperr.KindUnknown},
		{"moderator may update", moderator("mod"), ActionUpdate, apperr.KindUnknown},
	}

	e := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantKind(t, e.AuthorizeIdentity(tt.actor, target, tt.action), tt.want)
		})
	}
}
