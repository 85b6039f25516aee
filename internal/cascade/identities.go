// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package cascade

import (
	"context"
	"fmt"

	"github.com/technoborsch/easyview/internal/events"
	"github.com/technoborsch/easyview/internal/models"
)

// DeleteIdentity runs the full deletion cascade for an identity, in order:
//
//  1. delete every project the identity authors, which recursively deletes
//     those projects' buildings and viewpoints;
//  2. drop every credential-store record keyed by the identity, so no
//     outstanding token survives the deletion;
//  3. remove the identity from the participant list of every project it
//     participates in but does not own;
//  4. delete the identity record itself.
//
// Each step is idempotent, so a cascade interrupted by a Fatal error can be
// re-run after reconciliation.
func (m *Manager) DeleteIdentity(ctx context.Context, identity *models.Identity) error {
	err := m.deleteIdentity(ctx, identity)
	RecordCascade("delete_identity", err)
	return err
}

func (m *Manager) deleteIdentity(ctx context.Context, identity *models.Identity) error {
	for _, projectID := range identity.OwnedProjectIDs {
		project, err := m.store.GetProject(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			continue
		}
		if err := m.deleteProject(ctx, project); err != nil {
			return err
		}
	}

	if m.creds != nil {
		if err := m.creds.RevokeAllForIdentity(ctx, identity.ID); err != nil {
			return m.partial(ctx, "delete_identity", "identity", identity.ID, err)
		}
	}

	// Project deletion above updated the stored identity record; re-read it
	// so the participation list reflects those writes.
	current, err := m.store.GetIdentity(ctx, identity.ID)
	if err != nil {
		return m.partial(ctx, "delete_identity", "identity", identity.ID, err)
	}
	if current == nil {
		return m.partial(ctx, "delete_identity", "identity", identity.ID,
			fmt.Errorf("identity record vanished mid-cascade"))
	}

	for _, projectID := range current.ParticipatingProjectIDs {
		project, err := m.store.GetProject(ctx, projectID)
		if err != nil {
			return m.partial(ctx, "delete_identity", "identity", identity.ID, err)
		}
		if project == nil {
			continue
		}
		ids, changed := removePresent(project.ParticipantIDs, identity.ID)
		if !changed {
			continue
		}
		project.ParticipantIDs = ids
		project.UpdatedAt = touch()
		if err := m.store.UpdateProject(ctx, project); err != nil {
			return m.partial(ctx, "delete_identity", "identity", identity.ID, err)
		}
	}

	if err := m.store.DeleteIdentity(ctx, identity.ID); err != nil {
		return m.partial(ctx, "delete_identity", "identity", identity.ID, err)
	}

	m.audit(ctx, events.KindIdentityDeleted, "identity", identity.ID, "", nil)
	return nil
}
