// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package cascade

import (
	"context"

	"github.com/technoborsch/easyview/internal/events"
	"github.com/technoborsch/easyview/internal/models"
)

// CreateViewpoint persists a new viewpoint under a building. The author is
// its initial owner.
func (m *Manager) CreateViewpoint(ctx context.Context, author *models.Identity, viewpoint *models.Viewpoint) error {
	err := m.store.CreateViewpoint(ctx, viewpoint)
	RecordCascade("create_viewpoint", err)
	if err != nil {
		return err
	}

	m.audit(ctx, events.KindViewpointCreated, "viewpoint", viewpoint.ID, author.ID, map[string]string{
		"building_id": viewpoint.BuildingID,
	})
	return nil
}

// AddOwner grants an identity ownership of a viewpoint. Idempotent.
func (m *Manager) AddOwner(ctx context.Context, viewpoint *models.Viewpoint, identityID string) error {
	err := m.addOwner(ctx, viewpoint, identityID)
	RecordCascade("add_owner", err)
	return err
}

func (m *Manager) addOwner(ctx context.Context, viewpoint *models.Viewpoint, identityID string) error {
	ids, changed := appendMissing(viewpoint.OwnerIDs, identityID)
	if !changed {
		return nil
	}
	viewpoint.OwnerIDs = ids
	viewpoint.UpdatedAt = touch()
	if err := m.store.UpdateViewpoint(ctx, viewpoint); err != nil {
		return err
	}

	m.audit(ctx, events.KindOwnerAdded, "viewpoint", viewpoint.ID, "", map[string]string{
		"owner_id": identityID,
	})
	return nil
}

// RemoveOwner revokes an identity's ownership of a viewpoint. Removing the
// last owner deletes the viewpoint as a side effect of this call; the
// returned flag reports whether that happened. A no-op when the identity
// is not an owner.
func (m *Manager) RemoveOwner(ctx context.Context, viewpoint *models.Viewpoint, identityID string) (deleted bool, err error) {
	deleted, err = m.removeOwner(ctx, viewpoint, identityID)
	RecordCascade("remove_owner", err)
	return deleted, err
}

func (m *Manager) removeOwner(ctx context.Context, viewpoint *models.Viewpoint, identityID string) (bool, error) {
	ids, changed := removePresent(viewpoint.OwnerIDs, identityID)
	if !changed {
		return false, nil
	}
	viewpoint.OwnerIDs = ids

	if len(viewpoint.OwnerIDs) == 0 {
		if err := m.store.DeleteViewpoint(ctx, viewpoint.ID); err != nil {
			return false, err
		}
		m.audit(ctx, events.KindViewpointDeleted, "viewpoint", viewpoint.ID, "", map[string]string{
			"reason": "zero_owners",
		})
		return true, nil
	}

	viewpoint.UpdatedAt = touch()
	if err := m.store.UpdateViewpoint(ctx, viewpoint); err != nil {
		return false, err
	}

	m.audit(ctx, events.KindOwnerRemoved, "viewpoint", viewpoint.ID, "", map[string]string{
		"owner_id": identityID,
	})
	return false, nil
}

// DeleteViewpoint deletes a viewpoint explicitly, regardless of its owner
// count.
func (m *Manager) DeleteViewpoint(ctx context.Context, viewpoint *models.Viewpoint) error {
	err := m.store.DeleteViewpoint(ctx, viewpoint.ID)
	RecordCascade("delete_viewpoint", err)
	if err != nil {
		return err
	}

	m.audit(ctx, events.KindViewpointDeleted, "viewpoint", viewpoint.ID, "", nil)
	return nil
}
