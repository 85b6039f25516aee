// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package cascade

import (
	"context"

	"github.com/technoborsch/easyview/internal/apperr"
	"github.com/technoborsch/easyview/internal/events"
	"github.com/technoborsch/easyview/internal/logging"
	"github.com/technoborsch/easyview/internal/models"
)

// checkBuildingUnique rejects with Conflict when another building under the
// project shares name or slug with the candidate. Siblings are read live so
// a rename is always checked against current data.
func (m *Manager) checkBuildingUnique(ctx context.Context, project *models.Project, candidate *models.Building) error {
	for _, siblingID := range project.BuildingIDs {
		if siblingID == candidate.ID {
			continue
		}
		sibling, err := m.store.GetBuilding(ctx, siblingID)
		if err != nil {
			return err
		}
		if sibling == nil {
			// dangling index entry, tolerated until the next removal
			logging.Warn().Str("project_id", project.ID).Str("building_id", siblingID).
				Msg("Project references missing building")
			continue
		}
		if sibling.Name == candidate.Name || sibling.Slug == candidate.Slug {
			return apperr.Conflict("a building with this name already exists in the project")
		}
	}
	return nil
}

// AddBuilding registers a building in the project's building list. It
// enforces per-project name and slug uniqueness, then appends the id only
// when absent, so a repeated call produces a single entry.
func (m *Manager) AddBuilding(ctx context.Context, project *models.Project, building *models.Building) error {
	err := m.addBuilding(ctx, project, building)
	RecordCascade("add_building", err)
	return err
}

func (m *Manager) addBuilding(ctx context.Context, project *models.Project, building *models.Building) error {
	if err := m.checkBuildingUnique(ctx, project, building); err != nil {
		return err
	}

	ids, changed := appendMissing(project.BuildingIDs, building.ID)
	if !changed {
		return nil
	}
	project.BuildingIDs = ids
	project.UpdatedAt = touch()
	return m.store.UpdateProject(ctx, project)
}

// RemoveBuilding removes a building id from the project's building list.
// A no-op when the id is absent.
func (m *Manager) RemoveBuilding(ctx context.Context, project *models.Project, buildingID string) error {
	err := m.removeBuilding(ctx, project, buildingID)
	RecordCascade("remove_building", err)
	return err
}

func (m *Manager) removeBuilding(ctx context.Context, project *models.Project, buildingID string) error {
	ids, changed := removePresent(project.BuildingIDs, buildingID)
	if !changed {
		return nil
	}
	project.BuildingIDs = ids
	project.UpdatedAt = touch()
	return m.store.UpdateProject(ctx, project)
}

// CreateBuilding creates a building under a project and registers it with
// both the project and the author identity. The project list is written
// first; an identity write failing afterwards is reported as a partial
// cascade.
func (m *Manager) CreateBuilding(ctx context.Context, author *models.Identity, project *models.Project, name, description string) (*models.Building, error) {
	building := models.NewBuilding(name, project.ID, author.ID)
	building.Description = description

	if err := m.checkBuildingUnique(ctx, project, building); err != nil {
		RecordCascade("create_building", err)
		return nil, err
	}

	if err := m.store.CreateBuilding(ctx, building); err != nil {
		RecordCascade("create_building", err)
		return nil, err
	}

	if err := m.addBuilding(ctx, project, building); err != nil {
		RecordCascade("create_building", err)
		return nil, m.partial(ctx, "create_building", "building", building.ID, err)
	}

	author.OwnedBuildingIDs, _ = appendMissing(author.OwnedBuildingIDs, building.ID)
	author.UpdatedAt = touch()
	if err := m.store.UpdateIdentity(ctx, author); err != nil {
		RecordCascade("create_building", err)
		return nil, m.partial(ctx, "create_building", "building", building.ID, err)
	}

	m.audit(ctx, events.KindBuildingCreated, "building", building.ID, author.ID, map[string]string{
		"project_id": project.ID,
		"slug":       building.Slug,
	})
	RecordCascade("create_building", nil)
	return building, nil
}

// RenameBuilding renames a building, recomputing its slug and re-checking
// uniqueness among its siblings. The project index stores ids, not slugs,
// so no index refresh is needed.
func (m *Manager) RenameBuilding(ctx context.Context, project *models.Project, building *models.Building, newName string) error {
	renamed := *building
	renamed.Name = newName
	renamed.Slug = models.Slugify(newName)

	if err := m.checkBuildingUnique(ctx, project, &renamed); err != nil {
		RecordCascade("rename_building", err)
		return err
	}

	building.Name = renamed.Name
	building.Slug = renamed.Slug
	building.UpdatedAt = touch()
	err := m.store.UpdateBuilding(ctx, building)
	RecordCascade("rename_building", err)
	if err == nil {
		m.audit(ctx, events.KindBuildingUpdated, "building", building.ID, "", map[string]string{
			"slug": building.Slug,
		})
	}
	return err
}

// DeleteBuilding deletes a building, its viewpoints, and its entries in the
// project's and the author's lists.
func (m *Manager) DeleteBuilding(ctx context.Context, project *models.Project, building *models.Building) error {
	if err := m.deleteBuildingRecord(ctx, building); err != nil {
		RecordCascade("delete_building", err)
		return err
	}

	if err := m.removeBuilding(ctx, project, building.ID); err != nil {
		RecordCascade("delete_building", err)
		return m.partial(ctx, "delete_building", "building", building.ID, err)
	}

	if err := m.detachBuildingFromAuthor(ctx, building); err != nil {
		RecordCascade("delete_building", err)
		return m.partial(ctx, "delete_building", "building", building.ID, err)
	}

	m.audit(ctx, events.KindBuildingDeleted, "building", building.ID, "", map[string]string{
		"project_id": project.ID,
	})
	RecordCascade("delete_building", nil)
	return nil
}

// deleteBuildingRecord removes the building and every viewpoint under it.
func (m *Manager) deleteBuildingRecord(ctx context.Context, building *models.Building) error {
	viewpoints, err := m.store.ListViewpointsByBuilding(ctx, building.ID)
	if err != nil {
		return err
	}
	for _, vp := range viewpoints {
		if err := m.store.DeleteViewpoint(ctx, vp.ID); err != nil {
			return err
		}
	}
	return m.store.DeleteBuilding(ctx, building.ID)
}

// detachBuildingFromAuthor drops the building id from the author's owned
// list. A missing author record is tolerated: it happens mid identity
// deletion.
func (m *Manager) detachBuildingFromAuthor(ctx context.Context, building *models.Building) error {
	author, err := m.store.GetIdentity(ctx, building.AuthorID)
	if err != nil {
		return err
	}
	if author == nil {
		return nil
	}

	ids, changed := removePresent(author.OwnedBuildingIDs, building.ID)
	if !changed {
		return nil
	}
	author.OwnedBuildingIDs = ids
	author.UpdatedAt = touch()
	return m.store.UpdateIdentity(ctx, author)
}
