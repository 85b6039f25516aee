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

// checkProjectUnique rejects with Conflict when the author already owns
// another project sharing name or slug with the candidate.
func (m *Manager) checkProjectUnique(ctx context.Context, author *models.Identity, candidate *models.Project) error {
	for _, siblingID := range author.OwnedProjectIDs {
		if siblingID == candidate.ID {
			continue
		}
		sibling, err := m.store.GetProject(ctx, siblingID)
		if err != nil {
			return err
		}
		if sibling == nil {
			logging.Warn().Str("identity_id", author.ID).Str("project_id", siblingID).
				Msg("Identity references missing project")
			continue
		}
		if sibling.Name == candidate.Name || sibling.Slug == candidate.Slug {
			return apperr.Conflict("a project with this name already exists for this author")
		}
	}
	return nil
}

// CreateProject creates a project and registers it with its author. The
// project record is written first; an author write failing afterwards is
// reported as a partial cascade.
func (m *Manager) CreateProject(ctx context.Context, author *models.Identity, name, description string, isPrivate bool) (*models.Project, error) {
	project := models.NewProject(name, author.ID, isPrivate)
	project.Description = description

	if err := m.checkProjectUnique(ctx, author, project); err != nil {
		RecordCascade("create_project", err)
		return nil, err
	}

	if err := m.store.CreateProject(ctx, project); err != nil {
		RecordCascade("create_project", err)
		return nil, err
	}

	author.OwnedProjectIDs, _ = appendMissing(author.OwnedProjectIDs, project.ID)
	author.UpdatedAt = touch()
	if err := m.store.UpdateIdentity(ctx, author); err != nil {
		RecordCascade("create_project", err)
		return nil, m.partial(ctx, "create_project", "project", project.ID, err)
	}

	m.audit(ctx, events.KindProjectCreated, "project", project.ID, author.ID, map[string]string{
		"slug": project.Slug,
	})
	RecordCascade("create_project", nil)
	return project, nil
}

// RenameProject renames a project, recomputing its slug and re-checking
// the author's uniqueness constraint.
func (m *Manager) RenameProject(ctx context.Context, author *models.Identity, project *models.Project, newName string) error {
	renamed := *project
	renamed.Name = newName
	renamed.Slug = models.Slugify(newName)

	if err := m.checkProjectUnique(ctx, author, &renamed); err != nil {
		RecordCascade("rename_project", err)
		return err
	}

	project.Name = renamed.Name
	project.Slug = renamed.Slug
	project.UpdatedAt = touch()
	err := m.store.UpdateProject(ctx, project)
	RecordCascade("rename_project", err)
	if err == nil {
		m.audit(ctx, events.KindProjectUpdated, "project", project.ID, author.ID, map[string]string{
			"slug": project.Slug,
		})
	}
	return err
}

// AddParticipant grants an identity read access to a project. Both sides of
// the relationship are updated, project first. Idempotent; the author is
// never listed as a participant.
func (m *Manager) AddParticipant(ctx context.Context, project *models.Project, participant *models.Identity) error {
	err := m.addParticipant(ctx, project, participant)
	RecordCascade("add_participant", err)
	return err
}

func (m *Manager) addParticipant(ctx context.Context, project *models.Project, participant *models.Identity) error {
	if participant.ID == project.AuthorID {
		return nil
	}

	ids, changed := appendMissing(project.ParticipantIDs, participant.ID)
	if changed {
		project.ParticipantIDs = ids
		project.UpdatedAt = touch()
		if err := m.store.UpdateProject(ctx, project); err != nil {
			return err
		}
	}

	back, changed := appendMissing(participant.ParticipatingProjectIDs, project.ID)
	if !changed {
		return nil
	}
	participant.ParticipatingProjectIDs = back
	participant.UpdatedAt = touch()
	if err := m.store.UpdateIdentity(ctx, participant); err != nil {
		return m.partial(ctx, "add_participant", "project", project.ID, err)
	}

	m.audit(ctx, events.KindParticipantAdded, "project", project.ID, "", map[string]string{
		"participant_id": participant.ID,
	})
	return nil
}

// RemoveParticipant revokes an identity's participation. Idempotent on
// both sides.
func (m *Manager) RemoveParticipant(ctx context.Context, project *models.Project, participant *models.Identity) error {
	err := m.removeParticipant(ctx, project, participant)
	RecordCascade("remove_participant", err)
	return err
}

func (m *Manager) removeParticipant(ctx context.Context, project *models.Project, participant *models.Identity) error {
	ids, changed := removePresent(project.ParticipantIDs, participant.ID)
	if changed {
		project.ParticipantIDs = ids
		project.UpdatedAt = touch()
		if err := m.store.UpdateProject(ctx, project); err != nil {
			return err
		}
	}

	back, changed := removePresent(participant.ParticipatingProjectIDs, project.ID)
	if !changed {
		return nil
	}
	participant.ParticipatingProjectIDs = back
	participant.UpdatedAt = touch()
	if err := m.store.UpdateIdentity(ctx, participant); err != nil {
		return m.partial(ctx, "remove_participant", "project", project.ID, err)
	}

	m.audit(ctx, events.KindParticipantRemoved, "project", project.ID, "", map[string]string{
		"participant_id": participant.ID,
	})
	return nil
}

// DeleteProject deletes a project, every building under it, and all list
// entries referring to it: the author's owned list and every participant's
// participating list.
func (m *Manager) DeleteProject(ctx context.Context, project *models.Project) error {
	err := m.deleteProject(ctx, project)
	RecordCascade("delete_project", err)
	return err
}

func (m *Manager) deleteProject(ctx context.Context, project *models.Project) error {
	for _, buildingID := range project.BuildingIDs {
		building, err := m.store.GetBuilding(ctx, buildingID)
		if err != nil {
			return err
		}
		if building == nil {
			continue
		}
		if err := m.deleteBuildingRecord(ctx, building); err != nil {
			return err
		}
		if err := m.detachBuildingFromAuthor(ctx, building); err != nil {
			return m.partial(ctx, "delete_project", "building", building.ID, err)
		}
	}

	if err := m.store.DeleteProject(ctx, project.ID); err != nil {
		return err
	}

	if err := m.detachProjectFromAuthor(ctx, project); err != nil {
		return m.partial(ctx, "delete_project", "project", project.ID, err)
	}

	for _, participantID := range project.ParticipantIDs {
		participant, err := m.store.GetIdentity(ctx, participantID)
		if err != nil {
			return m.partial(ctx, "delete_project", "project", project.ID, err)
		}
		if participant == nil {
			continue
		}
		ids, changed := removePresent(participant.ParticipatingProjectIDs, project.ID)
		if !changed {
			continue
		}
		participant.ParticipatingProjectIDs = ids
		participant.UpdatedAt = touch()
		if err := m.store.UpdateIdentity(ctx, participant); err != nil {
			return m.partial(ctx, "delete_project", "project", project.ID, err)
		}
	}

	m.audit(ctx, events.KindProjectDeleted, "project", project.ID, "", nil)
	return nil
}

// detachProjectFromAuthor drops the project id from the author's owned
// list. A missing author record is tolerated mid identity deletion.
func (m *Manager) detachProjectFromAuthor(ctx context.Context, project *models.Project) error {
	author, err := m.store.GetIdentity(ctx, project.AuthorID)
	if err != nil {
		return err
	}
	if author == nil {
		return nil
	}

	ids, changed := removePresent(author.OwnedProjectIDs, project.ID)
	if !changed {
		return nil
	}
	author.OwnedProjectIDs = ids
	author.UpdatedAt = touch()
	return m.store.UpdateIdentity(ctx, author)
}
