// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

// Package cascade keeps the denormalized membership lists consistent across
// identities, projects, buildings and viewpoints. Every relationship is
// maintained by explicit sequenced operations, never by persistence hooks:
// list additions enforce name/slug uniqueness and are idempotent, removals
// are idempotent no-ops when the id is absent.
//
// Writes that touch two entities follow a two-step contract: the parent
// list is written first and the subordinate list only if that succeeded.
// A failure between the steps is reported as a Fatal error and an audit
// event; it is never retried automatically, because every list operation
// is idempotent and a manual re-run is safe.
package cascade

import (
	"context"
	"time"

	"github.com/technoborsch/easyview/internal/apperr"
	"github.com/technoborsch/easyview/internal/events"
	"github.com/technoborsch/easyview/internal/logging"
	"github.com/technoborsch/easyview/internal/store"
)

// CredentialRevoker drops all credential-store records for an identity.
// Satisfied by the token service.
type CredentialRevoker interface {
	RevokeAllForIdentity(ctx context.Context, identityID string) error
}

// Publisher emits audit events for cascade mutations.
type Publisher interface {
	Publish(ctx context.Context, event events.AuditEvent) error
}

// Manager orchestrates cascade writes against the entity store.
type Manager struct {
	store *store.Store
	creds CredentialRevoker
	bus   Publisher
}

// NewManager creates a cascade manager. creds and bus may be nil in tests
// that exercise list maintenance only.
func NewManager(st *store.Store, creds CredentialRevoker, bus Publisher) *Manager {
	return &Manager{store: st, creds: creds, bus: bus}
}

// appendMissing adds id to list unless already present.
func appendMissing(list []string, id string) ([]string, bool) {
	for _, existing := range list {
		if existing == id {
			return list, false
		}
	}
	return append(list, id), true
}

// removePresent removes id from list if present.
func removePresent(list []string, id string) ([]string, bool) {
	for i, existing := range list {
		if existing == id {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}

// audit publishes an audit event; publish failures are logged, never
// propagated into the mutation path.
func (m *Manager) audit(ctx context.Context, kind, entityType, entityID, actorID string, detail map[string]string) {
	if m.bus == nil {
		return
	}
	err := m.bus.Publish(ctx, events.AuditEvent{
		Kind:       kind,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Detail:     detail,
	})
	if err != nil {
		logging.Error().Err(err).Str("kind", kind).Str("entity_id", entityID).
			Msg("Failed to publish audit event")
	}
}

// partial reports a cascade left half-applied: the failure is logged with
// full context, recorded on the audit trail, and surfaced as Fatal.
func (m *Manager) partial(ctx context.Context, operation, entityType, entityID string, err error) error {
	logging.Error().Err(err).
		Str("operation", operation).
		Str("entity_type", entityType).
		Str("entity_id", entityID).
		Msg("Cascade partially applied; manual reconciliation required")

	m.audit(ctx, events.KindCascadePartial, entityType, entityID, "", map[string]string{
		"operation": operation,
	})
	return apperr.Fatal("operation partially applied", err)
}

func touch() time.Time {
	return time.Now().UTC()
}
