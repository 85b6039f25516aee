// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

// Package events carries audit events for entity lifecycle changes over an
// in-process pub/sub bus. Cascade operations publish here; the audit writer
// subscribes and logs a structured trail. Delivery is best-effort: a failed
// publish never fails the mutation that triggered it.
package events

import "time"

// TopicAudit is the audit-trail topic.
const TopicAudit = "easyview.audit"

// Audit event kinds.
const (
	KindIdentityRegistered  = "identity.registered"
	KindIdentityDeactivated = "identity.deactivated"
	KindIdentityDeleted     = "identity.deleted"
	KindProjectCreated      = "project.created"
	KindProjectUpdated      = "project.updated"
	KindProjectDeleted      = "project.deleted"
	KindParticipantAdded    = "project.participant_added"
	KindParticipantRemoved  = "project.participant_removed"
	KindBuildingCreated     = "building.created"
	KindBuildingUpdated     = "building.updated"
	KindBuildingDeleted     = "building.deleted"
	KindViewpointCreated    = "viewpoint.created"
	KindViewpointUpdated    = "viewpoint.updated"
	KindViewpointDeleted    = "viewpoint.deleted"
	KindOwnerAdded          = "viewpoint.owner_added"
	KindOwnerRemoved        = "viewpoint.owner_removed"
	KindCascadePartial      = "cascade.partial_failure"
)

// AuditEvent records one entity lifecycle change.
type AuditEvent struct {
	EventID    string            `json:"event_id"`
	Kind       string            `json:"kind"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	ActorID    string            `json:"actor_id,omitempty"`
	Detail     map[string]string `json:"detail,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
