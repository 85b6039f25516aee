// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package events

import (
	"context"

	"github.com/technoborsch/easyview/internal/logging"
)

// AuditWriter consumes audit events and writes them to the structured log.
// It runs as a supervised service.
type AuditWriter struct {
	bus *Bus
}

// NewAuditWriter creates an audit writer for the given bus.
func NewAuditWriter(bus *Bus) *AuditWriter {
	return &AuditWriter{bus: bus}
}

// String identifies the service in supervisor logs.
func (w *AuditWriter) String() string {
	return "audit-writer"
}

// Serve subscribes to the audit topic and logs every event until ctx is
// cancelled.
func (w *AuditWriter) Serve(ctx context.Context) error {
	messages, err := w.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, err := Decode(msg)
			if err != nil {
				logging.Error().Err(err).Str("message_id", msg.UUID).
					Msg("Dropped undecodable audit event")
				msg.Ack()
				continue
			}

			logging.Info().
				Str("event_id", event.EventID).
				Str("kind", event.Kind).
				Str("entity_type", event.EntityType).
				Str("entity_id", event.EntityID).
				Str("actor_id", event.ActorID).
				Interface("detail", event.Detail).
				Msg("Audit event")
			msg.Ack()
		}
	}
}
