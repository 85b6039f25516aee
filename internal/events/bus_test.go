// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package events

import (
	"context"
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus()
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	sent := AuditEvent{
		Kind:       KindProjectCreated,
		EntityType: "project",
		EntityID:   "p1",
		ActorID:    "i1",
		Detail:     map[string]string{"name": "Refinery Unit 4"},
	}
	if err := bus.Publish(ctx, sent); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	select {
	case msg := <-messages:
		got, err := Decode(msg)
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		msg.Ack()

		if got.Kind != sent.Kind || got.EntityID != sent.EntityID || got.ActorID != sent.ActorID {
			t.Errorf("decoded event = %+v, want fields from %+v", got, sent)
		}
		if got.EventID == "" {
			t.Error("event id was not filled in")
		}
		if got.OccurredAt.IsZero() {
			t.Error("timestamp was not filled in")
		}
		if msg.Metadata.Get("kind") != KindProjectCreated {
			t.Errorf("metadata kind = %q, want %q", msg.Metadata.Get("kind"), KindProjectCreated)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for audit message")
	}
}

func TestPublishPreservesExplicitID(t *testing.T) {
	bus := NewBus()
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	when := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := bus.Publish(ctx, AuditEvent{
		EventID:    "evt-42",
		Kind:       KindOwnerRemoved,
		EntityType: "viewpoint",
		EntityID:   "v1",
		OccurredAt: when,
	}); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	select {
	case msg := <-messages:
		got, err := Decode(msg)
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		msg.Ack()

		if got.EventID != "evt-42" {
			t.Errorf("event id = %q, want evt-42", got.EventID)
		}
		if !got.OccurredAt.Equal(when) {
			t.Errorf("timestamp = %v, want %v", got.OccurredAt, when)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for audit message")
	}
}
