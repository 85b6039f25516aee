// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	json "github.com/goccy/go-json"
)

// Bus is an in-process audit event bus backed by a Watermill gochannel
// pub/sub. Subscribers must be attached before events of interest are
// published; the channel is not persistent.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates the bus with a buffered output channel so that slow
// subscribers do not stall cascade writes.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			NewWatermillLogger(),
		),
	}
}

// Publish serializes and publishes an audit event. The event id and
// timestamp are filled in when unset.
func (b *Bus) Publish(ctx context.Context, event AuditEvent) error {
	if event.EventID == "" {
		event.EventID = watermill.NewUUID()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	msg := message.NewMessage(event.EventID, payload)
	msg.Metadata.Set("kind", event.Kind)
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(TopicAudit, msg); err != nil {
		return fmt.Errorf("failed to publish audit event: %w", err)
	}
	return nil
}

// Subscribe returns a channel of raw audit messages. The subscription ends
// when ctx is cancelled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, TopicAudit)
}

// Close shuts the bus down and terminates all subscriptions.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// Decode unmarshals an audit message payload.
func Decode(msg *message.Message) (AuditEvent, error) {
	var event AuditEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return AuditEvent{}, fmt.Errorf("failed to decode audit event: %w", err)
	}
	return event, nil
}
