package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Producer is stamped on every envelope this service emits.
const Producer = "ares-whatsapp-router"

// Publisher emits events to a downstream transport.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// NewEnvelope wraps data with fresh metadata.
func NewEnvelope(eventType, correlationID string, data any) Envelope {
	return Envelope{
		Meta: Meta{
			ID:            uuid.NewString(),
			Type:          eventType,
			Time:          time.Now().UTC(),
			Producer:      Producer,
			CorrelationID: correlationID,
		},
		Data: data,
	}
}

// NopPublisher discards events; used when no transport is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Envelope) error { return nil }
func (NopPublisher) Close() error                           { return nil }
