package ports

import (
	"context"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
)

// FineEventSink accepts fine lifecycle events for asynchronous processing.
type FineEventSink interface {
	Enqueue(event domain.FineEvent)
}

// FineEventProcessor handles one fine event.
type FineEventProcessor interface {
	Process(ctx context.Context, event domain.FineEvent) error
}

// FineEventRepository persists fine events to the audit trail.
type FineEventRepository interface {
	Insert(ctx context.Context, event domain.FineEvent) error
}

// EventPublisher delivers fine events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.FineEvent) error
}
