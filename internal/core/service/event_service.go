package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartlpd/enforcement-api/internal/api/metrics"
	"github.com/smartlpd/enforcement-api/internal/core/domain"
	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

type eventService struct {
	audit     ports.FineEventRepository
	publisher ports.EventPublisher
	log       zerolog.Logger
}

// NewEventService returns a FineEventProcessor. publisher may be nil.
func NewEventService(
	audit ports.FineEventRepository,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) ports.FineEventProcessor {
	return &eventService{
		audit:     audit,
		publisher: publisher,
		log:       log,
	}
}

// Process records and publishes a single fine event. The audit store keys
// events by id, so recording the same event twice is harmless.
func (s *eventService) Process(ctx context.Context, event domain.FineEvent) error {
	start := time.Now()
	defer func() {
		metrics.FineEventProcessingDuration.WithLabelValues(string(event.Type)).Observe(time.Since(start).Seconds())
	}()

	if err := s.audit.Insert(ctx, event); err != nil {
		metrics.FineEventsErrorsTotal.WithLabelValues("audit").Inc()
		return fmt.Errorf("process fine event: audit: %w", err)
	}

	// Publishing is best effort; the audit record is the source of truth.
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			metrics.FineEventsErrorsTotal.WithLabelValues("publish").Inc()
			s.log.Warn().Err(err).Str("event_id", event.ID).Msg("failed to publish fine event")
		}
	}

	metrics.FineEventsProcessedTotal.WithLabelValues(string(event.Type)).Inc()
	s.log.Info().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Int64("fine_id", event.FineID).
		Str("actor", event.Actor).
		Msg("fine event processed")

	return nil
}
