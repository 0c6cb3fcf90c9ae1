package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/eventreg/internal/apperr"
	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/geocoder89/eventreg/internal/validation"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type EventService struct {
	store   EventStore
	log     *slog.Logger
	timeout time.Duration
}

func NewEventService(store EventStore, log *slog.Logger, timeout time.Duration) *EventService {
	if log == nil {
		log = slog.Default()
	}
	return &EventService{store: store, log: log, timeout: timeout}
}

// ListEvents returns all events by ascending date with attendee counts.
func (s *EventService) ListEvents(ctx context.Context) ([]event.Summary, error) {
	ctx, span := tracer.Start(ctx, "EventService.ListEvents")
	defer span.End()

	cctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.store.List(cctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list events")
		s.log.ErrorContext(ctx, "failed to fetch events", "err", err)
		return nil, apperr.Persistence("Failed to fetch events", err)
	}

	span.SetAttributes(attribute.Int("events.count", len(items)))
	return items, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (event.Detail, error) {
	ctx, span := tracer.Start(ctx, "EventService.GetEvent")
	defer span.End()
	span.SetAttributes(attribute.String("event.id", id))

	// ids are UUIDs; anything else cannot name an event
	if _, err := uuid.Parse(id); err != nil {
		return event.Detail{}, apperr.NotFound("Event not found")
	}

	cctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	d, err := s.store.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			return event.Detail{}, apperr.NotFound("Event not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "get event")
		s.log.ErrorContext(ctx, "failed to fetch event", "event_id", id, "err", err)
		return event.Detail{}, apperr.Persistence("Failed to fetch event", err)
	}

	return d, nil
}

// CreateEvent validates in and persists a new event. Invalid input never
// reaches the store.
func (s *EventService) CreateEvent(ctx context.Context, in validation.CreateEventInput) (event.Event, error) {
	ctx, span := tracer.Start(ctx, "EventService.CreateEvent")
	defer span.End()

	req, err := validation.ValidateEvent(in)
	if err != nil {
		return event.Event{}, err
	}

	cctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	e, err := s.store.Create(cctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create event")
		s.log.ErrorContext(ctx, "failed to create event", "err", err)
		return event.Event{}, apperr.Persistence("Failed to create event", err)
	}

	span.SetAttributes(attribute.String("event.id", e.ID))
	s.log.InfoContext(ctx, "event created", "event_id", e.ID, "capacity", e.Capacity)

	return e, nil
}
