package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/eventreg/internal/apperr"
	"github.com/geocoder89/eventreg/internal/domain/attendee"
	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/geocoder89/eventreg/internal/observability"
	"github.com/geocoder89/eventreg/internal/validation"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type RegistrationService struct {
	store   AttendeeStore
	log     *slog.Logger
	prom    *observability.Prom
	timeout time.Duration
}

func NewRegistrationService(store AttendeeStore, log *slog.Logger, prom *observability.Prom, timeout time.Duration) *RegistrationService {
	if log == nil {
		log = slog.Default()
	}
	return &RegistrationService{store: store, log: log, prom: prom, timeout: timeout}
}

// RegisterAttendee validates in and registers the attendee if the event has
// room and the email is not already registered for it.
func (s *RegistrationService) RegisterAttendee(ctx context.Context, in validation.CreateAttendeeInput) (attendee.Attendee, error) {
	ctx, span := tracer.Start(ctx, "RegistrationService.RegisterAttendee")
	defer span.End()

	a, err := s.register(ctx, in)

	result := "ok"
	if err != nil {
		result = string(apperr.KindOf(err))
		span.SetStatus(codes.Error, result)
	}
	span.SetAttributes(
		attribute.String("event.id", in.EventID),
		attribute.String("registration.result", result),
	)
	s.prom.RecordRegistration(result)

	return a, err
}

func (s *RegistrationService) register(ctx context.Context, in validation.CreateAttendeeInput) (attendee.Attendee, error) {
	req, err := validation.ValidateAttendee(in)
	if err != nil {
		return attendee.Attendee{}, err
	}

	if _, err := uuid.Parse(req.EventID); err != nil {
		return attendee.Attendee{}, apperr.NotFound("Event not found")
	}

	cctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	a, err := s.store.Register(cctx, req)
	if err != nil {
		switch {
		case errors.Is(err, event.ErrNotFound):
			return attendee.Attendee{}, apperr.NotFound("Event not found")
		case errors.Is(err, attendee.ErrEventFull):
			return attendee.Attendee{}, apperr.CapacityExceeded("Event is at full capacity")
		case errors.Is(err, attendee.ErrAlreadyRegistered):
			return attendee.Attendee{}, apperr.DuplicateRegistration("This email is already registered for this event")
		default:
			s.log.ErrorContext(ctx, "failed to create attendee", "event_id", req.EventID, "err", err)
			return attendee.Attendee{}, apperr.Persistence("Failed to create attendee", err)
		}
	}

	s.log.InfoContext(ctx, "attendee registered", "event_id", a.EventID, "attendee_id", a.ID)

	return a, nil
}
