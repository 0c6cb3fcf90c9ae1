// Package service holds the event and registration operations exposed to the
// transport layer. Services validate input, bound every store call with a
// timeout, and translate store errors into apperr failures.
package service

import (
	"context"
	"time"

	"github.com/geocoder89/eventreg/internal/domain/attendee"
	"github.com/geocoder89/eventreg/internal/domain/event"
	"go.opentelemetry.io/otel"
)

const DefaultStoreTimeout = 3 * time.Second

var tracer = otel.Tracer("github.com/geocoder89/eventreg/internal/service")

type EventStore interface {
	Create(ctx context.Context, req event.CreateEventRequest) (event.Event, error)
	List(ctx context.Context) ([]event.Summary, error)
	GetByID(ctx context.Context, id string) (event.Detail, error)
}

// AttendeeStore must perform the capacity check and the insert atomically.
type AttendeeStore interface {
	Register(ctx context.Context, req attendee.CreateAttendeeRequest) (attendee.Attendee, error)
}

func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, d)
}
