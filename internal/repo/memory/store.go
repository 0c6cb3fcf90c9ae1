package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/geocoder89/eventreg/internal/domain/attendee"
	"github.com/geocoder89/eventreg/internal/domain/event"
)

// Store keeps events and attendees in process memory. Register holds the
// write lock for the whole check-and-insert, so the capacity invariant holds
// for concurrent callers within one process.
type Store struct {
	mu        sync.RWMutex
	events    map[string]event.Event
	attendees map[string][]attendee.Attendee // event id -> attendees in registration order
}

func NewStore() *Store {
	return &Store{
		events:    make(map[string]event.Event),
		attendees: make(map[string][]attendee.Attendee),
	}
}

func (s *Store) Create(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}

	e := event.NewFromCreateRequest(req)

	s.mu.Lock()
	s.events[e.ID] = e
	s.mu.Unlock()

	return e, nil
}

func (s *Store) List(ctx context.Context) ([]event.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]event.Summary, 0, len(s.events))
	for id, e := range s.events {
		out = append(out, event.Summary{Event: e, AttendeeCount: len(s.attendees[id])})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (event.Detail, error) {
	if err := ctx.Err(); err != nil {
		return event.Detail{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return event.Detail{}, event.ErrNotFound
	}

	regs := make([]attendee.Attendee, len(s.attendees[id]))
	copy(regs, s.attendees[id])

	return event.Detail{Event: e, Attendees: regs}, nil
}

func (s *Store) Register(ctx context.Context, req attendee.CreateAttendeeRequest) (attendee.Attendee, error) {
	if err := ctx.Err(); err != nil {
		return attendee.Attendee{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[req.EventID]
	if !ok {
		return attendee.Attendee{}, fmt.Errorf("register %s: %w", req.EventID, event.ErrNotFound)
	}

	current := s.attendees[req.EventID]
	for _, a := range current {
		if a.Email == req.Email {
			return attendee.Attendee{}, attendee.ErrAlreadyRegistered
		}
	}

	if e.IsFull(len(current)) {
		return attendee.Attendee{}, attendee.ErrEventFull
	}

	a := attendee.NewFromCreateRequest(req)
	s.attendees[req.EventID] = append(current, a)

	return a, nil
}

// CountAttendees returns the number of attendees registered for eventID.
func (s *Store) CountAttendees(eventID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attendees[eventID])
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}
