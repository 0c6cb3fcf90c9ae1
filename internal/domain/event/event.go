package event

import (
	"errors"
	"time"

	"github.com/geocoder89/eventreg/internal/domain/attendee"
)

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Summary is an event as shown in the list view.
type Summary struct {
	Event
	AttendeeCount int `json:"attendeeCount"`
}

// Detail is an event with its attendees in registration order.
type Detail struct {
	Event
	Attendees []attendee.Attendee `json:"attendees"`
}

// IsFull reports whether count registrations leave no room.
func (e Event) IsFull(count int) bool {
	return count >= e.Capacity
}

var ErrNotFound = errors.New("event not found")

// CreateEventRequest is the validated form of a create-event payload.
type CreateEventRequest struct {
	Title       string
	Description *string
	Date        time.Time
	Capacity    int
}
