package attendee

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Attendee struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// the (event, email) pair is already taken
var ErrAlreadyRegistered = errors.New("attendee already registered")

// the event has no capacity left
var ErrEventFull = errors.New("event is full")

// CreateAttendeeRequest is the validated form of a registration payload.
type CreateAttendeeRequest struct {
	EventID string
	Name    string
	Email   string
}

func NewFromCreateRequest(req CreateAttendeeRequest) Attendee {
	now := time.Now().UTC()
	return Attendee{
		ID:        uuid.NewString(),
		EventID:   req.EventID,
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
