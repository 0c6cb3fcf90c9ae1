package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/eventreg/internal/domain/attendee"
	"github.com/geocoder89/eventreg/internal/validation"
	"github.com/gin-gonic/gin"
)

type RegistrationService interface {
	RegisterAttendee(ctx context.Context, in validation.CreateAttendeeInput) (attendee.Attendee, error)
}

type AttendeesHandler struct {
	svc RegistrationService
}

func NewAttendeesHandler(svc RegistrationService) *AttendeesHandler {
	return &AttendeesHandler{svc: svc}
}

// RegisterForEvent handles POST /events/:id/attendees. The path id is the
// source of truth for the event.
func (h *AttendeesHandler) RegisterForEvent(ctx *gin.Context) {
	var in validation.CreateAttendeeInput

	if !BindJSON(ctx, &in) {
		return
	}

	in.EventID = ctx.Param("id")

	h.register(ctx, in)
}

// Register handles POST /attendees with eventId in the body.
func (h *AttendeesHandler) Register(ctx *gin.Context) {
	var in validation.CreateAttendeeInput

	if !BindJSON(ctx, &in) {
		return
	}

	h.register(ctx, in)
}

func (h *AttendeesHandler) register(ctx *gin.Context, in validation.CreateAttendeeInput) {
	a, err := h.svc.RegisterAttendee(ctx.Request.Context(), in)

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, a)
}
