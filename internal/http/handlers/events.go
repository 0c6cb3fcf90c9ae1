package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/geocoder89/eventreg/internal/validation"
	"github.com/gin-gonic/gin"
)

type EventsService interface {
	ListEvents(ctx context.Context) ([]event.Summary, error)
	GetEvent(ctx context.Context, id string) (event.Detail, error)
	CreateEvent(ctx context.Context, in validation.CreateEventInput) (event.Event, error)
}

type EventsHandler struct {
	svc EventsService
}

func NewEventsHandler(svc EventsService) *EventsHandler {
	return &EventsHandler{svc: svc}
}

func (h *EventsHandler) CreateEvent(ctx *gin.Context) {
	var in validation.CreateEventInput

	if !BindJSON(ctx, &in) {
		return
	}

	e, err := h.svc.CreateEvent(ctx.Request.Context(), in)

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, e)
}

func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	events, err := h.svc.ListEvents(ctx.Request.Context())

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": events,
		"count": len(events),
	})
}

func (h *EventsHandler) GetEventByID(ctx *gin.Context) {
	d, err := h.svc.GetEvent(ctx.Request.Context(), ctx.Param("id"))

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, d)
}
