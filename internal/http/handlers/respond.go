package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/eventreg/internal/apperr"
	"github.com/geocoder89/eventreg/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// RespondServiceError renders a service failure. Persistence failures never
// leak their cause to the client.
func RespondServiceError(ctx *gin.Context, err error) {
	msg := apperr.MessageOf(err)

	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput:
		RespondBadRequest(ctx, msg, gin.H{"fields": apperr.FieldsOf(err)})
	case apperr.KindNotFound:
		RespondNotFound(ctx, msg)
	case apperr.KindCapacityExceeded:
		RespondConflict(ctx, "event_full", msg)
	case apperr.KindDuplicateRegistration:
		RespondConflict(ctx, "already_registered", msg)
	default:
		var e *apperr.Error
		if !errors.As(err, &e) {
			msg = "Internal server error"
		}
		RespondInternal(ctx, msg)
	}
}
