package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/geocoder89/eventreg/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByKind(t *testing.T) {
	err := apperr.CapacityExceeded("Event is at full capacity")

	assert.ErrorIs(t, err, apperr.ErrCapacityExceeded)
	assert.NotErrorIs(t, err, apperr.ErrDuplicateRegistration)

	wrapped := fmt.Errorf("register: %w", err)
	assert.ErrorIs(t, wrapped, apperr.ErrCapacityExceeded)
	assert.Equal(t, apperr.KindCapacityExceeded, apperr.KindOf(wrapped))
	assert.Equal(t, "Event is at full capacity", apperr.MessageOf(wrapped))
}

func TestPersistenceUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.Persistence("Failed to fetch events", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, apperr.ErrPersistenceFailure)
	assert.Equal(t, "Failed to fetch events: connection refused", err.Error())
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, apperr.KindPersistenceFailure, apperr.KindOf(errors.New("boom")))
	assert.Nil(t, apperr.FieldsOf(errors.New("boom")))
}

func TestFieldsOfInvalidInput(t *testing.T) {
	fields := []apperr.FieldError{{Field: "capacity", Rule: "min", Param: "1"}}
	err := apperr.InvalidInput("Invalid form data", fields)

	assert.Equal(t, fields, apperr.FieldsOf(err))
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
