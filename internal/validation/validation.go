// Package validation turns raw create-event and register-attendee payloads
// into typed domain requests. It has no side effects.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/eventreg/internal/apperr"
	"github.com/geocoder89/eventreg/internal/domain/attendee"
	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const invalidInputMessage = "Invalid form data"

// CreateEventInput is the raw create-event payload. Date is kept as the
// string the client sent; it is parsed once validation passes.
type CreateEventInput struct {
	Title       string  `json:"title" validate:"required,notblank"`
	Date        string  `json:"date" validate:"required,timestamp"`
	Description *string `json:"description"`
	Capacity    int     `json:"capacity" validate:"min=1,max=2147483647"`
}

type CreateAttendeeInput struct {
	Name    string `json:"name" validate:"required,notblank"`
	Email   string `json:"email" validate:"required,email"`
	EventID string `json:"eventId" validate:"required,notblank"`
}

// layouts accepted for event dates, tried in order. Values without a zone
// are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})

		// both registrations only fail on a programming error
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(err)
		}
		if err := v.RegisterValidation("timestamp", func(fl validator.FieldLevel) bool {
			_, err := ParseDate(fl.Field().String())
			return err == nil
		}); err != nil {
			panic(err)
		}

		validate = v
	})

	return validate
}

// ParseDate parses an event date in any of the accepted layouts.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}

	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// ValidateEvent checks a create-event payload and converts it to a domain
// request.
func ValidateEvent(in CreateEventInput) (event.CreateEventRequest, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Date = strings.TrimSpace(in.Date)
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			in.Description = nil
		} else {
			in.Description = &d
		}
	}

	if err := check(in); err != nil {
		return event.CreateEventRequest{}, err
	}

	date, err := ParseDate(in.Date)
	if err != nil {
		return event.CreateEventRequest{}, apperr.InvalidInput(invalidInputMessage, []apperr.FieldError{
			{Field: "date", Rule: "timestamp", Message: validationMessage("timestamp", "")},
		})
	}

	return event.CreateEventRequest{
		Title:       in.Title,
		Description: in.Description,
		Date:        date,
		Capacity:    in.Capacity,
	}, nil
}

// ValidateAttendee checks a registration payload. Emails are compared
// case-insensitively, so they are lower-cased here.
func ValidateAttendee(in CreateAttendeeInput) (attendee.CreateAttendeeRequest, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.EventID = strings.TrimSpace(in.EventID)

	if err := check(in); err != nil {
		return attendee.CreateAttendeeRequest{}, err
	}

	return attendee.CreateAttendeeRequest{
		EventID: in.EventID,
		Name:    in.Name,
		Email:   in.Email,
	}, nil
}

func check(in interface{}) error {
	err := engine().Struct(in)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperr.InvalidInput(invalidInputMessage, []apperr.FieldError{
			{Field: "", Rule: "invalid", Message: err.Error()},
		})
	}

	fields := make([]apperr.FieldError, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		rule := fieldError.Tag()
		param := fieldError.Param()

		fields = append(fields, apperr.FieldError{
			Field:   fieldPath(fieldError),
			Rule:    rule,
			Param:   param,
			Message: validationMessage(rule, param),
		})
	}

	return apperr.InvalidInput(invalidInputMessage, fields)
}

// fieldPath drops the root struct name from the namespace, which is already
// expressed in JSON names.
func fieldPath(fieldError validator.FieldError) string {
	ns := fieldError.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok && rest != "" {
		return rest
	}
	return fieldError.Field()
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	case "timestamp":
		return "must be a valid date"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "len":
		return "must be exactly " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
