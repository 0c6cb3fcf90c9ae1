// Package apperr defines the failure kinds returned by the event and
// registration services. Every failure is a value of type *Error; callers
// branch on it with errors.Is against the exported sentinels.
package apperr

import "errors"

type Kind string

const (
	KindInvalidInput          Kind = "invalid_input"
	KindNotFound              Kind = "not_found"
	KindCapacityExceeded      Kind = "capacity_exceeded"
	KindDuplicateRegistration Kind = "duplicate_registration"
	KindPersistenceFailure    Kind = "persistence_failure"
)

// FieldError describes one invalid input field, keyed by its JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

// Sentinels for errors.Is; matching is by kind only.
var (
	ErrInvalidInput          = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrNotFound              = &Error{Kind: KindNotFound, Message: "not found"}
	ErrCapacityExceeded      = &Error{Kind: KindCapacityExceeded, Message: "capacity exceeded"}
	ErrDuplicateRegistration = &Error{Kind: KindDuplicateRegistration, Message: "duplicate registration"}
	ErrPersistenceFailure    = &Error{Kind: KindPersistenceFailure, Message: "persistence failure"}
)

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func InvalidInput(message string, fields []FieldError) *Error {
	return &Error{Kind: KindInvalidInput, Message: message, Fields: fields}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func CapacityExceeded(message string) *Error {
	return &Error{Kind: KindCapacityExceeded, Message: message}
}

func DuplicateRegistration(message string) *Error {
	return &Error{Kind: KindDuplicateRegistration, Message: message}
}

func Persistence(message string, err error) *Error {
	return &Error{Kind: KindPersistenceFailure, Message: message, Err: err}
}

// KindOf reports the failure kind of err. Errors that did not come from this
// package are treated as persistence failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistenceFailure
}

// FieldsOf returns the field errors attached to an invalid-input failure.
func FieldsOf(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
