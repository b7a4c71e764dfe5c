package panel

import (
	"errors"
	"strings"
)

var (
	// ErrNoYachtSelected is returned when an action needs a displayed yacht.
	ErrNoYachtSelected = errors.New("no yacht selected")

	// ErrFormClosed is returned by Submit when the reservation form is not open.
	ErrFormClosed = errors.New("reservation form is not open")

	// ErrSubmitInFlight is returned when a reservation is already being submitted.
	ErrSubmitInFlight = errors.New("a reservation is already being submitted")

	// ErrFetchSuperseded is returned by a fetch whose results were discarded
	// because a newer fetch started.
	ErrFetchSuperseded = errors.New("fetch superseded by a newer search")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the failures.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// errOrNil returns e when it holds failures and nil otherwise.
func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
