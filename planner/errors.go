package planner

import (
	"errors"
	"strings"
)

var (
	// ErrMissingRequiredField is returned when planning starts without a destination or dates.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrUpstreamUnavailable is returned by a flight or itinerary provider that cannot answer.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidDateRange is returned when the end date is before the start date
	// or a date cannot be parsed.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrOperationInFlight is returned when a search or itinerary of the same kind is still running.
	ErrOperationInFlight = errors.New("operation already in flight")

	ErrUnknownField    = errors.New("unknown preference field")
	ErrInvalidValue    = errors.New("invalid preference value")
	ErrUnknownInterest = errors.New("unknown interest")
	ErrEmptyMessage    = errors.New("empty message")
)

// MissingFieldError lists the required fields that were empty.
type MissingFieldError struct {
	Fields []Field
}

func (e *MissingFieldError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, string(f))
	}
	return ErrMissingRequiredField.Error() + ": " + strings.Join(names, ", ")
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingRequiredField }
