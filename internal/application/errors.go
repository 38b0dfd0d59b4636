package application

import (
	"errors"
	"slices"
	"strings"

	"github.com/example/booking-admin/internal/form"
	"github.com/example/booking-admin/internal/listing"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = listing.ErrNotFound
	// ErrNotConfirmed is returned when a deletion was not confirmed by the operator.
	ErrNotConfirmed = listing.ErrNotConfirmed
	// ErrSortUnsupported is returned when a sort order is requested for a list without a sort key.
	ErrSortUnsupported = listing.ErrSortUnsupported
	// ErrSubmissionInProgress is returned while another form submission for the
	// same resource is still running.
	ErrSubmissionInProgress = form.ErrSubmissionInProgress
	// ErrUnauthenticated is returned when an operation needs a session and none is held.
	ErrUnauthenticated = errors.New("application: not authenticated")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface. Field messages are listed in field order.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	return "validation failed: " + v.Message()
}

// Message joins the field messages into one user-visible sentence.
func (v *ValidationError) Message() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return ""
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, v.FieldErrors[field])
	}
	return strings.Join(messages, "; ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error. The first message for a field wins.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// errOrNil returns v as an error only when it holds field errors.
func (v *ValidationError) errOrNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}
