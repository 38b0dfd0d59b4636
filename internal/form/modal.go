package form

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrClosed is returned when Submit is called on a modal that is not open.
	ErrClosed = errors.New("form: modal is not open")
	// ErrSubmissionInProgress is returned while an earlier submission is still running.
	ErrSubmissionInProgress = errors.New("form: submission already in progress")
)

// Mode tells the submitter whether the modal is adding or editing a record.
type Mode int

const (
	ModeAdd Mode = iota + 1
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeEdit:
		return "edit"
	}
	return "closed"
}

// Binder turns submitted values into a record, starting from base. It returns
// a validation error when required fields are missing or malformed.
type Binder[T any] func(values Values, base T) (T, error)

// Submitter hands a bound record to its owner and returns the stored version.
type Submitter[T any] func(ctx context.Context, record T, mode Mode) (T, error)

// Encoder renders a record as form values for pre-populating an edit modal.
type Encoder[T any] func(record T) Values

// Modal collects input for one record. A record passed to Open is copied and
// never mutated; ownership of the bound record passes to the Submitter.
type Modal[T any] struct {
	bind   Binder[T]
	submit Submitter[T]
	encode Encoder[T]

	mu      sync.Mutex
	mode    Mode
	base    T
	message string
	pending bool
}

// New constructs a closed modal.
func New[T any](bind Binder[T], submit Submitter[T], encode Encoder[T]) *Modal[T] {
	return &Modal[T]{bind: bind, submit: submit, encode: encode}
}

// Open shows the modal. A nil initial record opens it in add mode. Opening is
// refused while a submission is in flight.
func (m *Modal[T]) Open(initial *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending {
		return ErrSubmissionInProgress
	}

	var base T
	m.mode = ModeAdd
	if initial != nil {
		base = *initial
		m.mode = ModeEdit
	}
	m.base = base
	m.message = ""
	return nil
}

// Submit binds values and, when they validate, passes the record to the
// submitter. The modal closes only after the submitter succeeds; otherwise it
// stays open and Message describes the failure.
func (m *Modal[T]) Submit(ctx context.Context, values Values) (T, error) {
	var zero T

	m.mu.Lock()
	if m.mode == 0 {
		m.mu.Unlock()
		return zero, ErrClosed
	}
	if m.pending {
		m.mu.Unlock()
		return zero, ErrSubmissionInProgress
	}
	base, mode := m.base, m.mode
	m.mu.Unlock()

	record, err := m.bind(values.Clone(), base)
	if err != nil {
		m.setMessage(err.Error())
		return zero, err
	}

	m.mu.Lock()
	if m.pending {
		m.mu.Unlock()
		return zero, ErrSubmissionInProgress
	}
	m.pending = true
	m.mu.Unlock()

	stored, err := m.submit(ctx, record, mode)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = false
	if err != nil {
		m.message = err.Error()
		return zero, err
	}
	m.mode = 0
	m.message = ""
	var cleared T
	m.base = cleared
	return stored, nil
}

// Cancel closes the modal without submitting.
func (m *Modal[T]) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cleared T
	m.mode = 0
	m.base = cleared
	m.message = ""
}

// IsOpen reports whether the modal is showing.
func (m *Modal[T]) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode != 0
}

// Pending reports whether a submission is in flight.
func (m *Modal[T]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// Mode returns the current mode; zero when closed.
func (m *Modal[T]) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Message returns the user-visible message of the last failed submission.
func (m *Modal[T]) Message() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.message
}

// Values returns the pre-populated field values of the open modal.
func (m *Modal[T]) Values() Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.encode == nil || m.mode == 0 {
		return Values{}
	}
	return m.encode(m.base)
}

func (m *Modal[T]) setMessage(message string) {
	m.mu.Lock()
	m.message = message
	m.mu.Unlock()
}
