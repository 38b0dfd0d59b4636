package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/example/booking-admin/internal/form"
	"github.com/example/booking-admin/internal/gateway"
	"github.com/example/booking-admin/internal/listing"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "not found", err: fmt.Errorf("wrapped: %w", listing.ErrNotFound), want: "not_found"},
		{name: "not confirmed", err: listing.ErrNotConfirmed, want: "not_confirmed"},
		{name: "in progress", err: form.ErrSubmissionInProgress, want: "in_progress"},
		{name: "sort", err: listing.ErrSortUnsupported, want: "sort_unsupported"},
		{name: "validation", err: &ValidationError{FieldErrors: map[string]string{"name": "required"}}, want: "validation"},
		{name: "gateway timeout", err: &gateway.Error{Kind: gateway.KindTimeout}, want: "timeout"},
		{name: "unauthenticated", err: ErrUnauthenticated, want: "unauthenticated"},
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "unexpected", err: errors.New("boom"), want: "unexpected"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ErrorKind(tc.err); got != tc.want {
				t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}
