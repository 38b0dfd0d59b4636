package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/booking-admin/internal/gateway"
	"github.com/example/booking-admin/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel, validation and gateway errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNotConfirmed):
		return "not_confirmed"
	case errors.Is(err, ErrSubmissionInProgress):
		return "in_progress"
	case errors.Is(err, ErrSortUnsupported):
		return "sort_unsupported"
	case errors.Is(err, ErrUnauthenticated):
		return string(gateway.KindUnauthenticated)
	case errors.Is(err, context.Canceled):
		return string(gateway.KindCanceled)
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	if kind, ok := gateway.KindOf(err); ok {
		return string(kind)
	}

	return "unexpected"
}
