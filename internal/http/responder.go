package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/booking-admin/internal/application"
	"github.com/example/booking-admin/internal/gateway"
)

var (
	errBadRequestBody   = errors.New("The request body could not be read.")
	errInvalidRecordID  = errors.New("The record id must be a positive whole number.")
	errNotAuthenticated = errors.New("Please log in first.")
	errTooManyRequests  = errors.New("Too many login attempts. Please try again later.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps application and gateway errors to a status code and
// a user-visible message.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   vErr.Message(),
			Errors:    vErr.FieldErrors,
		})
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{ErrorCode: "NOT_FOUND", Message: statusMessage(http.StatusNotFound)})
		return
	case errors.Is(err, application.ErrNotConfirmed):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "NOT_CONFIRMED",
			Message:   "Deletion must be confirmed with confirm=true or the X-Confirm header.",
		})
		return
	case errors.Is(err, application.ErrSubmissionInProgress):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "SUBMISSION_IN_PROGRESS",
			Message:   "Another submission is still being saved.",
		})
		return
	case errors.Is(err, application.ErrSortUnsupported):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{ErrorCode: "SORT_UNSUPPORTED", Message: "This list cannot be sorted."})
		return
	case errors.Is(err, application.ErrUnauthenticated):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{ErrorCode: "AUTH_REQUIRED", Message: errNotAuthenticated.Error()})
		return
	}

	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		status := gatewayStatus(gwErr)
		r.writeJSON(ctx, w, status, errorResponse{
			ErrorCode: "REMOTE_" + strings.ToUpper(string(gwErr.Kind)),
			Message:   gwErr.UserMessage(),
		})
		return
	}

	r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err, "error_kind", application.ErrorKind(err))
	r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: statusMessage(http.StatusInternalServerError)})
}

// gatewayStatus picks the response status for a remote failure. Client errors
// reported by the remote API keep their status; everything else is a bad
// gateway or a gateway timeout.
func gatewayStatus(err *gateway.Error) int {
	switch err.Kind {
	case gateway.KindUnauthenticated, gateway.KindUnauthorized:
		return http.StatusUnauthorized
	case gateway.KindTimeout:
		return http.StatusGatewayTimeout
	case gateway.KindCanceled:
		return http.StatusRequestTimeout
	case gateway.KindServerRejected:
		if err.Status >= 400 && err.Status < 500 {
			return err.Status
		}
	}
	return http.StatusBadGateway
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request is not valid."
	case http.StatusUnauthorized:
		return errNotAuthenticated.Error()
	case http.StatusNotFound:
		return "The requested record was not found."
	case http.StatusMethodNotAllowed:
		return "This method is not allowed here."
	case http.StatusConflict:
		return "The request conflicts with the current state."
	case http.StatusUnprocessableEntity:
		return "Some fields are not valid."
	case http.StatusTooManyRequests:
		return errTooManyRequests.Error()
	default:
		return "An internal error occurred."
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
