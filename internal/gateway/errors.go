package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies gateway failures.
type Kind string

const (
	// KindUnauthenticated means no token was held; no request was sent.
	KindUnauthenticated Kind = "unauthenticated"
	// KindTimeout means the request exceeded the client timeout.
	KindTimeout Kind = "timeout"
	// KindNetworkUnreachable covers DNS, connection and transport failures.
	KindNetworkUnreachable Kind = "network_unreachable"
	// KindUnauthorized is an HTTP 401 on an authenticated call. The session
	// has been invalidated by the time the error is returned.
	KindUnauthorized Kind = "unauthorized"
	// KindServerRejected is any other non-2xx response.
	KindServerRejected Kind = "server_rejected"
	// KindMalformedResponse means a 2xx body did not have the expected shape.
	KindMalformedResponse Kind = "malformed_response"
	// KindCanceled means the caller abandoned the request.
	KindCanceled Kind = "canceled"
)

// Error describes a failed gateway call.
type Error struct {
	Kind     Kind
	Op       string
	Endpoint string
	Status   int
	// Message is the server-supplied message when one was present.
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("gateway: %s %s: %s (%d): %s", e.Op, e.Endpoint, e.Kind, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("gateway: %s %s: %s (%d)", e.Op, e.Endpoint, e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("gateway: %s %s: %s: %v", e.Op, e.Endpoint, e.Kind, e.Err)
	}
	return fmt.Sprintf("gateway: %s %s: %s", e.Op, e.Endpoint, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns the text to show an operator.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case KindUnauthenticated, KindUnauthorized:
		return "Please log in again."
	case KindTimeout:
		return "The server took too long to respond."
	case KindNetworkUnreachable:
		return "The server could not be reached."
	case KindMalformedResponse:
		return "The server sent an unexpected response."
	case KindCanceled:
		return "The request was canceled."
	}
	return "The server rejected the request."
}

// KindOf returns the Kind of a gateway error anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind, true
	}
	return "", false
}

// IsKind reports whether err is a gateway error of the given kind.
func IsKind(err error, kind Kind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}
