// Package errs defines the error taxonomy surfaced to tool callers.
// Every failure crossing the tool boundary is one of these kinds, so the
// calling agent can decide whether to retry, correct its input, or give up.
package errs

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error class.
type Kind string

const (
	// KindValidation: bad or missing arguments, caught before any network call.
	KindValidation Kind = "validation"
	// KindNotFound: upstream 404 or an identifier that resolved to nothing.
	KindNotFound Kind = "not_found"
	// KindAuth: upstream 401/403. Never retried; credentials are fixed at startup.
	KindAuth Kind = "auth"
	// KindThrottled: governor wait exceeded, or upstream 429 after the retry budget.
	KindThrottled Kind = "throttled"
	// KindTransport: connection failure or timeout after the retry budget.
	KindTransport Kind = "transport"
	// KindUpstream: any other non-2xx upstream status.
	KindUpstream Kind = "upstream"
)

// Error is a typed, JSON-serializable error carried across the tool boundary.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Validation reports an argument error detected before any network call.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing upstream resource.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...), Status: 404}
}

// Auth reports an upstream credential rejection. Only the status is kept;
// upstream bodies are not leaked to the caller.
func Auth(status int) *Error {
	return &Error{Kind: KindAuth, Message: "upstream rejected credentials", Status: status}
}

// Throttled reports exhausted pacing capacity.
func Throttled(format string, args ...any) *Error {
	return &Error{Kind: KindThrottled, Message: fmt.Sprintf(format, args...)}
}

// Transport reports a network-level failure.
func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Message: err.Error()}
}

// Upstream reports a non-2xx status outside the other classes.
func Upstream(status int, body string) *Error {
	const maxBody = 512
	if len(body) > maxBody {
		body = body[:maxBody] + "..."
	}
	return &Error{Kind: KindUpstream, Message: body, Status: status}
}

// KindOf classifies err, returning KindUpstream for untyped errors so the
// façade never emits a raw failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// From converts any error into a typed Error, passing typed ones through.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUpstream, Message: err.Error()}
}
