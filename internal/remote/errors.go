package remote

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a remote extraction failure. Every kind is recoverable
// via the local fallback; MalformedResponse is logged distinctly but
// treated the same for fallback purposes.
type Kind string

// Failure kinds for the remote extraction path
const (
	// KindTimeout means no response arrived within the deadline
	KindTimeout Kind = "timeout"
	// KindServiceUnavailable means a non-success response or connection failure
	KindServiceUnavailable Kind = "service_unavailable"
	// KindMalformedResponse means a response arrived but failed schema validation
	KindMalformedResponse Kind = "malformed_response"
)

// Error represents a classified failure of the remote extraction service
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("remote extraction failed (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("remote extraction failed (%s): %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Classify maps a transport-level error from the remote call into a
// classified Error. Deadline and cancellation map to Timeout; everything
// else is ServiceUnavailable.
func Classify(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{
			Kind:    KindTimeout,
			Message: "no response within deadline",
			Cause:   err,
		}
	}
	return &Error{
		Kind:    KindServiceUnavailable,
		Message: "service call failed",
		Cause:   err,
	}
}

// Malformed builds a MalformedResponse error.
func Malformed(message string, cause error) *Error {
	return &Error{
		Kind:    KindMalformedResponse,
		Message: message,
		Cause:   cause,
	}
}
