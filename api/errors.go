// Package api provides authenticated access to the Toggl metadata and
// reporting APIs.
//
// This file defines the failure taxonomy. Sentinel kinds enable callers to
// use errors.Is for typed assertions; IsTransient carries the transient/fatal
// tag the retry loop dispatches on.
package api

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// Sentinel errors for API failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrAuthentication indicates a rejected credential (403). Fatal.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRateLimited indicates request throttling (429). Transient.
	ErrRateLimited = errors.New("rate limited")
)

// Surface identifiers, recorded on classified errors.
const (
	surfaceAPI     = "api"
	surfaceReports = "reports"
)

// Error wraps a remote failure with its classification.
// It preserves any underlying error in the chain for inspection via
// errors.As.
type Error struct {
	// Kind is the sentinel error for classification, nil for generic
	// failures.
	Kind error
	// Surface is the remote surface that produced the failure
	// ("api" or "reports").
	Surface string
	// Status is the HTTP status code, 0 if not applicable.
	Status int
	// Code, Message and Tip carry the structured error body reported by
	// the reporting surface, when present.
	Code    int
	Message string
	Tip     string
	// Err is the underlying error, if any.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Code != 0:
		return fmt.Sprintf("error #%d: %s - %s", e.Code, e.Message, e.Tip)
	case e.Message != "":
		return e.Message
	case e.Status != 0:
		return fmt.Sprintf("unexpected status %d", e.Status)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "api error"
	}
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// IsTransient reports whether err is expected to resolve on retry without
// caller intervention: rate limiting, timeouts, and connection-level
// failures. Everything else (authentication, remote-reported errors,
// decode failures) is fatal.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return true
	}

	// Connection-level failures (refused, reset, DNS) surface as *net.OpError
	// inside the transport's *url.Error.
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	// Connection dropped mid-body.
	return errors.Is(err, io.ErrUnexpectedEOF)
}
