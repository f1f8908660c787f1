package api

import (
	"errors"
	"fmt"
	"io"
	"net"
	"testing"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "structured remote error",
			err:  &Error{Surface: surfaceReports, Status: 400, Code: 402, Message: "workspace not accessible", Tip: "check the workspace id"},
			want: "error #402: workspace not accessible - check the workspace id",
		},
		{
			name: "authentication",
			err:  &Error{Kind: ErrAuthentication, Surface: surfaceAPI, Status: 403, Message: "invalid API token"},
			want: "invalid API token",
		},
		{
			name: "joined 404 body",
			err:  &Error{Surface: surfaceAPI, Status: 404, Message: "no such user; try again"},
			want: "no such user; try again",
		},
		{
			name: "bare status",
			err:  &Error{Surface: surfaceAPI, Status: 500},
			want: "unexpected status 500",
		},
		{
			name: "wrapped cause only",
			err:  &Error{Surface: surfaceAPI, Err: errors.New("boom")},
			want: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	auth := &Error{Kind: ErrAuthentication, Status: 403}
	if !errors.Is(auth, ErrAuthentication) {
		t.Error("auth error should match ErrAuthentication")
	}
	if errors.Is(auth, ErrRateLimited) {
		t.Error("auth error should not match ErrRateLimited")
	}

	// Matching survives wrapping
	wrapped := fmt.Errorf("request failed after 3 attempts: %w", &Error{Kind: ErrRateLimited, Status: 429})
	if !errors.Is(wrapped, ErrRateLimited) {
		t.Error("wrapped rate-limit error should match ErrRateLimited")
	}

	generic := &Error{Status: 500}
	if errors.Is(generic, ErrAuthentication) || errors.Is(generic, ErrRateLimited) {
		t.Error("generic error should match no sentinel")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &Error{Status: 0, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("cause should be reachable through Unwrap")
	}
}

type timeoutError struct{}

func (timeoutError) Error() string { return "deadline exceeded" }
func (timeoutError) Timeout() bool { return true }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &Error{Kind: ErrRateLimited, Status: 429}, true},
		{"rate limited wrapped", fmt.Errorf("attempt: %w", &Error{Kind: ErrRateLimited}), true},
		{"timeout", timeoutError{}, true},
		{"timeout wrapped", fmt.Errorf("request failed: %w", timeoutError{}), true},
		{"connection refused", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"dropped mid-body", fmt.Errorf("read response: %w", io.ErrUnexpectedEOF), true},
		{"authentication", &Error{Kind: ErrAuthentication, Status: 403}, false},
		{"generic remote", &Error{Status: 500}, false},
		{"structured remote", &Error{Code: 402, Message: "nope", Tip: "stop"}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
