package domain

import (
	"errors"
	"fmt"
)

// FaultKind classifies a failure so callers can render feedback without
// inspecting transport details.
type FaultKind string

const (
	// FaultValidation is malformed input caught before any network call.
	FaultValidation FaultKind = "validation"
	// FaultAuth means the remote authority rejected the credential. The
	// session must return to the unauthenticated state.
	FaultAuth FaultKind = "auth"
	// FaultConflict is a domain-level rejection (e.g. duplicate
	// registration). The server's message is surfaced verbatim.
	FaultConflict FaultKind = "conflict"
	// FaultTransport covers unreachable network and malformed responses.
	// Optimistic mutations roll back; the caller may retry.
	FaultTransport FaultKind = "transport"
)

// Fault is the classified failure every operation returns across the core's
// boundary. The core never panics outward; a nil error means success and a
// non-nil error is always a *Fault.
type Fault struct {
	Kind    FaultKind
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error { return f.Err }

// NewFault builds a Fault with a caller-facing message.
func NewFault(kind FaultKind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}

// WrapFault builds a Fault that preserves the underlying cause for
// errors.Is/errors.As checks.
func WrapFault(kind FaultKind, message string, err error) *Fault {
	return &Fault{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the classification from err. Errors produced outside the
// core's taxonomy are treated as transport failures, the only recoverable
// default.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return FaultTransport
}

// FaultMessage returns the caller-facing message for err, falling back to
// err.Error() for unclassified errors.
func FaultMessage(err error) string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// IsAuthFault reports whether err is classified as an authorization
// rejection, which forces a return to the unauthenticated state.
func IsAuthFault(err error) bool {
	return err != nil && KindOf(err) == FaultAuth
}
