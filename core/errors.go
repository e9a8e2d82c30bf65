package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSession is returned when an operation requiring an active
	// session receives one with an empty id. It never reaches the network.
	ErrInvalidSession = errors.New("invalid session: empty session id")

	// ErrSessionActive is returned when a session is created while another
	// one is still tracked.
	ErrSessionActive = errors.New("a session is already active")

	// ErrCredentialMismatch is returned by RawAuthCredential.Validate when a
	// credential field other than the declared auth type is populated.
	ErrCredentialMismatch = errors.New("auth credential fields do not match declared auth type")

	// ErrStreamingUnsupported is returned for run requests asking for
	// streaming responses.
	ErrStreamingUnsupported = errors.New("streaming runs are not supported")
)

// TransportError wraps a network or connection failure.
type TransportError struct {
	Op  string // Logical operation (create_session, run, ...)
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport failure: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SessionCreateError reports a non-success status from the create call.
type SessionCreateError struct {
	Status int
	Body   string
}

func (e *SessionCreateError) Error() string {
	return fmt.Sprintf("create session failed: status %d", e.Status)
}

// SessionTerminateError reports a non-success status from the terminate call.
type SessionTerminateError struct {
	Status int
	Body   string
}

func (e *SessionTerminateError) Error() string {
	return fmt.Sprintf("terminate session failed: status %d", e.Status)
}

// StatusError reports a non-success status from any other endpoint.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: status %d", e.Op, e.Status)
}

// MalformedResponseError is returned when a run response body is not a JSON
// array of event objects.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed run response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// UnrecognizedPartError is returned when a part object matches none of the
// known variants.
type UnrecognizedPartError struct {
	Keys []string // Top-level keys of the offending object
	Err  error    // Last variant decode failure, if any
}

func (e *UnrecognizedPartError) Error() string {
	msg := "unrecognized part"
	if len(e.Keys) > 0 {
		msg += " (keys: " + strings.Join(e.Keys, ", ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnrecognizedPartError) Unwrap() error { return e.Err }
