// Package apperr defines the error kinds returned by the challenge engine.
//
// Every rejected mutation carries a stable Kind plus a message that names the
// identifiers involved (challenge id, conflicting attend id, participant
// counts) so a client can render it without a second round trip.
//
// Match kinds with errors.Is against the sentinels:
//
//	if errors.Is(err, apperr.ErrCapacityFull) { ... }
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindForbidden       Kind = "forbidden"
	KindUnauthenticated Kind = "unauthenticated"
	KindInvalidState    Kind = "invalid_state"
	KindCapacityFull    Kind = "capacity_full"
	KindConflict        Kind = "conflict"
	KindValidation      Kind = "validation"
	KindInternal        Kind = "internal"
)

// Error is a classified engine error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // optional cause
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below compare by
// kind regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrInvalidState    = &Error{Kind: KindInvalidState}
	ErrCapacityFull    = &Error{Kind: KindCapacityFull}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrValidation      = &Error{Kind: KindValidation}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error { return newf(KindNotFound, format, args...) }

func Forbidden(format string, args ...any) error { return newf(KindForbidden, format, args...) }

func Unauthenticated() error {
	return &Error{Kind: KindUnauthenticated, Msg: "sign in required"}
}

func InvalidState(format string, args ...any) error {
	return newf(KindInvalidState, format, args...)
}

// CapacityFull reports a full challenge with its current and maximum counts.
func CapacityFull(challengeID string, current, max int) error {
	return newf(KindCapacityFull, "challenge %s is full: current=%d, max=%d", challengeID, current, max)
}

// Conflict reports a duplicate final submission, naming the one that exists.
func Conflict(format string, args ...any) error { return newf(KindConflict, format, args...) }

func Validation(format string, args ...any) error { return newf(KindValidation, format, args...) }

// Internal wraps an unexpected store failure.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing text of err. Unclassified errors get a
// generic message so store internals do not leak to clients.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Error()
	}
	return "an internal error occurred"
}
