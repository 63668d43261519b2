package services

import (
	"errors"
	"fmt"
	"taskflow/src/rbac"
)

type Kind string

const (
	KIND_NOT_FOUND    Kind = "NotFound"
	KIND_UNAUTHORIZED Kind = "Unauthorized"
	KIND_FORBIDDEN    Kind = "Forbidden"
	KIND_CONFLICT     Kind = "Conflict"
	KIND_INVALID      Kind = "Invalid"
	KIND_INTERNAL     Kind = "Internal"
)

// Error is the only error type services return on purpose. Anything else is a store failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrConflict) works on every conflict.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound     = &Error{Kind: KIND_NOT_FOUND}
	ErrUnauthorized = &Error{Kind: KIND_UNAUTHORIZED}
	ErrForbidden    = &Error{Kind: KIND_FORBIDDEN}
	ErrConflict     = &Error{Kind: KIND_CONFLICT}
	ErrInvalid      = &Error{Kind: KIND_INVALID}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity string) *Error {
	return newError(KIND_NOT_FOUND, "%s not found", entity)
}

func Conflict(format string, args ...any) *Error {
	return newError(KIND_CONFLICT, format, args...)
}

func Invalid(format string, args ...any) *Error {
	return newError(KIND_INVALID, format, args...)
}

// KindOf reports the kind of err, or KIND_INTERNAL for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KIND_INTERNAL
}

// denied converts a negative decision into an error.
func denied(d rbac.Decision) error {
	switch d.Reason {
	case rbac.NOT_A_MEMBER:
		return newError(KIND_UNAUTHORIZED, "%s", d.Message)
	case rbac.SELF_PROTECTION, rbac.INVARIANT_VIOLATION:
		return newError(KIND_CONFLICT, "%s", d.Message)
	default:
		return newError(KIND_FORBIDDEN, "%s", d.Message)
	}
}

func check(d rbac.Decision) error {
	if d.Allowed {
		return nil
	}
	return denied(d)
}
