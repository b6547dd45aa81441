package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced to callers.
type ErrorKind string

const (
	KindConfig           ErrorKind = "CONFIG_ERROR"
	KindAuth             ErrorKind = "AUTH_ERROR"
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindProvider         ErrorKind = "PROVIDER_ERROR"
	KindInsufficientData ErrorKind = "INSUFFICIENT_DATA"
	KindSchema           ErrorKind = "SCHEMA_ERROR"
	KindParse            ErrorKind = "PARSE_ERROR"
	KindForecastFailure  ErrorKind = "FORECAST_FAILURE"
)

// Error is a typed domain error.
type Error struct {
	Kind    ErrorKind
	Message string
	Field   string // offending field for schema errors
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a domain error of the given kind.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a domain error of the given kind wrapping cause.
func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// MissingField reports a schema error for a required field.
func MissingField(field string) *Error {
	return &Error{Kind: KindSchema, Message: "missing required field " + field, Field: field}
}

// KindOf returns the kind of the first domain error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
