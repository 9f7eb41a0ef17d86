package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain validation or computation failure so that
// callers can branch on the failure class instead of matching message text.
type ErrorKind string

const (
	// ErrInvalidColumn means a requested or defaulted column is blank or
	// absent from the dataset.
	ErrInvalidColumn ErrorKind = "invalid_column"
	// ErrNoValidColumns means no value column survived numeric coercion.
	ErrNoValidColumns ErrorKind = "no_valid_columns"
	// ErrUnparseableTime means the time column could not be fully parsed.
	ErrUnparseableTime ErrorKind = "unparseable_time"
	// ErrInsufficientSamples means fewer than two time points were available
	// for spectral analysis.
	ErrInsufficientSamples ErrorKind = "insufficient_samples"
	// ErrFrequencyDomain wraps any other numeric failure during spectral
	// analysis.
	ErrFrequencyDomain ErrorKind = "frequency_domain"
	// ErrNotInitialized means a preprocessing operation was invoked before
	// any dataset was set.
	ErrNotInitialized ErrorKind = "not_initialized"
	// ErrMissingColumns means resampling was requested on absent columns.
	ErrMissingColumns ErrorKind = "missing_columns"
	// ErrNotFound means a lookup by id yielded nothing.
	ErrNotFound ErrorKind = "not_found"
)

// Error is a structured domain failure with a human-readable message. The
// message enumerates offending column names or available alternatives where
// applicable and never exposes internal state.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewError creates a domain error of the given kind.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a domain error carrying an underlying cause. The cause
// text is folded into the message.
func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, cause.Error())
	}
	return &Error{Kind: kind, Message: msg, cause: cause}
}

// KindOf extracts the kind from an error chain. The second return value is
// false when the error is not a domain error.
func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsKind reports whether the error chain contains a domain error of the
// given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
