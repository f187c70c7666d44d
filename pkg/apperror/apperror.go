package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an application error
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindConflict         Kind = "CONFLICT"
	KindValidation       Kind = "VALIDATION_ERROR"
	KindPrecondition     Kind = "PRECONDITION_FAILED"
	KindForbidden        Kind = "FORBIDDEN"
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"
	KindQuery            Kind = "INVALID_QUERY"
	KindInternal         Kind = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrPrecondition     = &Error{Kind: KindPrecondition}
	ErrForbidden        = &Error{Kind: KindForbidden}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
	ErrQuery            = &Error{Kind: KindQuery}
)

// FieldViolation describes one failed schema constraint
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error is the typed error surfaced by services and stores
type Error struct {
	Kind    Kind
	Message string
	Details []FieldViolation
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind so wrapped errors compare equal to the sentinels
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, nil, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, nil, format, args...)
}

func Precondition(format string, args ...interface{}) *Error {
	return newError(KindPrecondition, nil, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newError(KindForbidden, nil, format, args...)
}

func Unauthorized(format string, args ...interface{}) *Error {
	return newError(KindUnauthorized, nil, format, args...)
}

func Query(format string, args ...interface{}) *Error {
	return newError(KindQuery, nil, format, args...)
}

// StoreUnavailable wraps a connectivity failure of the document store
func StoreUnavailable(err error, format string, args ...interface{}) *Error {
	return newError(KindStoreUnavailable, err, format, args...)
}

// Internal wraps an unexpected failure
func Internal(err error, format string, args ...interface{}) *Error {
	return newError(KindInternal, err, format, args...)
}

// Validation carries every violation found, never just the first one
func Validation(details []FieldViolation) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "validation failed",
		Details: details,
	}
}

// KindOf returns the kind of err, or KindInternal for foreign errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// DetailsOf returns the violations carried by a validation error
func DetailsOf(err error) []FieldViolation {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}

// MessageOf returns the user-facing message of err
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "internal server error"
}
