// Package apperror defines the application error taxonomy and its mapping
// to HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the category of an application error
type Kind int

const (
	// Internal represents an unexpected store or infrastructure failure
	Internal Kind = iota + 1
	// Validation represents malformed or missing input
	Validation
	// DuplicateEmail represents a signup/create with an already registered email
	DuplicateEmail
	// InvalidCredentials is returned uniformly for unknown email or wrong password
	InvalidCredentials
	// Unauthenticated represents a missing, invalid or expired session token,
	// or a token whose backing user no longer exists
	Unauthenticated
	// Forbidden represents an authenticated actor with insufficient role or ownership
	Forbidden
	// InvalidOrExpiredToken represents a reset token that does not match or has expired
	InvalidOrExpiredToken
	// NotFound represents a missing resource
	NotFound
)

// Error is the application error type carried between services and handlers
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, logged but never serialized
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code for the error kind
func (e *Error) StatusCode() int {
	switch e.Kind {
	case Validation, DuplicateEmail, InvalidOrExpiredToken:
		return http.StatusBadRequest
	case InvalidCredentials, Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// New creates an application error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an application error wrapping an underlying cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NewValidation creates a validation error
func NewValidation(message string) *Error {
	return New(Validation, message)
}

// NewInternal creates an internal error wrapping the cause
func NewInternal(err error) *Error {
	return Wrap(Internal, "internal server error", err)
}

// KindOf extracts the error kind. Unrecognized errors are Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err is an application error of the given kind
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
