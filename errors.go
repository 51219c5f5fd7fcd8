package tablebridge

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoMessages is returned when a chat request carries no messages.
var ErrNoMessages = errors.New("no messages")

// ErrorCategory classifies provider errors by how callers should react.
type ErrorCategory string

const (
	// ErrorTransient marks rate limits, overloads and network blips.
	ErrorTransient ErrorCategory = "transient"
	// ErrorPermanent marks failures such as bad credentials or unknown models.
	ErrorPermanent ErrorCategory = "permanent"
	// ErrorUserInput marks malformed requests the caller must fix.
	ErrorUserInput ErrorCategory = "user_input"
)

// CategorizedError is implemented by errors that carry handling metadata.
type CategorizedError interface {
	error
	Category() ErrorCategory
	Retryable() bool
	StatusCode() int
	RetryAfter() time.Duration
}

// Error is the concrete CategorizedError returned by providers.
type Error struct {
	Msg        string
	Cat        ErrorCategory
	Code       int
	RetryDelay time.Duration
	Cause      error
}

var _ CategorizedError = (*Error)(nil)

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Category() ErrorCategory { return e.Cat }

func (e *Error) Retryable() bool { return e.Cat == ErrorTransient }

func (e *Error) StatusCode() int { return e.Code }

func (e *Error) RetryAfter() time.Duration { return e.RetryDelay }

// NewTransientError creates a retryable error.
func NewTransientError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorTransient, Code: statusCode, Cause: cause}
}

// NewTransientErrorWithRetry creates a retryable error with a server-suggested delay.
func NewTransientErrorWithRetry(msg string, statusCode int, retryAfter time.Duration, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorTransient, Code: statusCode, RetryDelay: retryAfter, Cause: cause}
}

// NewPermanentError creates an error that retrying cannot fix.
func NewPermanentError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorPermanent, Code: statusCode, Cause: cause}
}

// NewUserInputError creates an error caused by an invalid request.
func NewUserInputError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorUserInput, Code: statusCode, Cause: cause}
}

func categoryOf(err error) (CategorizedError, bool) {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsTransient reports whether err, or any error it wraps, is transient.
func IsTransient(err error) bool {
	ce, ok := categoryOf(err)
	return ok && ce.Category() == ErrorTransient
}

// IsPermanent reports whether err, or any error it wraps, is permanent.
func IsPermanent(err error) bool {
	ce, ok := categoryOf(err)
	return ok && ce.Category() == ErrorPermanent
}

// IsUserInput reports whether err, or any error it wraps, is a user input error.
func IsUserInput(err error) bool {
	ce, ok := categoryOf(err)
	return ok && ce.Category() == ErrorUserInput
}

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	if ce, ok := categoryOf(err); ok {
		return ce.StatusCode()
	}
	return 0
}

// RetryAfterOf returns the retry delay carried by err, or 0.
func RetryAfterOf(err error) time.Duration {
	if ce, ok := categoryOf(err); ok {
		return ce.RetryAfter()
	}
	return 0
}
