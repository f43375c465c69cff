// Package errors defines the application error taxonomy shared by the
// protocol subsystems and translated to HTTP responses in the delivery layer.
package errors

import (
	"net/http"

	"plume/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// OAuth / IndieAuth errors. The error codes double as the OAuth error
	// strings returned by the token endpoints.
	ErrInvalidClient = NewBaseError(
		http.StatusBadRequest,
		"invalid_client",
		"The redirect URI is not registered for this client",
		"",
	)

	ErrInvalidGrant = NewBaseError(
		http.StatusBadRequest,
		"invalid_grant",
		"The authorization code or refresh token is unknown, expired or already used",
		"",
	)

	ErrInvalidScope = NewBaseError(
		http.StatusBadRequest,
		"invalid_scope",
		"The requested scope exceeds the granted scope",
		"",
	)

	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"unauthorized",
		"The access token is unknown, expired or revoked",
		"",
	)

	ErrInsufficientScope = NewBaseError(
		http.StatusForbidden,
		"insufficient_scope",
		"The access token does not grant the required scope",
		"",
	)

	// Protocol input errors.
	ErrInvalidRequest = NewBaseError(
		http.StatusBadRequest,
		"invalid_request",
		"The request is malformed or references an unknown resource",
		"",
	)

	ErrVouchRequired = NewBaseError(
		449,
		"vouch_required",
		"The webmention does not contain a vouch field",
		"",
	)

	ErrInvalidTopic = NewBaseError(
		http.StatusBadRequest,
		"invalid_topic",
		"The topic is not a feed published by this server",
		"",
	)

	// Content judgments.
	ErrVerificationFailed = NewBaseError(
		http.StatusBadRequest,
		"verification_failed",
		"The source does not link to the target",
		"",
	)

	// Transport failures on dependent fetches.
	ErrTransport = NewBaseError(
		http.StatusBadGateway,
		"transport_error",
		"A dependent fetch failed or timed out",
		"",
	)

	// Entry store errors.
	ErrEntryNotFound = NewBaseError(
		http.StatusNotFound,
		"entry_not_found",
		"No entry with that identifier",
		"",
	)

	ErrEntryGone = NewBaseError(
		http.StatusGone,
		"entry_deleted",
		"The entry has been deleted",
		"",
	)

	ErrLocationConflict = NewBaseError(
		http.StatusConflict,
		"location_conflict",
		"Another live entry already claims that location",
		"",
	)

	// General errors.
	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"not_found",
		"Resource not found",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"forbidden",
		"Access denied",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"conflict",
		"Resource conflict",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"internal_error",
		"Internal server error",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "database_execute_failed"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Database execution failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
