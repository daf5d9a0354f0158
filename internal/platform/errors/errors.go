// Package errors provides structured errors that carry a category, a client-safe
// message and log context, and map onto HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the category used for logging, metrics labels and responses.
type ErrorType string

const (
	// TypeValidation indicates invalid input (HTTP 400)
	TypeValidation ErrorType = "validation"
	// TypeForbidden indicates a request without a usable session or token (HTTP 403)
	TypeForbidden ErrorType = "forbidden"
	// TypeNotFound indicates a missing resource (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeInternal indicates a server-side failure (HTTP 500)
	TypeInternal ErrorType = "internal"
	// TypeExternal indicates a failing backing service (HTTP 503)
	TypeExternal ErrorType = "external"
)

var statusByType = map[ErrorType]int{
	TypeValidation: http.StatusBadRequest,
	TypeForbidden:  http.StatusForbidden,
	TypeNotFound:   http.StatusNotFound,
	TypeInternal:   http.StatusInternalServerError,
	TypeExternal:   http.StatusServiceUnavailable,
}

// Error is a categorized error with optional cause and log fields.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Fields  map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// HTTPStatus maps the category onto a status code. Unknown categories are 500.
func (e *Error) HTTPStatus() int {
	if status, ok := statusByType[e.Type]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WithField attaches a log field (chainable). Fields are never sent to clients.
func (e *Error) WithField(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// Response is the JSON body written for a failed request.
type Response struct {
	Error string    `json:"error"`
	Type  ErrorType `json:"type"`
}

func (e *Error) ToResponse() Response {
	return Response{Error: e.Message, Type: e.Type}
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause}
}

func ValidationError(message string) *Error { return newError(TypeValidation, message, nil) }

func ForbiddenError(message string) *Error { return newError(TypeForbidden, message, nil) }

func NotFoundError(message string) *Error { return newError(TypeNotFound, message, nil) }

func InternalError(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

func ExternalError(message string, cause error) *Error {
	return newError(TypeExternal, message, cause)
}

// AsStructuredError returns err as an *Error, wrapping anything unstructured
// as an internal error. It returns nil for a nil err.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}
	if structured, ok := errors.AsType[*Error](err); ok {
		return structured
	}
	return InternalError("internal server error", err)
}
