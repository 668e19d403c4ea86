// Package apperror provides the failure taxonomy shared by every layer.
// Components return typed failures and never format responses themselves;
// the HTTP layer classifies them in one place.
package apperror

import (
	"errors"
	"fmt"
)

// Kind identifies the failure family. Classification dispatches on it.
type Kind int

const (
	// KindUnknown is the zero value: a failure nothing else recognizes.
	KindUnknown Kind = iota
	KindLogic
	KindValidation
	KindNotFound
	KindAuthentication
	KindAuthorization
	KindForbidden
	KindNoData
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindLogic:
		return "logic"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindForbidden:
		return "forbidden"
	case KindNoData:
		return "no_data"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Signals raised by the routing layer itself.
var (
	// ErrNoRoute is raised when no route matches the request.
	ErrNoRoute = errors.New("route not found")

	// ErrUnauthorized is raised when a secured route is hit without valid credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is the standard failure type for the application.
type Error struct {
	// Kind selects the classification branch
	Kind Kind

	// Message is a localization key or literal text
	Message string

	// Variables are interpolation data for a localized Message
	Variables map[string]any

	// Data carries structured details (field errors for validation failures)
	Data map[string]string

	// Err is the underlying cause (never exposed to clients)
	Err error
}

// Error implements error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *Error) Unwrap() error {
	return e.Err
}

// WithVariable adds a key-value pair to message variables
func (e *Error) WithVariable(key string, value any) *Error {
	if e.Variables == nil {
		e.Variables = make(map[string]any)
	}
	e.Variables[key] = value
	return e
}

// WithCause sets the underlying error
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewLogic creates a business rule violation carrying a message key.
func NewLogic(message string) *Error {
	return &Error{Kind: KindLogic, Message: message}
}

// NewValidation creates a field-level validation failure.
func NewValidation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Data: fields}
}

// NewNotFound creates a resource-not-found failure.
func NewNotFound(entity string, id any) *Error {
	return &Error{
		Kind:      KindNotFound,
		Message:   fmt.Sprintf("%s not found", entity),
		Variables: map[string]any{"entity": entity, "id": id},
	}
}

// NewAuthentication creates an authentication failure; its message reaches the client verbatim.
func NewAuthentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// NewAuthorization creates an authorization failure.
func NewAuthorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// NewForbidden creates a forbidden-access failure.
func NewForbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewNoData creates a failure for a query that returned nothing when one row was expected.
func NewNoData(err error) *Error {
	return &Error{Kind: KindNoData, Message: "no data", Err: err}
}

// NewInternal creates an internal server failure (hides details from client).
func NewInternal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// NewUnknown wraps a value nothing else recognizes, e.g. a recovered non-error panic.
func NewUnknown(v any) *Error {
	return &Error{Kind: KindUnknown, Message: fmt.Sprintf("unknown failure: %v", v)}
}

// --- Helper functions ---

// AsError extracts Error from error chain
func AsError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of the first Error in the chain, or KindUnknown.
func KindOf(err error) Kind {
	if appErr, ok := AsError(err); ok {
		return appErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries an Error of the given kind.
func IsKind(err error, kind Kind) bool {
	if appErr, ok := AsError(err); ok {
		return appErr.Kind == kind
	}
	return false
}
