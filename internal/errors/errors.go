// Package errors provides the error taxonomy shared by the estimation core and its adapters.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeInput is a malformed or out-of-range numeric input to a sizing or
	// conversion function. Fatal to that call, never retried.
	TypeInput Type = "INVALID_INPUT"

	// TypeParsing means the completion response had no usable BOQ block.
	// Recoverable: the caller re-prompts.
	TypeParsing Type = "PARSE_ERROR"

	// TypeUnresolvedMaterial is a soft condition: the material is priced at 0
	// and flagged, the rest of the BOQ continues.
	TypeUnresolvedMaterial Type = "UNRESOLVED_MATERIAL"

	// TypeLandTooSmall is a soft condition reported by the feasibility estimator
	TypeLandTooSmall Type = "LAND_TOO_SMALL"

	// TypeTimeout indicates an external call exceeded its deadline
	TypeTimeout Type = "TIMEOUT"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeNetwork indicates a failure talking to an external collaborator
	TypeNetwork Type = "NETWORK_ERROR"

	// TypeNotFound indicates a missing record
	TypeNotFound Type = "NOT_FOUND"

	// TypeConflict rejects a write that contradicts stored state, such as a
	// second diary entry for one day or stock drawn below zero
	TypeConflict Type = "CONFLICT"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the error has type t
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// TypeOf returns the type of the first *Error in err's chain, or "" when there is none
func TypeOf(err error) Type {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}

// IsType checks if an error (or anything it wraps) is of a specific type
func IsType(err error, t Type) bool {
	return err != nil && TypeOf(err) == t
}

// InvalidInput creates an input error for the named field
func InvalidInput(field string, value interface{}) *Error {
	return Newf(TypeInput, "invalid %s: %v", field, value).WithContext("field", field)
}

// Parsing creates a parsing error
func Parsing(message string, cause error) *Error {
	return Wrap(TypeParsing, message, cause)
}

// Unresolved creates an unresolved-material error
func Unresolved(material string) *Error {
	return Newf(TypeUnresolvedMaterial, "no price found for %s", material).WithContext("material", material)
}

// LandTooSmall creates a land-too-small error
func LandTooSmall(landSqm, requiredSqm float64) *Error {
	return Newf(TypeLandTooSmall, "land of %.0f sqm is smaller than the %.0f sqm footprint", landSqm, requiredSqm)
}

// Timeout creates a timeout error
func Timeout(operation string, cause error) *Error {
	return Wrapf(TypeTimeout, cause, "%s timed out", operation)
}

// Network creates a network error
func Network(message string, cause error) *Error {
	return Wrap(TypeNetwork, message, cause)
}

// Config creates a configuration error
func Config(message string) *Error {
	return New(TypeConfig, message)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}

// Conflict creates a conflict error
func Conflict(message string) *Error {
	return New(TypeConflict, message)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
