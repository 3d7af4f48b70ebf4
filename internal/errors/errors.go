// Package errors provides structured errors for the CLI and server
// surfaces: a stable code, a category, and optional suggestions rendered
// to the operator.
package errors

import (
	"fmt"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryProtocol Category = "protocol"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// Error is a structured error with a stable code and remediation hints.
type Error struct {
	// Code is a unique error identifier (e.g. "L101").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation, optional.
	Detail string

	// Suggestions are remediation hints shown to the operator.
	Suggestions []string

	// Cause is the wrapped underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Format renders the error for terminal output, including detail and
// suggestions when present.
func (e *Error) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "error %s (%s): %s\n", e.Code, e.Category, e.Message)
	if e.Detail != "" {
		fmt.Fprintf(&b, "  %s\n", e.Detail)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, "  caused by: %v\n", e.Cause)
	}
	for _, s := range e.Suggestions {
		fmt.Fprintf(&b, "  hint: %s\n", s)
	}
	return b.String()
}

// New creates a structured error.
func New(code string, category Category, message string) *Error {
	return &Error{Code: code, Category: category, Message: message}
}

// Wrap creates a structured error around an underlying cause.
func Wrap(code string, category Category, message string, cause error) *Error {
	return &Error{Code: code, Category: category, Message: message, Cause: cause}
}

// WithDetail attaches a longer explanation.
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

// WithSuggestion appends a remediation hint.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestions = append(e.Suggestions, s)
	return e
}
