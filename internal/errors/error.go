package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryRouter   Category = "router"
	CategorySource   Category = "source"
	CategoryProtocol Category = "protocol"
	CategoryCLI      Category = "cli"
)

// PegelError is a structured error with a code, an explanation and a hint.
type PegelError struct {
	// Code is a unique error identifier (e.g., "P101").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *PegelError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		return msg + ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *PegelError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a PegelError with the same code.
// Errors without a code never match by code.
func (e *PegelError) Is(target error) bool {
	t, ok := target.(*PegelError)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *PegelError) WithSuggestion(s string) *PegelError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *PegelError) WithDetail(d string) *PegelError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *PegelError) Wrap(err error) *PegelError {
	e.Wrapped = err
	return e
}

// New creates a PegelError from a registered error code.
func New(code string) *PegelError {
	template, ok := registry[code]
	if !ok {
		return &PegelError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &PegelError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new PegelError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *PegelError {
	return &PegelError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a PegelError.
// Errors that already are PegelErrors are returned unchanged.
func FromError(err error, code string) *PegelError {
	if err == nil {
		return nil
	}
	var pe *PegelError
	if stderrors.As(err, &pe) {
		return pe
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first PegelError in err's chain.
func CodeOf(err error) string {
	var pe *PegelError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
