package errors

import (
	stderrors "errors"
	"fmt"
)

// Category groups errors by where they surface.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryStartup Category = "startup"
	CategoryRender  Category = "render"
	CategoryCLI     Category = "cli"
)

// Error is a structured error with an explanation and a fix suggestion.
type Error struct {
	// Code is a unique error identifier (e.g., "E102").
	Code string

	// Category is where the error surfaced.
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
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithDetail sets the detailed explanation.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithDetailf sets a formatted detailed explanation.
func (e *Error) WithDetailf(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion sets the fix suggestion.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// Wrap sets the underlying error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered code.
func New(code string) *Error {
	tmpl, ok := registry[code]
	if !ok {
		return &Error{Code: code, Message: "Unknown error"}
	}
	return &Error{
		Code:       code,
		Category:   tmpl.Category,
		Message:    tmpl.Message,
		Detail:     tmpl.Detail,
		Suggestion: tmpl.Suggestion,
	}
}

// Newf creates an Error with a formatted message and no code.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in an Error with the given code. An err that already
// is an *Error is returned unchanged.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code string) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Code == code
}
