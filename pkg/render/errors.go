package render

import (
	"errors"
	"fmt"
)

// ErrNoEntry is returned when a bundle has no entry point to render.
var ErrNoEntry = errors.New("render: bundle has no entry point")

// Error is a failed render.
type Error struct {
	// URL is the request URI being rendered.
	URL string

	// Err is the underlying failure.
	Err error

	// Stack is the goroutine stack captured when the tree panicked.
	// Empty for ordinary errors.
	Stack string

	// HeadersSent reports whether the response status and part of the
	// document were already written when the render failed.
	HeadersSent bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("render %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// PanicError is the error recorded when the application tree panics.
type PanicError struct {
	Value any
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// HeadersSent reports whether err is a render failure that happened after
// the response headers were written.
func HeadersSent(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.HeadersSent
}
