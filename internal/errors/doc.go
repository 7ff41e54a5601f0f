// Package errors provides structured, actionable errors for configuration
// and startup failures.
//
// Each error has a registered code (e.g., "E104") that maps to a short
// message, a longer explanation, and a fix suggestion:
//
//	err := errors.New("E104").Wrap(readErr)
//	errors.Print(os.Stderr, err)
//	// ERROR E104: Shell template unavailable
//	//
//	//   The shell template could not be read. ...
//	//
//	//   Cause: open dist/client/index.html: no such file or directory
//	//
//	//   Hint: Build the client first so the shell exists, ...
//
// Request-time failures do not use this package; they are ordinary wrapped
// errors handled by the dispatcher's error handler.
package errors
