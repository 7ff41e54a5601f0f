package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorEnabled = true
}

func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

// Format returns the error formatted for terminal display.
func (e *Error) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	if e.Code != "" {
		b.WriteString(color(colorRed+colorBold, "ERROR "+e.Code+": "))
	} else {
		b.WriteString(color(colorRed+colorBold, "ERROR: "))
	}
	b.WriteString(e.Message)
	b.WriteString("\n\n")

	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}
	if e.Wrapped != nil {
		b.WriteString("  " + color(colorGray, "Cause: ") + e.Wrapped.Error() + "\n\n")
	}
	if e.Suggestion != "" {
		b.WriteString("  " + color(colorCyan, "Hint: ") + e.Suggestion + "\n\n")
	}

	return b.String()
}

// FormatCompact returns a single-line form for logs.
func (e *Error) FormatCompact() string {
	return e.Error()
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// Print writes err to w, formatted when it is an *Error.
func Print(w io.Writer, err error) {
	var e *Error
	if stderrors.As(err, &e) {
		fmt.Fprint(w, e.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", color(colorRed+colorBold, "ERROR:"), err.Error())
}
