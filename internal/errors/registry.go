package errors

import "sort"

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Configuration Errors (E101-E119)
	// ============================================

	"E101": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Detail:     "No movieflair.yaml was found. Built-in defaults and environment variables are used.",
		Suggestion: "Create movieflair.yaml or pass --config to point at one.",
	},
	"E102": {
		Category:   CategoryConfig,
		Message:    "Invalid build mode",
		Detail:     "The mode must be development or production.",
		Suggestion: "Set mode: production in movieflair.yaml or APP_ENV=production.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A port, duration, or path in the configuration is out of range.",
	},
	"E104": {
		Category:   CategoryStartup,
		Message:    "Shell template unavailable",
		Detail:     "The shell template could not be read. Every request would fail, so the server refuses to start.",
		Suggestion: "Build the client first so the shell exists, or fix shell.dist_dir and shell.file.",
	},
	"E105": {
		Category:   CategoryConfig,
		Message:    "Object storage shell misconfigured",
		Detail:     "shell.s3.bucket is set but shell.s3.key is empty.",
		Suggestion: "Set shell.s3.key to the object key of the built index.html.",
	},
	"E106": {
		Category:   CategoryStartup,
		Message:    "Entry module not registered",
		Detail:     "No render entry is registered under the configured entry.module.",
		Suggestion: "Check entry.module against the modules the application registers.",
	},
}

// Lookup returns the template for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered codes in order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
