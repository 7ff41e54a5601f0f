// Package logging builds the process logger.
//
// Text output goes through charmbracelet/log for readable, colored lines in
// a terminal; JSON output uses the standard slog JSON handler for log
// collectors. Either way callers get a *slog.Logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Config configures New.
type Config struct {
	// Level is debug, info, warn, or error. Defaults to info.
	Level string

	// Format is text or json. Defaults to text.
	Format string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// New creates a logger from cfg.
func New(cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	switch cfg.Format {
	case "", "text":
		l := log.NewWithOptions(out, log.Options{
			ReportTimestamp: true,
			Level:           charmLevel(level),
		})
		return slog.New(l), nil
	case "json":
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})), nil
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}
}

// ParseLevel parses a level name. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("logging: unknown level %q", s)
	}
}

func charmLevel(l slog.Level) log.Level {
	switch {
	case l <= slog.LevelDebug:
		return log.DebugLevel
	case l <= slog.LevelInfo:
		return log.InfoLevel
	case l <= slog.LevelWarn:
		return log.WarnLevel
	default:
		return log.ErrorLevel
	}
}

// Discard returns a logger that drops everything. Tests use it to keep
// output quiet.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
