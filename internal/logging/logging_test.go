package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "json", Output: &buf})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("render failed", "path", "/film/550")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "render failed", entry["msg"])
	assert.Equal(t, "/film/550", entry["path"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Output: &buf})
	require.NoError(t, err)

	logger.Debug("classified", "decision", "client_only")
	assert.Contains(t, buf.String(), "classified")
	assert.Contains(t, buf.String(), "client_only")
}

func TestNewInvalid(t *testing.T) {
	_, err := New(Config{Format: "xml"})
	assert.Error(t, err)

	_, err = New(Config{Level: "loud"})
	assert.Error(t, err)
}
