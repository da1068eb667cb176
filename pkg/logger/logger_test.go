package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wallgrab/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug level", &config.LoggingConfig{Level: "debug"}, false},
		{"invalid level", &config.LoggingConfig{Level: "invalid"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "wallgrab.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)

			if tt.cfg.File != "" {
				_, statErr := os.Stat(tt.cfg.File)
				assert.NoError(t, statErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"loud", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestFieldsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter("debug", &buf)
	require.NoError(t, err)

	l.WithField("url", "https://example.com/a.png").
		WithError(errors.New("boom")).
		WarnWithFields("Download failed", map[string]interface{}{"attempt": 2})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]

	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Download failed", entry["message"])
	assert.Equal(t, "wallgrab", entry["app"])
	assert.Equal(t, "https://example.com/a.png", entry["url"])
	assert.Equal(t, "boom", entry["error"])
	assert.EqualValues(t, 2, entry["attempt"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter("warn", &buf)
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("hidden too")
	l.Warn("shown")
	l.Error("shown as well")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "shown", entries[0]["message"])
}

func TestTestLoggerCapturesFields(t *testing.T) {
	tl := NewTestLogger()

	tl.WithField("component", "ledger").WithError(errors.New("disk full")).Error("Record failed")
	tl.InfoWithFields("Summary", map[string]interface{}{"saved": 3})

	msgs := tl.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "ERROR", msgs[0].Level)
	assert.Equal(t, "ledger", msgs[0].Fields["component"])
	assert.EqualError(t, msgs[0].Error, "disk full")
	assert.True(t, tl.HasMessage("Summary"))
	assert.Len(t, tl.GetMessagesByLevel("INFO"), 1)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.WithField("k", "v").WithError(errors.New("x")).ErrorWithFields("msg", nil)
	})
}
