package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		In   string
		Want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}

	for _, tc := range testCases {
		got, err := ParseLevel(tc.In)
		require.NoError(t, err, tc.In)
		assert.Equal(t, tc.Want, got, tc.In)
	}

	_, err := ParseLevel("verbose")
	assert.ErrorIs(t, err, errUnknownLevel)
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer

	h, err := NewHandler(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	logger := slog.New(h)
	logger.Debug("hidden")
	logger.Info("recorded", "domain", "github.com")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "recorded", line["msg"])
	assert.Equal(t, "github.com", line["domain"])

	_, err = NewHandler(&buf, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, errUnknownFormat)
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "diary.log")

	logger, closer, err := New(Options{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Debug("host started")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "host started")
}
