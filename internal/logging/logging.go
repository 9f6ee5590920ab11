// Package logging builds the structured logger shared by diary commands
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ayoisaiah/diary/internal/apperr"
	"github.com/ayoisaiah/diary/internal/osutil"
)

const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

var (
	errUnknownLevel = &apperr.Error{
		Message: "unknown log level: %s",
	}

	errUnknownFormat = &apperr.Error{
		Message: "unknown log format: %s",
	}
)

// Options configures the logger.
type Options struct {
	Level  string
	Format string
	// File receives log output through a rotating writer. It is required
	// when stdout carries a protocol, e.g. native messaging.
	File string
	// Stderr additionally copies log output to standard error.
	Stderr bool
}

// New returns a logger that writes to a rotating log file and, optionally,
// standard error. It never writes to standard output. The returned closer
// flushes and closes the log file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)

	if opts.File != "" {
		err := os.MkdirAll(filepath.Dir(opts.File), osutil.DirPermission)
		if err != nil {
			return nil, nil, err
		}

		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}

		writers = append(writers, lj)
		closer = lj
	}

	if opts.Stderr || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	h, err := NewHandler(io.MultiWriter(writers...), level, opts.Format)
	if err != nil {
		return nil, nil, err
	}

	return slog.New(h), closer, nil
}

// NewHandler returns a text or JSON handler writing to w.
func NewHandler(w io.Writer, level slog.Level, format string) (slog.Handler, error) {
	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return slog.NewTextHandler(w, handlerOpts), nil
	case "json":
		return slog.NewJSONHandler(w, handlerOpts), nil
	default:
		return nil, errUnknownFormat.Fmt(format)
	}
}

// ParseLevel converts a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errUnknownLevel.Fmt(s)
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
