// Package logging builds the structured loggers used across VidAdmin.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New creates a JSON logger writing to w at the given level ("debug", "info",
// "warn", "error"...). Unknown levels fall back to info. Every entry carries
// a timestamp and the service name.
func New(w io.Writer, level, service string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.DurationFieldInteger = true

	return zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("service", service).
		Logger()
}

// Open creates a logger writing to the file at path, appending to it if it
// exists. If path is empty the logger writes to stderr. The returned closer
// must be called once the logger is no longer needed.
func Open(path, level, service string) (zerolog.Logger, io.Closer, error) {
	if path == "" {
		return New(os.Stderr, level, service), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	return New(f, level, service), f, nil
}
