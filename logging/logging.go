// Package logging builds the structured loggers used across the binaries.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Common field and component names for structured logging
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldFile      = "file"
	FieldError     = "error"

	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentIngest    = "ingest"
	ComponentStorage   = "storage"
	ComponentScheduler = "scheduler"
	ComponentReport    = "report"
)

// Config holds logger configuration
type Config struct {
	Level     string // debug, info, warn, error
	Format    string // text or json
	Component string
	Output    io.Writer
}

// DefaultConfig returns the logger used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "text",
		Component: ComponentApp,
		Output:    os.Stderr,
	}
}

// New creates a logger tagged with cfg.Component.
func New(cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		handler = slog.NewTextHandler(out, opts)
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q: must be text or json", cfg.Format)
	}

	logger := slog.New(handler)
	if cfg.Component != "" {
		logger = logger.With(FieldComponent, cfg.Component)
	}
	return logger, nil
}

// ParseLevel maps a level name to its slog.Level.
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
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// WithComponent returns a child logger for another component.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(FieldComponent, component)
}
