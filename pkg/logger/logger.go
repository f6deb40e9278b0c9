// Package logger builds the process-wide slog logger from configuration.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Config contains logger configuration.
type Config struct {
	Level    slog.Level // Minimum log level to output
	Prefix   string     // Tag attached to every record
	Console  bool       // Enable console output
	File     bool       // Enable file output
	FilePath string     // Path to log file
}

// ParseLogLevel parses a string to a slog level.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "INFO", "info":
		return slog.LevelInfo
	case "WARN", "warn":
		return slog.LevelWarn
	case "ERROR", "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a logger with the given configuration. The log file, if
// enabled, stays open for the life of the process.
func NewLogger(cfg *Config) (*slog.Logger, error) {
	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, os.Stderr)
	}

	if cfg.File && cfg.FilePath != "" {
		dir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, file)
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.Level})
	log := slog.New(handler)
	if cfg.Prefix != "" {
		log = log.With("app", cfg.Prefix)
	}
	return log, nil
}

// NewDefaultLogger creates a console logger with default settings.
func NewDefaultLogger() *slog.Logger {
	l, _ := NewLogger(&Config{
		Level:   slog.LevelInfo,
		Console: true,
	})
	return l
}
