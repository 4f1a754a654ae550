// Package logger provides the structured logger used by the server and API.
//
// The calculation packages (engine, insights) never log; only the outer
// layers do.
//
//	log := logger.New(logger.Config{Level: "debug", Format: "json"})
//	log.Info("server started", "addr", ":8080")
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a leveled key/value logger.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)

	// With returns a logger that adds the given fields to every entry.
	With(keysAndValues ...any) Logger
}

// Config selects level, destination and format.
type Config struct {
	Level  string `yaml:"level" env:"LEVEL"`   // debug, info, warn, error
	Output string `yaml:"output" env:"OUTPUT"` // stdout, stderr or a file path
	Format string `yaml:"format" env:"FORMAT"` // text or json
}

type logger struct {
	slogger *slog.Logger
}

// New builds a logger. An unusable Output falls back to stderr.
func New(cfg Config) Logger {
	w, err := writerFor(cfg.Output)
	if err != nil {
		w = os.Stderr
	}
	return NewWriter(w, cfg)
}

// NewWriter builds a logger writing to w, ignoring cfg.Output.
func NewWriter(w io.Writer, cfg Config) Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return &logger{slogger: slog.New(handler)}
}

func (l *logger) Debug(msg string, kv ...any) { l.slogger.Debug(msg, kv...) }
func (l *logger) Info(msg string, kv ...any)  { l.slogger.Info(msg, kv...) }
func (l *logger) Warn(msg string, kv ...any)  { l.slogger.Warn(msg, kv...) }
func (l *logger) Error(msg string, kv ...any) { l.slogger.Error(msg, kv...) }

func (l *logger) With(kv ...any) Logger {
	return &logger{slogger: l.slogger.With(kv...)}
}

// ParseLevel maps a level name to slog.Level. Unknown names are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func writerFor(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout, nil
	case "stderr", "":
		return os.Stderr, nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", output, err)
	}
	return f, nil
}

// Default is info level, text, stderr.
func Default() Logger {
	return New(Config{Level: "info", Output: "stderr", Format: "text"})
}

// Noop discards everything. Used in tests.
func Noop() Logger {
	return &logger{slogger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
