package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogFormat represents the output format for operational logs.
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in key=value text format.
	FormatText LogFormat = "text"
)

// LevelOff is above every level a record can carry, so nothing is emitted.
const LevelOff = slog.Level(100)

// Logger writes operational logs through slog and request/response events
// verbatim. Both share one writer so a multi-line event block is never
// interleaved with another line.
type Logger struct {
	// slog is the underlying structured logger
	slog *slog.Logger

	// level is the live minimum level, shared by every derived logger
	level *slog.LevelVar

	// out serializes writes to the underlying writer
	out *lockedWriter
}

// Config contains configuration for the Logger.
type Config struct {
	// Level is the minimum log level: a LOG_LEVEL name ("critical",
	// "normal", "debug", "off") or a slog name ("debug", "info", "warn",
	// "error").
	Level string

	// Format is the operational log format ("json" or "text").
	Format string

	// AddSource includes file and line number in logs
	AddSource bool

	// Writer is the output writer (defaults to os.Stdout)
	Writer io.Writer
}

// Event is a pre-rendered log event such as a request or response record.
type Event interface {
	Render() ([]byte, error)
}

// New creates a new Logger with the given configuration.
func New(cfg Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	out := &lockedWriter{w: writer}
	opts := &slog.HandlerOptions{
		Level:     levelVar,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	return &Logger{
		slog:  slog.New(handler),
		level: levelVar,
		out:   out,
	}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	l, _ := New(Config{Level: "off", Writer: io.Discard})
	return l
}

// Event writes a rendered event at info level. Rendering and write failures
// are reported as a warning and otherwise swallowed; the caller never sees
// them.
func (l *Logger) Event(ctx context.Context, e Event) {
	if !l.Enabled(ctx, slog.LevelInfo) {
		return
	}

	b, err := e.Render()
	if err != nil {
		l.WarnContext(ctx, "failed to render log event", "error", err)
		return
	}

	if len(b) == 0 || b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}

	if _, err := l.out.Write(b); err != nil {
		l.slog.DebugContext(ctx, "failed to write log event", "error", err)
	}
}

// Enabled reports whether a record at level would be emitted.
func (l *Logger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.slog.Enabled(ctx, level)
}

// SetLevel changes the minimum level of this logger and every logger
// derived from it.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Slog exposes the underlying slog.Logger for libraries that accept one.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// DebugContext logs a debug message with context fields.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slog.DebugContext(ctx, msg, append(contextFields(ctx), args...)...)
}

// InfoContext logs an info message with context fields.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slog.InfoContext(ctx, msg, append(contextFields(ctx), args...)...)
}

// WarnContext logs a warning message with context fields.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slog.WarnContext(ctx, msg, append(contextFields(ctx), args...)...)
}

// ErrorContext logs an error message with context fields.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slog.ErrorContext(ctx, msg, append(contextFields(ctx), args...)...)
}

// With creates a new logger with additional fields. The level stays shared
// with the parent.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:  l.slog.With(args...),
		level: l.level,
		out:   l.out,
	}
}

// ParseLevel parses a log level name into a slog.Level.
//
// The LOG_LEVEL names map as follows: critical logs warnings and errors
// only, normal logs info and above, debug logs everything and off logs
// nothing.
func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug", "trace":
		return slog.LevelDebug, nil
	case "normal", "info", "":
		return slog.LevelInfo, nil
	case "critical", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "off", "none":
		return LevelOff, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

func parseFormat(formatStr string) (LogFormat, error) {
	switch strings.ToLower(formatStr) {
	case "json", "":
		return FormatJSON, nil
	case "text", "console":
		return FormatText, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format: %s", formatStr)
	}
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}
