package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Level represents logging severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	return l.slog().String()
}

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps "debug", "info", "warn" or "error" to a Level.
func ParseLevel(s string) (Level, error) {
	var sl slog.Level
	if err := sl.UnmarshalText([]byte(s)); err != nil {
		return LevelInfo, fmt.Errorf("parse log level: %w", err)
	}
	switch {
	case sl <= slog.LevelDebug:
		return LevelDebug, nil
	case sl < slog.LevelWarn:
		return LevelInfo, nil
	case sl < slog.LevelError:
		return LevelWarn, nil
	}
	return LevelError, nil
}

// Logger provides structured logging for the editor. Messages are plain
// strings followed by slog key/value pairs.
type Logger struct {
	base   *slog.Logger // without the component attribute
	sl     *slog.Logger
	prefix string
}

// New creates a new logger writing text records to out.
func New(out io.Writer, minLevel Level, prefix string) *Logger {
	if out == nil {
		out = os.Stdout
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: minLevel.slog()})
	sl := slog.New(handler)
	l := &Logger{base: sl, sl: sl}
	if prefix != "" {
		return l.WithPrefix(prefix)
	}
	return l
}

// Default returns a default logger to stdout
func Default() *Logger {
	return New(os.Stdout, LevelInfo, "")
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, LevelError, "")
}

// WithPrefix creates a sub-logger with an additional component prefix
func (l *Logger) WithPrefix(prefix string) *Logger {
	newPrefix := prefix
	if l.prefix != "" {
		newPrefix = l.prefix + "/" + prefix
	}
	return &Logger{
		base:   l.base,
		sl:     l.base.With(slog.String("component", newPrefix)),
		prefix: newPrefix,
	}
}

func (l *Logger) Debug(msg string, args ...any) { l.sl.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.sl.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.sl.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.sl.Error(msg, args...) }

// Step logs a named step with timing
func (l *Logger) Step(name string) func() {
	start := time.Now()
	l.Info("starting", "step", name)
	return func() {
		l.Info("completed", "step", name, "took", time.Since(start).Round(time.Millisecond))
	}
}

// Tokens logs token usage
func (l *Logger) Tokens(input, output int) {
	l.Info("tokens", "input", input, "output", output, "total", input+output)
}

// Rejected logs a command that was refused.
func (l *Logger) Rejected(reason error) {
	l.Warn("command rejected", "reason", reason.Error())
}

// Applied logs the outcome of an accepted command.
func (l *Logger) Applied(action string, added, updated, deleted, skipped int) {
	l.Info("command applied",
		"action", action,
		"added", added,
		"updated", updated,
		"deleted", deleted,
		"skipped", skipped,
	)
}
