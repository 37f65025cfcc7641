package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger writes leveled, printf-style messages through slog. It satisfies
// converter.Logger.
type Logger struct {
	slog *slog.Logger
	file *os.File
}

// ParseLevel maps a configured level name to a slog level. Unknown names
// are info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// New creates a logger writing text records at or above level to w.
func New(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{slog: slog.New(handler)}
}

// NewFile creates a logger that appends to converter.log inside logDir and
// mirrors records to console.
func NewFile(logDir string, level slog.Level, console io.Writer) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, "converter.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}

	var w io.Writer = f
	if console != nil {
		w = io.MultiWriter(f, console)
	}
	l := New(w, level)
	l.file = f
	return l, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return New(io.Discard, slog.LevelError+1)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Enabled reports whether records at level are written.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.slog.Enabled(context.Background(), level)
}

func (l *Logger) log(level slog.Level, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	l.slog.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(slog.LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(slog.LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(slog.LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(slog.LevelError, format, args...) }
