// Package logging provides file-based logging for tasktree.
// Entries go to a global log (<data dir>/logs/tasktree.log) and, when tied
// to a task, also to that task's log (<data dir>/logs/task-<id>.log).
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/runoshun/tasktree/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger writes leveled entries to log files and optionally mirrors them
// to a structured slog.Logger.
// Fields are ordered to minimize memory padding.
type Logger struct {
	clock      domain.Clock
	globalFile *os.File
	taskFiles  map[string]*os.File
	mirror     *slog.Logger
	dataDir    string
	mu         sync.Mutex
	level      slog.Level
}

// Option configures a Logger.
type Option func(*Logger)

// WithMirror also sends every accepted entry to l as a structured record.
func WithMirror(l *slog.Logger) Option {
	return func(lg *Logger) { lg.mirror = l }
}

// WithClock sets the clock used for entry timestamps.
func WithClock(c domain.Clock) Option {
	return func(lg *Logger) { lg.clock = c }
}

// New creates a Logger that writes under dataDir/logs.
// If dataDir is empty, file output is disabled.
func New(dataDir string, level slog.Level, opts ...Option) *Logger {
	l := &Logger{
		dataDir:   dataDir,
		level:     level,
		clock:     domain.RealClock{},
		taskFiles: make(map[string]*os.File),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
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

// openLog opens path for appending, creating the logs directory first.
func (l *Logger) openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	// Log files are append-only and readable by the owning group
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// writers returns the files an entry for taskID should go to.
// Must be called with l.mu held.
func (l *Logger) writers(taskID string) []io.Writer {
	var out []io.Writer

	if l.globalFile == nil {
		if f, err := l.openLog(domain.GlobalLogPath(l.dataDir)); err == nil {
			l.globalFile = f
		}
	}
	if l.globalFile != nil {
		out = append(out, l.globalFile)
	}

	if taskID == "" {
		return out
	}
	f, ok := l.taskFiles[taskID]
	if !ok {
		var err error
		if f, err = l.openLog(domain.TaskLogPath(l.dataDir, taskID)); err != nil {
			return out
		}
		l.taskFiles[taskID] = f
	}
	return append(out, f)
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	if l.globalFile != nil {
		if err := l.globalFile.Close(); err != nil {
			lastErr = err
		}
		l.globalFile = nil
	}
	for id, f := range l.taskFiles {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.taskFiles, id)
	}
	return lastErr
}

// formatLog formats a log entry.
// Format: [2026-01-02 15:04:05] [INFO] [task-<id>] [category] message
func formatLog(ts string, level slog.Level, taskID, category, msg string) string {
	scope := "global"
	if taskID != "" {
		scope = "task-" + taskID
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n", ts, level.String(), scope, category, msg)
}

// log writes an entry to the global log and, if taskID is set, to the
// task's log. Entries below the configured level are dropped.
func (l *Logger) log(level slog.Level, taskID, category, msg string) {
	if level < l.level {
		return
	}

	if l.mirror != nil {
		attrs := []any{slog.String("category", category)}
		if taskID != "" {
			attrs = append(attrs, slog.String("task", taskID))
		}
		l.mirror.Log(context.Background(), level, msg, attrs...)
	}

	if l.dataDir == "" {
		return // File logging disabled
	}

	entry := formatLog(l.clock.Now().Format("2006-01-02 15:04:05"), level, taskID, category, msg)

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.writers(taskID) {
		_, _ = io.WriteString(w, entry)
	}
}

// Info logs an info message.
func (l *Logger) Info(taskID, category, msg string) {
	l.log(slog.LevelInfo, taskID, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(taskID, category, msg string) {
	l.log(slog.LevelDebug, taskID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(taskID, category, msg string) {
	l.log(slog.LevelWarn, taskID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(taskID, category, msg string) {
	l.log(slog.LevelError, taskID, category, msg)
}
