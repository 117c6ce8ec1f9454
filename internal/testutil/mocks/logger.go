package mocks

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/sotsync/internal/ports"
)

// LogEntry is one message captured by Logger.
type LogEntry struct {
	Level   ports.Level
	Message string
	Fields  []ports.Field
}

// Field returns the value of the named field.
func (e LogEntry) Field(key string) (any, bool) {
	for i := len(e.Fields) - 1; i >= 0; i-- {
		if e.Fields[i].Key == key {
			return e.Fields[i].Value, true
		}
	}
	return nil, false
}

type logSink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// Logger is a thread-safe ports.Logger that records every entry.
// Loggers derived with With share the parent's entries.
type Logger struct {
	sink   *logSink
	mu     sync.RWMutex
	level  ports.Level
	fields []ports.Field
}

// NewLogger creates a recording logger at debug level.
func NewLogger() *Logger {
	return &Logger{sink: &logSink{}, level: ports.LevelDebug}
}

// Debug records a debug message.
func (l *Logger) Debug(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ports.LevelDebug, msg, fields)
}

// Info records an informational message.
func (l *Logger) Info(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ports.LevelInfo, msg, fields)
}

// Warn records a warning.
func (l *Logger) Warn(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ports.LevelWarn, msg, fields)
}

// Error records an error.
func (l *Logger) Error(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ports.LevelError, msg, fields)
}

// With returns a logger that adds fields to every entry.
func (l *Logger) With(fields ...ports.Field) ports.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	merged := make([]ports.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Logger{sink: l.sink, level: l.level, fields: merged}
}

// Level returns the minimum level.
func (l *Logger) Level() ports.Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// SetLevel sets the minimum level.
func (l *Logger) SetLevel(level ports.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Entries returns a copy of every recorded entry.
func (l *Logger) Entries() []LogEntry {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	out := make([]LogEntry, len(l.sink.entries))
	copy(out, l.sink.entries)
	return out
}

// EntriesAt returns the entries recorded at level.
func (l *Logger) EntriesAt(level ports.Level) []LogEntry {
	var out []LogEntry
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Messages returns the recorded messages in order.
func (l *Logger) Messages() []string {
	entries := l.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

func (l *Logger) log(level ports.Level, msg string, fields []ports.Field) {
	l.mu.RLock()
	threshold := l.level
	base := l.fields
	l.mu.RUnlock()
	if level < threshold {
		return
	}

	all := make([]ports.Field, 0, len(base)+len(fields))
	all = append(all, base...)
	all = append(all, fields...)

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = append(l.sink.entries, LogEntry{Level: level, Message: msg, Fields: all})
}

// Ensure Logger implements ports.Logger.
var _ ports.Logger = (*Logger)(nil)
