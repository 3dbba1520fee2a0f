package testutil

import (
	"sync"

	"github.com/hupe1980/litertlm/logging"
)

// LogEntry is a single captured log call.
type LogEntry struct {
	Level string
	Msg   string
	Args  []any
}

// RecordingLogger captures log calls for later assertions. It is safe for
// concurrent use.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ logging.Logger = (*RecordingLogger)(nil)

// NewRecordingLogger creates an empty RecordingLogger.
func NewRecordingLogger() *RecordingLogger { return &RecordingLogger{} }

func (l *RecordingLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Args: append([]any(nil), args...)})
}

// Debug records a debug entry.
func (l *RecordingLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args) }

// Info records an info entry.
func (l *RecordingLogger) Info(msg string, args ...any) { l.record("INFO", msg, args) }

// Warn records a warning entry.
func (l *RecordingLogger) Warn(msg string, args ...any) { l.record("WARN", msg, args) }

// Error records an error entry.
func (l *RecordingLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args) }

// Entries returns a snapshot of all captured entries.
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry(nil), l.entries...)
}

// Has reports whether an entry with the given level and message was captured.
func (l *RecordingLogger) Has(level, msg string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && e.Msg == msg {
			return true
		}
	}
	return false
}
