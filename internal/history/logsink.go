package history

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// FormatLine renders a record in the persisted action log line format:
//
//	[<ISO-8601 timestamp>] <SOURCE> -> <action> (<details>)
func FormatLine(rec Record) string {
	line := fmt.Sprintf("[%s] %s -> %s",
		rec.Timestamp.Format(time.RFC3339),
		strings.ToUpper(string(rec.Source)),
		rec.Action)
	if rec.Details != "" {
		line += fmt.Sprintf(" (%s)", rec.Details)
	}
	return line
}

// LogSink appends one formatted line per successfully executed action to a
// writer. Failed executions are recorded in history and stats but produce
// no log line.
type LogSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogSink creates a LogSink over the given writer.
func NewLogSink(w io.Writer) *LogSink {
	return &LogSink{w: w}
}

// WriteRecord appends the record's log line. Non-executed records are
// skipped silently.
func (s *LogSink) WriteRecord(rec Record) error {
	if !rec.Executed {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.w, FormatLine(rec)+"\n"); err != nil {
		return fmt.Errorf("failed to append action log line: %w", err)
	}
	return nil
}

// FileLogSink is a LogSink backed by an append-only file.
type FileLogSink struct {
	LogSink
	f *os.File
}

// OpenLogFile opens (or creates) the action log file in append mode.
func OpenLogFile(path string) (*FileLogSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open action log %s: %w", path, err)
	}
	return &FileLogSink{LogSink: LogSink{w: f}, f: f}, nil
}

// Close closes the underlying file.
func (s *FileLogSink) Close() error {
	return s.f.Close()
}
