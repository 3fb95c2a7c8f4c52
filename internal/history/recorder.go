// Package history keeps the bounded action log and per-(action, source)
// execution counters, and fans completed actions out to optional sinks
// (append-only log file, SQLite store).
package history

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/source"
)

// Record is one executed action. Records are created only as a side effect
// of successful dispatch and never mutated afterwards.
type Record struct {
	// Action is the canonical action name.
	Action string `json:"action"`

	// Source is the input source that triggered the action.
	Source source.ID `json:"source"`

	// Details names the raw signal that triggered the action
	// (e.g. "left_gaze", "pinch").
	Details string `json:"details,omitempty"`

	// Timestamp is when the mapper dispatched the action.
	Timestamp time.Time `json:"timestamp"`

	// Executed is false when the external executor returned a failure.
	// The action still consumed its cooldown slot and is still counted.
	Executed bool `json:"executed"`
}

// Key identifies a stats counter bucket.
type Key struct {
	Action string
	Source source.ID
}

// Sink receives every appended record. Sink failures are logged and never
// propagate into the dispatch path.
type Sink interface {
	WriteRecord(rec Record) error
}

// Recorder is the bounded append-only action log plus the stats counter
// map. Capacity is FIFO: once full, appending evicts the oldest record.
// Every append increments exactly one stats counter, so the two views are
// always consistent.
type Recorder struct {
	mu       sync.Mutex
	capacity int
	ring     []Record
	head     int
	size     int
	stats    map[Key]int64
	sinks    []Sink
	logger   *slog.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithSink attaches a sink that receives every appended record.
func WithSink(sink Sink) RecorderOption {
	return func(r *Recorder) {
		if sink != nil {
			r.sinks = append(r.sinks, sink)
		}
	}
}

// WithRecorderLogger sets the logger used for sink failures.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRecorder creates a Recorder holding at most capacity records.
// Capacity must be positive; the default is 100.
func NewRecorder(capacity int, opts ...RecorderOption) *Recorder {
	if capacity <= 0 {
		capacity = 100
	}
	r := &Recorder{
		capacity: capacity,
		ring:     make([]Record, capacity),
		stats:    make(map[Key]int64),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Append records an action, evicting the oldest record when full, and
// increments the (action, source) counter. Sinks run after the bookkeeping;
// a failing sink is logged and skipped.
func (r *Recorder) Append(rec Record) {
	r.mu.Lock()
	idx := (r.head + r.size) % r.capacity
	r.ring[idx] = rec
	if r.size < r.capacity {
		r.size++
	} else {
		r.head = (r.head + 1) % r.capacity
	}
	r.stats[Key{Action: rec.Action, Source: rec.Source}]++
	sinks := r.sinks
	r.mu.Unlock()

	for _, sink := range sinks {
		if err := sink.WriteRecord(rec); err != nil {
			r.logger.Warn("history sink write failed",
				"action", rec.Action, "source", string(rec.Source), "error", err)
		}
	}
}

// Recent returns up to limit of the most recent records in chronological
// order. A non-positive limit returns everything retained.
func (r *Recorder) Recent(limit int) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.size
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Record, 0, n)
	for i := r.size - n; i < r.size; i++ {
		out = append(out, r.ring[(r.head+i)%r.capacity])
	}
	return out
}

// Len returns the number of records currently retained.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Stats returns a copy of the per-(action, source) execution counters.
func (r *Recorder) Stats() map[Key]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[Key]int64, len(r.stats))
	for k, v := range r.stats {
		out[k] = v
	}
	return out
}

// Total returns the sum of all stats counters.
func (r *Recorder) Total() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int64
	for _, v := range r.stats {
		total += v
	}
	return total
}
