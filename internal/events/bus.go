package events

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/source"
	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/types"
)

// Sentinel errors for the event pipeline. The dispatcher reports throttled
// and unknown-label outcomes through these so the bus can classify them
// into counters without importing the mapper package.
var (
	// ErrBusClosed is returned by Submit/Emit after Close.
	ErrBusClosed = errors.New("event bus is closed")

	// ErrQueueFull is returned when the bounded queue stayed full past the
	// submit timeout and the event was dropped.
	ErrQueueFull = errors.New("event queue is full")

	// ErrUnknownSource is returned by Emit for sources not in the registry.
	ErrUnknownSource = errors.New("unknown event source")

	// ErrThrottled reports that an admitted event was dropped by the
	// mapper's cooldown enforcement.
	ErrThrottled = errors.New("action throttled by cooldown")

	// ErrUnknownLabel reports that the event's semantic label has no
	// action bound for its source.
	ErrUnknownLabel = errors.New("no action bound for event label")

	// ErrExecution reports that the external executor failed. The action
	// is still recorded and its cooldown slot consumed.
	ErrExecution = errors.New("action execution failed")
)

// Dispatcher consumes admitted events. The action mapper implements this.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, event Event) error

// Dispatch calls f(ctx, event).
func (f DispatcherFunc) Dispatch(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// busOptions holds configuration for Bus.
type busOptions struct {
	queueSize       int
	submitTimeout   time.Duration
	dispatchTimeout time.Duration
	debug           bool
	logger          *slog.Logger
	clock           func() time.Time
}

// Option is a functional option for configuring Bus.
type Option func(*busOptions)

// WithQueueSize sets the bounded queue capacity. Default: 100 events.
func WithQueueSize(n int) Option {
	return func(o *busOptions) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// WithSubmitTimeout sets how long a producer may block on a full queue
// before the event is dropped and counted. Default: 50ms.
func WithSubmitTimeout(d time.Duration) Option {
	return func(o *busOptions) {
		if d > 0 {
			o.submitTimeout = d
		}
	}
}

// WithDispatchTimeout bounds the synchronous forward to the dispatcher so a
// wedged executor cannot starve later events. Default: 1s.
func WithDispatchTimeout(d time.Duration) Option {
	return func(o *busOptions) {
		if d > 0 {
			o.dispatchTimeout = d
		}
	}
}

// WithDebug enables logging of blocked and paused-dropped events.
func WithDebug(debug bool) Option {
	return func(o *busOptions) {
		o.debug = debug
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *busOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the time source, for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(o *busOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// Counters exposes the bus's monotonic event accounting.
type Counters struct {
	Submitted     int64 `json:"submitted"`
	Processed     int64 `json:"processed"`
	ProducerDrops int64 `json:"producer_drops"`
	PausedDrops   int64 `json:"paused_drops"`
	Blocked       int64 `json:"blocked"`
	Throttled     int64 `json:"throttled"`
	Executed      int64 `json:"executed"`
	ExecFailures  int64 `json:"exec_failures"`
	Stalls        int64 `json:"stalls"`
	Errors        int64 `json:"errors"`
}

// Status is a synchronized snapshot of bus state for monitoring. Producers
// read state only through this, never through shared memory.
type Status struct {
	Paused        bool        `json:"paused"`
	ActiveSources []source.ID `json:"active_sources"`
	QueueDepth    int         `json:"queue_depth"`
	Counters      Counters    `json:"counters"`
}

// Bus is the thread-safe ingestion point coordinating all input sources.
//
// N producers push events into a single bounded queue; exactly one consumer
// goroutine drains it. The single-consumer design is what makes priority and
// conflict decisions globally consistent: the last-active map, the pause
// state, and everything downstream are only ever mutated by the loop.
//
// Ordering: events from the same source are processed in submission order,
// and cross-source ordering follows global queue admission order. Priority
// affects admission/blocking decisions, never reordering.
type Bus struct {
	registry   *source.Registry
	dispatcher Dispatcher
	opts       busOptions
	pause      *PauseController

	queue chan Event
	stop  chan struct{}
	wg    sync.WaitGroup

	// closeMu serializes Submit against Close so nothing sends on the
	// queue after the loop has been told to drain.
	closeMu sync.RWMutex
	closed  bool
	started atomic.Bool

	// activeMu guards lastActive for Status snapshots; writes happen only
	// on the dispatch loop.
	activeMu   sync.Mutex
	lastActive map[source.ID]time.Time

	submitted     atomic.Int64
	processed     atomic.Int64
	producerDrops atomic.Int64
	pausedDrops   atomic.Int64
	blocked       atomic.Int64
	throttled     atomic.Int64
	executed      atomic.Int64
	execFailures  atomic.Int64
	stalls        atomic.Int64
	errors        atomic.Int64
}

// NewBus creates a Bus over the given registry and dispatcher.
// Call Start to begin processing and Close to shut down.
func NewBus(registry *source.Registry, dispatcher Dispatcher, opts ...Option) *Bus {
	options := busOptions{
		queueSize:       100,
		submitTimeout:   50 * time.Millisecond,
		dispatchTimeout: time.Second,
		logger:          slog.Default(),
		clock:           time.Now,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Bus{
		registry:   registry,
		dispatcher: dispatcher,
		opts:       options,
		pause:      NewPauseController(),
		queue:      make(chan Event, options.queueSize),
		stop:       make(chan struct{}),
		lastActive: make(map[source.ID]time.Time, len(registry.Sources())),
	}
}

// Start launches the single consumer loop. It is a no-op after the first
// call. The loop exits when ctx is cancelled or Close is called.
func (b *Bus) Start(ctx context.Context) {
	if !b.started.CompareAndSwap(false, true) {
		return
	}
	b.wg.Add(1)
	go b.run(ctx)
}

// Close stops accepting events, drains what is already queued, and waits
// for the consumer loop to exit. Close is idempotent.
func (b *Bus) Close() error {
	b.closeMu.Lock()
	if b.closed {
		b.closeMu.Unlock()
		return nil
	}
	b.closed = true
	b.closeMu.Unlock()

	close(b.stop)
	b.wg.Wait()
	return nil
}

// Emit constructs and submits an event on behalf of a perception component.
// It stamps the source's priority rank, an ID, and a timestamp, so callers
// stay fire-and-forget. Unknown sources are counted and rejected.
func (b *Bus) Emit(src source.ID, typ Type, payload any) error {
	if !b.registry.Known(src) {
		b.errors.Add(1)
		b.opts.logger.Warn("event from unknown source dropped", "source", string(src), "type", typ.String())
		return ErrUnknownSource
	}

	return b.Submit(Event{
		ID:        types.NewID(),
		Type:      typ,
		Source:    src,
		Priority:  b.registry.Rank(src),
		Timestamp: b.opts.clock(),
		Payload:   payload,
	})
}

// Submit enqueues an event. It blocks at most the configured submit timeout
// when the queue is full, then drops the event and counts a producer drop,
// keeping producers responsive to their own sensing loops.
func (b *Bus) Submit(event Event) error {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	select {
	case b.queue <- event:
		b.submitted.Add(1)
		return nil
	default:
	}

	timer := time.NewTimer(b.opts.submitTimeout)
	defer timer.Stop()

	select {
	case b.queue <- event:
		b.submitted.Add(1)
		return nil
	case <-timer.C:
		b.producerDrops.Add(1)
		b.opts.logger.Warn("queue full, dropping event",
			"source", string(event.Source), "type", event.Type.String())
		return ErrQueueFull
	}
}

// Pause requests a transition to PAUSED. The request travels through the
// queue as a control event so it is causally ordered with other events.
func (b *Bus) Pause() error {
	return b.submitControl(TypeControlPause, "api")
}

// Resume requests a transition back to ACTIVE.
func (b *Bus) Resume() error {
	return b.submitControl(TypeControlResume, "api")
}

// TogglePause flips the pause state. Used by the reserved pause_toggle
// action and direct API callers alike.
func (b *Bus) TogglePause() error {
	return b.submitControl(TypeControlToggle, "api")
}

func (b *Bus) submitControl(typ Type, reason string) error {
	return b.Submit(Event{
		ID:        types.NewID(),
		Type:      typ,
		Source:    ControlSource,
		Timestamp: b.opts.clock(),
		Payload:   ControlPayload{Reason: reason},
	})
}

// Paused reports the current pause state.
func (b *Bus) Paused() bool {
	return b.pause.Paused()
}

// Status returns a snapshot of bus state without blocking producers or the
// dispatch loop. Active sources are those whose last event is still within
// their own recency window.
func (b *Bus) Status() Status {
	now := b.opts.clock()

	b.activeMu.Lock()
	active := make([]source.ID, 0, len(b.lastActive))
	for id, ts := range b.lastActive {
		if now.Sub(ts) <= b.registry.Window(id) {
			active = append(active, id)
		}
	}
	b.activeMu.Unlock()
	sort.Slice(active, func(i, j int) bool { return active[i] < active[j] })

	return Status{
		Paused:        b.pause.Paused(),
		ActiveSources: active,
		QueueDepth:    len(b.queue),
		Counters: Counters{
			Submitted:     b.submitted.Load(),
			Processed:     b.processed.Load(),
			ProducerDrops: b.producerDrops.Load(),
			PausedDrops:   b.pausedDrops.Load(),
			Blocked:       b.blocked.Load(),
			Throttled:     b.throttled.Load(),
			Executed:      b.executed.Load(),
			ExecFailures:  b.execFailures.Load(),
			Stalls:        b.stalls.Load(),
			Errors:        b.errors.Load(),
		},
	}
}

// run is the single consumer loop. No error here is ever fatal: the system
// degrades by dropping inputs, never by halting.
func (b *Bus) run(ctx context.Context) {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.queue:
			b.process(ctx, event)
		case <-b.stop:
			b.drain(ctx)
			return
		case <-ctx.Done():
			return
		}
	}
}

// drain processes events already queued at Close time.
func (b *Bus) drain(ctx context.Context) {
	for {
		select {
		case event := <-b.queue:
			b.process(ctx, event)
		default:
			return
		}
	}
}

// process handles one event end to end: pause gate, malformed check,
// last-active bookkeeping, conflict admission, and the bounded forward to
// the dispatcher.
func (b *Bus) process(ctx context.Context, event Event) {
	defer b.processed.Add(1)

	// Control events transition the pause machine and never hit the gate,
	// the conflict check, or the mapper.
	if event.Type.IsControl() {
		b.applyControl(event)
		return
	}

	if b.pause.Paused() && !b.togglesPause(event) {
		b.pausedDrops.Add(1)
		if b.opts.debug {
			b.opts.logger.Debug("event dropped while paused",
				"source", string(event.Source), "type", event.Type.String())
		}
		return
	}

	if !b.registry.Known(event.Source) || !KnownType(event.Type) {
		b.errors.Add(1)
		b.opts.logger.Warn("malformed event dropped",
			"source", string(event.Source), "type", event.Type.String())
		return
	}

	now := b.opts.clock()

	b.activeMu.Lock()
	b.lastActive[event.Source] = event.Timestamp
	blockedBy := b.conflictingSourceLocked(event, now)
	b.activeMu.Unlock()

	if blockedBy != "" {
		b.blocked.Add(1)
		if b.opts.debug {
			b.opts.logger.Debug("event blocked by higher-priority source",
				"source", string(event.Source), "type", event.Type.String(),
				"blocked_by", string(blockedBy))
		}
		return
	}

	b.forward(ctx, event)
}

// togglesPause reports whether the event's label resolves to the reserved
// pause toggle action for its source.
func (b *Bus) togglesPause(event Event) bool {
	label := event.Label()
	if label == "" {
		return false
	}
	name, ok := b.registry.ActionFor(event.Source, label)
	return ok && name == PauseToggleAction
}

// conflictingSourceLocked returns the ID of a higher-priority source that
// blocks the event, or "" if the event is admitted. A source blocks when it
// is still active within its own recency window, the matrix disallows
// simultaneity for the pair, and its rank is strictly greater. Callers hold
// activeMu.
func (b *Bus) conflictingSourceLocked(event Event, now time.Time) source.ID {
	rank := b.registry.Rank(event.Source)
	for other, ts := range b.lastActive {
		if other == event.Source {
			continue
		}
		if now.Sub(ts) > b.registry.Window(other) {
			continue
		}
		if b.registry.AllowSimultaneous(event.Source, other) {
			continue
		}
		if b.registry.Rank(other) > rank {
			return other
		}
	}
	return ""
}

// forward hands the admitted event to the dispatcher under the dispatch
// timeout. A stalled executor is logged and abandoned so later-arriving
// high-priority events are not starved by a wedged low-priority action.
func (b *Bus) forward(ctx context.Context, event Event) {
	dctx, cancel := context.WithTimeout(ctx, b.opts.dispatchTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- b.dispatcher.Dispatch(dctx, event)
	}()

	select {
	case err := <-done:
		b.classifyDispatch(event, err)
	case <-dctx.Done():
		b.stalls.Add(1)
		b.opts.logger.Error("dispatch stalled, abandoning event",
			"source", string(event.Source), "type", event.Type.String(),
			"timeout", b.opts.dispatchTimeout)
	}
}

func (b *Bus) classifyDispatch(event Event, err error) {
	switch {
	case err == nil:
		b.executed.Add(1)
	case errors.Is(err, ErrThrottled):
		b.throttled.Add(1)
		if b.opts.debug {
			b.opts.logger.Debug("event throttled by cooldown",
				"source", string(event.Source), "type", event.Type.String())
		}
	case errors.Is(err, ErrExecution):
		// The action was recorded and its cooldown consumed; only the
		// external side effect failed.
		b.execFailures.Add(1)
		b.opts.logger.Error("action execution failed",
			"source", string(event.Source), "type", event.Type.String(), "error", err)
	default:
		b.errors.Add(1)
		b.opts.logger.Warn("event not dispatched",
			"source", string(event.Source), "type", event.Type.String(), "error", err)
	}
}

// applyControl executes a pause/resume transition on the dispatch loop.
func (b *Bus) applyControl(event Event) {
	var changed bool
	switch event.Type {
	case TypeControlPause:
		changed = b.pause.Pause()
	case TypeControlResume:
		changed = b.pause.Resume()
	case TypeControlToggle:
		b.pause.Toggle()
		changed = true
	default:
		b.errors.Add(1)
		b.opts.logger.Warn("unknown control event dropped", "type", event.Type.String())
		return
	}

	if changed {
		b.opts.logger.Info("system state changed", "state", b.pause.State().String())
	}
}
