// Package action translates admitted events into executed actions. The
// Mapper resolves an event's semantic label through its source's lookup
// table, enforces cooldowns, invokes the injected Executor, and records
// the outcome into history and stats.
package action

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/events"
	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/history"
	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/source"
)

// PauseToggleAction is the reserved action name that toggles the system
// pause state instead of reaching the Executor. The bus routes it back
// through the queue as a control event.
const PauseToggleAction = events.PauseToggleAction

// PauseToggler requests a pause-state flip. The event bus implements it.
type PauseToggler interface {
	TogglePause() error
}

// Mapper implements events.Dispatcher.
type Mapper struct {
	registry  *source.Registry
	cooldowns *CooldownTracker
	exec      Executor
	recorder  *history.Recorder
	toggler   PauseToggler
	logger    *slog.Logger
	clock     func() time.Time
}

// MapperOption configures a Mapper.
type MapperOption func(*Mapper)

// WithPauseToggler wires the pause_toggle reserved action back to the bus.
// Without it, pause_toggle resolves to an unknown-label error.
func WithPauseToggler(t PauseToggler) MapperOption {
	return func(m *Mapper) { m.toggler = t }
}

// WithMapperLogger sets the structured logger. Default: slog.Default().
func WithMapperLogger(logger *slog.Logger) MapperOption {
	return func(m *Mapper) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMapperClock sets the time source, for deterministic tests.
func WithMapperClock(clock func() time.Time) MapperOption {
	return func(m *Mapper) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewMapper creates a Mapper over the registry's per-source action tables.
func NewMapper(registry *source.Registry, cooldowns *CooldownTracker, exec Executor, recorder *history.Recorder, opts ...MapperOption) *Mapper {
	m := &Mapper{
		registry:  registry,
		cooldowns: cooldowns,
		exec:      exec,
		recorder:  recorder,
		logger:    slog.Default(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dispatch resolves and executes the action for one admitted event.
//
// Outcomes map onto the bus's error taxonomy: events.ErrUnknownLabel for
// labels with no bound action, events.ErrThrottled when the cooldown has
// not elapsed, and events.ErrExecution when the Executor fails. In the
// execution-failure case the action record and stats counter are still
// written and the cooldown slot stays consumed, preventing rapid retry
// storms.
func (m *Mapper) Dispatch(ctx context.Context, event events.Event) error {
	label := event.Label()
	if label == "" {
		return fmt.Errorf("%w: event %s from %s carries no label",
			events.ErrUnknownLabel, event.Type, event.Source)
	}

	name, ok := m.registry.ActionFor(event.Source, label)
	if !ok {
		return fmt.Errorf("%w: label %q from source %s",
			events.ErrUnknownLabel, label, event.Source)
	}

	now := m.clock()
	if !m.cooldowns.Allow(name, event.Source, now) {
		return fmt.Errorf("%w: %s (interval %s)",
			events.ErrThrottled, name, m.cooldowns.DurationFor(name))
	}

	// Consume the slot before any side effect so a slow Executor cannot
	// let a duplicate trigger through.
	m.cooldowns.Mark(name, event.Source, now)

	if name == PauseToggleAction {
		if m.toggler == nil {
			return fmt.Errorf("%w: %s resolved but no pause toggler wired",
				events.ErrUnknownLabel, PauseToggleAction)
		}
		return m.toggler.TogglePause()
	}

	execErr := m.exec.Execute(ctx, name)

	m.recorder.Append(history.Record{
		Action:    name,
		Source:    event.Source,
		Details:   label,
		Timestamp: now,
		Executed:  execErr == nil,
	})

	if execErr != nil {
		return fmt.Errorf("%w: %s: %s", events.ErrExecution, name, execErr)
	}

	m.logger.Debug("action executed",
		"action", name, "source", string(event.Source), "details", label)
	return nil
}

var _ events.Dispatcher = (*Mapper)(nil)
