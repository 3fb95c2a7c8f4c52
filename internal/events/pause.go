package events

import "sync/atomic"

// State is a pause controller state.
type State int32

const (
	// StateActive is the initial state; events flow normally.
	StateActive State = iota

	// StatePaused gates all non-control events at the bus boundary.
	StatePaused
)

// String returns the human-readable state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StatePaused:
		return "PAUSED"
	default:
		return "UNKNOWN"
	}
}

// PauseController is the two-state ACTIVE/PAUSED machine gating non-control
// events. Transitions happen only on the dispatch loop, driven by control
// events that traveled through the queue; the atomic state exists so that
// Status() snapshots can read it without blocking the loop. The machine is
// terminal-free and runs for the process lifetime.
type PauseController struct {
	state atomic.Int32
}

// NewPauseController returns a controller in the ACTIVE state.
func NewPauseController() *PauseController {
	return &PauseController{}
}

// State returns the current state.
func (p *PauseController) State() State {
	return State(p.state.Load())
}

// Paused reports whether the controller is in the PAUSED state.
func (p *PauseController) Paused() bool {
	return p.State() == StatePaused
}

// Pause transitions ACTIVE->PAUSED. Returns false if already paused.
func (p *PauseController) Pause() bool {
	return p.state.CompareAndSwap(int32(StateActive), int32(StatePaused))
}

// Resume transitions PAUSED->ACTIVE. Returns false if already active.
func (p *PauseController) Resume() bool {
	return p.state.CompareAndSwap(int32(StatePaused), int32(StateActive))
}

// Toggle flips the state and returns the new state.
func (p *PauseController) Toggle() State {
	for {
		old := p.state.Load()
		next := int32(StatePaused)
		if State(old) == StatePaused {
			next = int32(StateActive)
		}
		if p.state.CompareAndSwap(old, next) {
			return State(next)
		}
	}
}
