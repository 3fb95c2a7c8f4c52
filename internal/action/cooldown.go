package action

import (
	"sync"
	"time"

	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/source"
)

// CooldownScope selects how cooldown keys are derived.
type CooldownScope string

const (
	// ScopeAction throttles per action name, across all sources.
	ScopeAction CooldownScope = "action"

	// ScopeSourceAction throttles per (source, action) pair, so the same
	// action triggered from different modalities cools down independently.
	ScopeSourceAction CooldownScope = "source_action"
)

// CooldownTracker enforces the minimum interval between successive
// executions of the same action key. Timestamps are monotonically
// non-decreasing and never rolled back, so a failed execution still
// consumes its cooldown slot.
type CooldownTracker struct {
	mu        sync.Mutex
	scope     CooldownScope
	def       time.Duration
	perAction map[string]time.Duration
	last      map[string]time.Time
}

// NewCooldownTracker creates a tracker with the given key scope, default
// interval, and optional per-action overrides.
func NewCooldownTracker(scope CooldownScope, def time.Duration, perAction map[string]time.Duration) *CooldownTracker {
	if scope != ScopeSourceAction {
		scope = ScopeAction
	}
	overrides := make(map[string]time.Duration, len(perAction))
	for name, d := range perAction {
		overrides[name] = d
	}
	return &CooldownTracker{
		scope:     scope,
		def:       def,
		perAction: overrides,
		last:      make(map[string]time.Time),
	}
}

// Allow reports whether the action may execute at now, i.e. whether the
// configured interval has elapsed since the key's last marked execution.
// Allow does not consume the slot; call Mark before executing.
func (t *CooldownTracker) Allow(name string, src source.ID, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.last[t.key(name, src)]
	if !ok {
		return true
	}
	return now.Sub(last) >= t.durationFor(name)
}

// Mark records an execution at now. The stored timestamp only moves
// forward.
func (t *CooldownTracker) Mark(name string, src source.ID, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := t.key(name, src)
	if prev, ok := t.last[key]; ok && prev.After(now) {
		return
	}
	t.last[key] = now
}

// DurationFor returns the configured cooldown interval for the action.
func (t *CooldownTracker) DurationFor(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.durationFor(name)
}

func (t *CooldownTracker) durationFor(name string) time.Duration {
	if d, ok := t.perAction[name]; ok {
		return d
	}
	return t.def
}

func (t *CooldownTracker) key(name string, src source.ID) string {
	if t.scope == ScopeSourceAction {
		return string(src) + "/" + name
	}
	return name
}
