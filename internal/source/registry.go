// Package source defines the static registry of input sources and the
// conflict policy between them. A source is a logical input producer
// (e.g. eye, gesture, voice) with a fixed priority rank, a recency window,
// and a table mapping its raw semantic labels to canonical action names.
//
// The registry is immutable after construction. All runtime state about
// sources (last-active timestamps) is owned by the event bus, not by the
// registry.
package source

import (
	"fmt"
	"sort"
	"time"
)

// ID identifies a configured input source.
type ID string

// Source describes one configured input source.
//
// Priority ranks form a strict total order across all configured sources:
// higher wins in conflict resolution, and duplicates are rejected at
// registry construction time so the rank tie-break code path cannot exist
// at dispatch time.
type Source struct {
	// ID is the unique source identifier (e.g. "voice").
	ID ID

	// Priority is the conflict-resolution rank. Higher wins.
	Priority int

	// RecencyWindow is how long after an event this source is still
	// considered "active" for conflict purposes.
	RecencyWindow time.Duration

	// Actions maps the source's semantic event labels (e.g. "left_gaze",
	// "pinch") to canonical action names (e.g. "previous_tab").
	Actions map[string]string
}

// ConflictRule states whether two sources may act simultaneously.
// Rules are unordered: {A, B} and {B, A} describe the same pair.
type ConflictRule struct {
	A                 ID
	B                 ID
	AllowSimultaneous bool
}

// Registry holds the validated source set and conflict matrix.
type Registry struct {
	sources map[ID]Source
	allow   map[pairKey]bool
}

type pairKey struct {
	lo ID
	hi ID
}

func newPairKey(a, b ID) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// NewRegistry builds a Registry from the configured sources and conflict
// rules, enforcing the startup invariants: at least one source, unique
// source IDs, unique priority ranks, rules referencing only known sources,
// and a conflict entry for every unordered pair of sources. Violations are
// fatal here so they can never surface at dispatch time.
func NewRegistry(sources []Source, rules []ConflictRule) (*Registry, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}

	byID := make(map[ID]Source, len(sources))
	byRank := make(map[int]ID, len(sources))
	for _, src := range sources {
		if src.ID == "" {
			return nil, fmt.Errorf("source with empty ID")
		}
		if _, dup := byID[src.ID]; dup {
			return nil, fmt.Errorf("duplicate source ID %q", src.ID)
		}
		if holder, dup := byRank[src.Priority]; dup {
			return nil, fmt.Errorf("sources %q and %q share priority rank %d; ranks must be unique", holder, src.ID, src.Priority)
		}
		if src.RecencyWindow < 0 {
			return nil, fmt.Errorf("source %q has negative recency window", src.ID)
		}
		byID[src.ID] = src
		byRank[src.Priority] = src.ID
	}

	allow := make(map[pairKey]bool, len(rules))
	for _, rule := range rules {
		if _, ok := byID[rule.A]; !ok {
			return nil, fmt.Errorf("conflict rule references unknown source %q", rule.A)
		}
		if _, ok := byID[rule.B]; !ok {
			return nil, fmt.Errorf("conflict rule references unknown source %q", rule.B)
		}
		if rule.A == rule.B {
			return nil, fmt.Errorf("conflict rule pairs source %q with itself", rule.A)
		}
		key := newPairKey(rule.A, rule.B)
		if _, dup := allow[key]; dup {
			return nil, fmt.Errorf("duplicate conflict rule for sources %q and %q", key.lo, key.hi)
		}
		allow[key] = rule.AllowSimultaneous
	}

	// The matrix must cover every unordered pair of configured sources.
	for _, a := range sources {
		for _, b := range sources {
			if a.ID >= b.ID {
				continue
			}
			if _, ok := allow[newPairKey(a.ID, b.ID)]; !ok {
				return nil, fmt.Errorf("conflict matrix missing entry for sources %q and %q", a.ID, b.ID)
			}
		}
	}

	return &Registry{sources: byID, allow: allow}, nil
}

// Known reports whether the given source is configured.
func (r *Registry) Known(id ID) bool {
	_, ok := r.sources[id]
	return ok
}

// Get returns the configured source, if any.
func (r *Registry) Get(id ID) (Source, bool) {
	src, ok := r.sources[id]
	return src, ok
}

// Rank returns the priority rank of the given source, or zero if unknown.
func (r *Registry) Rank(id ID) int {
	return r.sources[id].Priority
}

// Window returns the recency window of the given source.
func (r *Registry) Window(id ID) time.Duration {
	return r.sources[id].RecencyWindow
}

// AllowSimultaneous reports whether the two sources may act at the same
// time. Pairs not present in the matrix resolve to "block"; construction
// guarantees completeness for configured sources, so that only happens for
// queries with unknown IDs.
func (r *Registry) AllowSimultaneous(a, b ID) bool {
	if a == b {
		return true
	}
	return r.allow[newPairKey(a, b)]
}

// ActionFor resolves a source's semantic label to its canonical action
// name. The second return value is false for unknown labels.
func (r *Registry) ActionFor(id ID, label string) (string, bool) {
	src, ok := r.sources[id]
	if !ok {
		return "", false
	}
	action, ok := src.Actions[label]
	return action, ok
}

// Sources returns all configured sources ordered by descending priority.
func (r *Registry) Sources() []Source {
	out := make([]Source, 0, len(r.sources))
	for _, src := range r.sources {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}
