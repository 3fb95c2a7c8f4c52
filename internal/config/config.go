// Package config defines the configuration surface consumed by the
// coordination core: per-source priority ranks, conflict matrix entries,
// recency windows, cooldown durations, history capacity, and the ambient
// bus/logging knobs. Loading is YAML via viper; invariants (unique ranks,
// complete conflict matrix) are enforced at load time so they can never
// surface at dispatch time.
package config

import (
	"fmt"
	"time"

	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/source"
)

// Config is the root configuration document.
type Config struct {
	Sources   []SourceConfig   `mapstructure:"sources" validate:"required,min=1,dive"`
	Conflicts []ConflictConfig `mapstructure:"conflicts" validate:"dive"`
	Cooldown  CooldownConfig   `mapstructure:"cooldown"`
	Bus       BusConfig        `mapstructure:"bus"`
	History   HistoryConfig    `mapstructure:"history"`
	Logging   LoggingConfig    `mapstructure:"logging"`
}

// SourceConfig declares one input source.
type SourceConfig struct {
	// ID is the unique source identifier (e.g. "voice").
	ID string `mapstructure:"id" validate:"required"`

	// Priority is the conflict-resolution rank; higher wins. Ranks must
	// be unique across sources.
	Priority int `mapstructure:"priority" validate:"required"`

	// RecencyWindow is how long the source counts as "active" after an
	// event, for conflict purposes.
	RecencyWindow time.Duration `mapstructure:"recency_window" validate:"min=0"`

	// Actions maps the source's semantic labels to canonical action names.
	Actions map[string]string `mapstructure:"actions"`
}

// ConflictConfig is one conflict matrix entry for an unordered source pair.
type ConflictConfig struct {
	Between           []string `mapstructure:"between" validate:"required,len=2"`
	AllowSimultaneous bool     `mapstructure:"allow_simultaneous"`
}

// CooldownConfig controls action throttling.
type CooldownConfig struct {
	// Scope is "action" (global per action name) or "source_action"
	// (per source-action pair).
	Scope string `mapstructure:"scope" validate:"omitempty,oneof=action source_action"`

	// Default is the interval applied to actions with no override.
	Default time.Duration `mapstructure:"default" validate:"min=0"`

	// PerAction overrides the default for specific action names.
	PerAction map[string]time.Duration `mapstructure:"per_action"`
}

// BusConfig controls the event bus.
type BusConfig struct {
	QueueSize       int           `mapstructure:"queue_size" validate:"min=1"`
	SubmitTimeout   time.Duration `mapstructure:"submit_timeout" validate:"min=0"`
	DispatchTimeout time.Duration `mapstructure:"dispatch_timeout" validate:"min=0"`
	Debug           bool          `mapstructure:"debug"`
}

// HistoryConfig controls the action log and its sinks.
type HistoryConfig struct {
	// Capacity bounds the in-memory history ring.
	Capacity int `mapstructure:"capacity" validate:"min=1"`

	// LogFile is the append-only action log path; empty disables it.
	LogFile string `mapstructure:"log_file"`

	// Database configures the optional SQLite action store.
	Database DatabaseConfig `mapstructure:"database"`
}

// DatabaseConfig configures the persisted action store.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig controls structured logging output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
}

// Registry builds the validated source registry from the configuration.
// Registry construction re-checks the startup invariants (unique ranks,
// matrix completeness) and fails fast on violations.
func (c *Config) Registry() (*source.Registry, error) {
	sources := make([]source.Source, 0, len(c.Sources))
	for _, sc := range c.Sources {
		actions := make(map[string]string, len(sc.Actions))
		for label, name := range sc.Actions {
			actions[label] = name
		}
		sources = append(sources, source.Source{
			ID:            source.ID(sc.ID),
			Priority:      sc.Priority,
			RecencyWindow: sc.RecencyWindow,
			Actions:       actions,
		})
	}

	rules := make([]source.ConflictRule, 0, len(c.Conflicts))
	for _, cc := range c.Conflicts {
		if len(cc.Between) != 2 {
			return nil, fmt.Errorf("conflict entry must name exactly two sources, got %v", cc.Between)
		}
		rules = append(rules, source.ConflictRule{
			A:                 source.ID(cc.Between[0]),
			B:                 source.ID(cc.Between[1]),
			AllowSimultaneous: cc.AllowSimultaneous,
		})
	}

	return source.NewRegistry(sources, rules)
}

// CooldownScope returns the configured scope as its typed value.
func (c *Config) CooldownScope() string {
	if c.Cooldown.Scope == "" {
		return "action"
	}
	return c.Cooldown.Scope
}
