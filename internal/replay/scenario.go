// Package replay feeds scripted event sequences through the real bus.
// Scenarios are YAML files describing timed events per source; they stand
// in for live perception components during demos and soak tests.
package replay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/events"
	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/source"
)

// Step is one scripted event.
type Step struct {
	// At is the offset from scenario start.
	At time.Duration `yaml:"at"`

	// Source is the emitting source ID. Unused for control steps.
	Source string `yaml:"source,omitempty"`

	// Type is the event type (e.g. "gaze.left", "gesture.detected",
	// "control.pause_toggle").
	Type string `yaml:"type"`

	// Gesture names the gesture for gesture.detected steps.
	Gesture string `yaml:"gesture,omitempty"`

	// Command names the command for voice.command steps.
	Command string `yaml:"command,omitempty"`
}

// Scenario is a named, timed sequence of events.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// ParseScenario decodes a scenario document and orders its steps by
// offset.
func ParseScenario(r io.Reader) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}

	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", sc.Name)
	}
	for i, step := range sc.Steps {
		if step.At < 0 {
			return nil, fmt.Errorf("step %d has negative offset", i)
		}
		if !events.KnownType(events.Type(step.Type)) {
			return nil, fmt.Errorf("step %d has unknown event type %q", i, step.Type)
		}
	}

	sort.SliceStable(sc.Steps, func(i, j int) bool { return sc.Steps[i].At < sc.Steps[j].At })
	return &sc, nil
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario %s: %w", path, err)
	}
	defer f.Close()

	sc, err := ParseScenario(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Player replays scenarios into a bus.
type Player struct {
	bus    *events.Bus
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithPlayerLogger sets the structured logger.
func WithPlayerLogger(logger *slog.Logger) PlayerOption {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSleeper replaces the wall-clock wait between steps, for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) PlayerOption {
	return func(p *Player) {
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// NewPlayer creates a Player over the given bus.
func NewPlayer(bus *events.Bus, opts ...PlayerOption) *Player {
	p := &Player{
		bus:    bus,
		logger: slog.Default(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run replays the scenario, honoring each step's offset. Emit failures
// (queue overflow, unknown source) are logged and do not stop the replay,
// matching the degrade-by-dropping posture of the live system.
func (p *Player) Run(ctx context.Context, sc *Scenario) error {
	start := time.Duration(0)
	for i, step := range sc.Steps {
		if wait := step.At - start; wait > 0 {
			if err := p.sleep(ctx, wait); err != nil {
				return err
			}
		}
		start = step.At

		if err := p.emit(step); err != nil {
			p.logger.Warn("replay step dropped",
				"scenario", sc.Name, "step", i, "type", step.Type, "error", err)
		}
	}
	return nil
}

func (p *Player) emit(step Step) error {
	typ := events.Type(step.Type)

	if typ.IsControl() {
		switch typ {
		case events.TypeControlPause:
			return p.bus.Pause()
		case events.TypeControlResume:
			return p.bus.Resume()
		default:
			return p.bus.TogglePause()
		}
	}

	var payload any
	switch typ {
	case events.TypeGestureDetected:
		payload = events.GesturePayload{Name: step.Gesture}
	case events.TypeVoiceCommand:
		payload = events.VoicePayload{Command: step.Command}
	case events.TypeBlink, events.TypeDoubleBlink, events.TypeTripleBlink:
		payload = events.BlinkPayload{Count: blinkCount(typ)}
	}

	return p.bus.Emit(source.ID(step.Source), typ, payload)
}

func blinkCount(t events.Type) int {
	switch t {
	case events.TypeDoubleBlink:
		return 2
	case events.TypeTripleBlink:
		return 3
	default:
		return 1
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
