package events

import (
	"strings"
	"time"

	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/source"
	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/types"
)

// Type identifies the category and nature of an event in the system.
// Types follow a dotted <modality>.<signal> taxonomy.
type Type string

// Gaze Events
// These events carry discrete gaze direction changes from the eye tracker.
const (
	TypeGazeLeft   Type = "gaze.left"
	TypeGazeRight  Type = "gaze.right"
	TypeGazeCenter Type = "gaze.center"
)

// Blink Events
// These events carry blink sequences from the eye tracker.
const (
	TypeBlink       Type = "blink.single"
	TypeDoubleBlink Type = "blink.double"
	TypeTripleBlink Type = "blink.triple"
)

// Gesture Events
const (
	TypeGestureDetected Type = "gesture.detected"
)

// Voice Events
const (
	TypeVoiceCommand Type = "voice.command"
)

// Control Events
// Control events drive the pause/resume state machine. They travel through
// the same queue as every other event so that pause/resume is causally
// ordered relative to concurrently submitted inputs, and they bypass the
// pause gate (as do events bound to the reserved pause toggle action).
const (
	TypeControlPause  Type = "control.pause"
	TypeControlResume Type = "control.resume"
	TypeControlToggle Type = "control.pause_toggle"
)

// String returns the string representation of the event type.
func (t Type) String() string {
	return string(t)
}

// IsControl reports whether the type is a pause/resume control event.
func (t Type) IsControl() bool {
	return strings.HasPrefix(string(t), "control.")
}

var knownTypes = map[Type]struct{}{
	TypeGazeLeft:        {},
	TypeGazeRight:       {},
	TypeGazeCenter:      {},
	TypeBlink:           {},
	TypeDoubleBlink:     {},
	TypeTripleBlink:     {},
	TypeGestureDetected: {},
	TypeVoiceCommand:    {},
	TypeControlPause:    {},
	TypeControlResume:   {},
	TypeControlToggle:   {},
}

// KnownType reports whether t is part of the event taxonomy.
func KnownType(t Type) bool {
	_, ok := knownTypes[t]
	return ok
}

// ControlSource is the pseudo-source stamped on control events produced by
// the bus's own Pause/Resume/TogglePause API. It is never part of the
// source registry and never participates in conflict resolution.
const ControlSource source.ID = "system"

// PauseToggleAction is the reserved action name that flips the pause state
// instead of reaching an executor. Events whose label resolves to it are
// exempt from the pause gate, so the same gesture that pauses the system
// can resume it.
const PauseToggleAction = "pause_toggle"

// Event is the unified immutable event structure flowing through the bus.
// Priority is denormalized from the source registry at emission time so the
// dispatch loop never has to consult the registry for ordering decisions.
type Event struct {
	// ID uniquely identifies the event instance.
	ID types.ID `json:"id"`

	// Type identifies the category and nature of the event.
	Type Type `json:"type"`

	// Source identifies the emitting input source.
	Source source.ID `json:"source"`

	// Priority is the emitting source's rank, stamped at emission time.
	Priority int `json:"priority"`

	// Timestamp records when the source observed the signal.
	Timestamp time.Time `json:"timestamp"`

	// Payload carries event-specific typed data (use type assertion to access).
	Payload any `json:"payload,omitempty"`
}

// Label derives the semantic label used for per-source action lookup.
// Gaze and blink labels are fixed by the event type; gesture and voice
// labels come from the typed payload. Control events have no label.
func (e Event) Label() string {
	switch e.Type {
	case TypeGazeLeft:
		return "left_gaze"
	case TypeGazeRight:
		return "right_gaze"
	case TypeGazeCenter:
		return "center_gaze"
	case TypeBlink:
		return "single_blink"
	case TypeDoubleBlink:
		return "double_blink"
	case TypeTripleBlink:
		return "triple_blink"
	case TypeGestureDetected:
		if p, ok := e.Payload.(GesturePayload); ok {
			return p.Name
		}
	case TypeVoiceCommand:
		if p, ok := e.Payload.(VoicePayload); ok {
			return p.Command
		}
	}
	return ""
}

// Payload Types
// These structs define the typed payload data carried by each modality.
// They replace the original free-form dictionaries with a tagged union.

// GazePayload contains data for gaze.* events.
type GazePayload struct {
	// Held is how long the gaze was held before the event fired.
	Held time.Duration `json:"held,omitempty"`

	// Ratio is the raw iris position ratio that produced the direction.
	Ratio float64 `json:"ratio,omitempty"`
}

// BlinkPayload contains data for blink.* events.
type BlinkPayload struct {
	// Count is the number of blinks in the detected sequence.
	Count int `json:"count"`
}

// GesturePayload contains data for gesture.detected events.
type GesturePayload struct {
	// Name is the recognized gesture label (e.g. "pinch", "peace").
	Name string `json:"name"`

	// Confidence is the recognizer's confidence in [0, 1].
	Confidence float64 `json:"confidence,omitempty"`
}

// VoicePayload contains data for voice.command events.
type VoicePayload struct {
	// Command is the recognized command label (e.g. "next_tab").
	Command string `json:"command"`

	// Transcript is the raw recognized utterance, if available.
	Transcript string `json:"transcript,omitempty"`
}

// ControlPayload contains data for control.* events.
type ControlPayload struct {
	// Reason is a free-form note about what requested the transition
	// (e.g. "pinky_up gesture", "api").
	Reason string `json:"reason,omitempty"`
}
