package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypeIsControl(t *testing.T) {
	assert.True(t, TypeControlPause.IsControl())
	assert.True(t, TypeControlResume.IsControl())
	assert.True(t, TypeControlToggle.IsControl())
	assert.False(t, TypeGazeLeft.IsControl())
	assert.False(t, TypeVoiceCommand.IsControl())
}

func TestKnownType(t *testing.T) {
	assert.True(t, KnownType(TypeGestureDetected))
	assert.True(t, KnownType(TypeTripleBlink))
	assert.False(t, KnownType(Type("gesture.unknown")))
	assert.False(t, KnownType(Type("")))
}

func TestEventLabel(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{name: "gaze left", event: Event{Type: TypeGazeLeft}, want: "left_gaze"},
		{name: "gaze right", event: Event{Type: TypeGazeRight}, want: "right_gaze"},
		{name: "gaze center", event: Event{Type: TypeGazeCenter}, want: "center_gaze"},
		{name: "single blink", event: Event{Type: TypeBlink, Payload: BlinkPayload{Count: 1}}, want: "single_blink"},
		{name: "double blink", event: Event{Type: TypeDoubleBlink}, want: "double_blink"},
		{name: "triple blink", event: Event{Type: TypeTripleBlink}, want: "triple_blink"},
		{name: "gesture", event: Event{Type: TypeGestureDetected, Payload: GesturePayload{Name: "pinch"}}, want: "pinch"},
		{name: "gesture without payload", event: Event{Type: TypeGestureDetected}, want: ""},
		{name: "voice", event: Event{Type: TypeVoiceCommand, Payload: VoicePayload{Command: "next_tab"}}, want: "next_tab"},
		{name: "control", event: Event{Type: TypeControlPause, Payload: ControlPayload{Reason: "api"}}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Label())
		})
	}
}

func TestPauseController(t *testing.T) {
	p := NewPauseController()
	assert.Equal(t, StateActive, p.State())
	assert.False(t, p.Paused())

	assert.True(t, p.Pause())
	assert.True(t, p.Paused())
	assert.False(t, p.Pause(), "pausing twice is a no-op")

	assert.True(t, p.Resume())
	assert.False(t, p.Paused())
	assert.False(t, p.Resume(), "resuming twice is a no-op")

	assert.Equal(t, StatePaused, p.Toggle())
	assert.Equal(t, StateActive, p.Toggle())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ACTIVE", StateActive.String())
	assert.Equal(t, "PAUSED", StatePaused.String())
	assert.Equal(t, "UNKNOWN", State(7).String())
}

func TestEventIsImmutableValue(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ev := Event{Type: TypeGazeLeft, Source: "eye", Priority: 1, Timestamp: ts}

	copied := ev
	copied.Priority = 99
	assert.Equal(t, 1, ev.Priority)
}
