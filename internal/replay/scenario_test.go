package replay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/events"
	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/source"
)

const demoScenario = `
name: gaze-and-gesture
steps:
  - at: 250ms
    source: gesture
    type: gesture.detected
    gesture: pinch
  - at: 0s
    source: eye
    type: gaze.left
  - at: 100ms
    source: eye
    type: blink.double
`

func TestParseScenarioSortsSteps(t *testing.T) {
	sc, err := ParseScenario(strings.NewReader(demoScenario))
	require.NoError(t, err)

	assert.Equal(t, "gaze-and-gesture", sc.Name)
	require.Len(t, sc.Steps, 3)
	assert.Equal(t, "gaze.left", sc.Steps[0].Type)
	assert.Equal(t, "blink.double", sc.Steps[1].Type)
	assert.Equal(t, "gesture.detected", sc.Steps[2].Type)
	assert.Equal(t, "pinch", sc.Steps[2].Gesture)
}

func TestParseScenarioRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "no steps", doc: "name: empty\nsteps: []\n"},
		{name: "unknown type", doc: "name: x\nsteps:\n  - at: 0s\n    source: eye\n    type: gaze.up\n"},
		{name: "negative offset", doc: "name: x\nsteps:\n  - at: -1s\n    source: eye\n    type: gaze.left\n"},
		{name: "unknown field", doc: "name: x\nsteps:\n  - at: 0s\n    source: eye\n    type: gaze.left\n    speed: 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario(strings.NewReader(tt.doc))
			require.Error(t, err)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(demoScenario), 0o644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "gaze-and-gesture", sc.Name)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

type capturingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *capturingDispatcher) Dispatch(_ context.Context, e events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	return nil
}

func (d *capturingDispatcher) labels() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.events))
	for i, e := range d.events {
		out[i] = e.Label()
	}
	return out
}

func replayRegistry(t *testing.T) *source.Registry {
	t.Helper()
	reg, err := source.NewRegistry(
		[]source.Source{
			{ID: "eye", Priority: 1},
			{ID: "gesture", Priority: 2},
		},
		[]source.ConflictRule{
			{A: "eye", B: "gesture", AllowSimultaneous: true},
		},
	)
	require.NoError(t, err)
	return reg
}

func waitProcessed(t *testing.T, bus *events.Bus, n int64) {
	t.Helper()
	require.Eventually(t, func() bool {
		return bus.Status().Counters.Processed >= n
	}, time.Second, time.Millisecond)
}

func TestPlayerRunHonorsOffsets(t *testing.T) {
	dispatcher := &capturingDispatcher{}
	bus := events.NewBus(replayRegistry(t), dispatcher)
	bus.Start(context.Background())
	defer bus.Close()

	var waits []time.Duration
	player := NewPlayer(bus, WithSleeper(func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}))

	sc, err := ParseScenario(strings.NewReader(demoScenario))
	require.NoError(t, err)
	require.NoError(t, player.Run(context.Background(), sc))

	// Waits are deltas between consecutive offsets, not absolutes.
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 150 * time.Millisecond}, waits)

	waitProcessed(t, bus, 3)
	assert.Equal(t, []string{"left_gaze", "double_blink", "pinch"}, dispatcher.labels())
}

func TestPlayerRunControlSteps(t *testing.T) {
	doc := `
name: pause-window
steps:
  - at: 0s
    source: eye
    type: gaze.left
  - at: 10ms
    type: control.pause
  - at: 20ms
    source: eye
    type: gaze.right
  - at: 30ms
    type: control.resume
  - at: 40ms
    source: eye
    type: gaze.left
`
	dispatcher := &capturingDispatcher{}
	bus := events.NewBus(replayRegistry(t), dispatcher)
	bus.Start(context.Background())
	defer bus.Close()

	processedUpTo := int64(0)
	player := NewPlayer(bus, WithSleeper(func(_ context.Context, _ time.Duration) error {
		// Let the loop catch up between steps so the pause transition is
		// observed before the next emit.
		processedUpTo++
		waitProcessed(t, bus, processedUpTo)
		return nil
	}))

	sc, err := ParseScenario(strings.NewReader(doc))
	require.NoError(t, err)
	require.NoError(t, player.Run(context.Background(), sc))

	waitProcessed(t, bus, 5)
	assert.Equal(t, []string{"left_gaze", "left_gaze"}, dispatcher.labels())
	assert.Equal(t, int64(1), bus.Status().Counters.PausedDrops)
}

func TestPlayerRunLogsDroppedSteps(t *testing.T) {
	doc := `
name: unknown-source
steps:
  - at: 0s
    source: keyboard
    type: gaze.left
`
	dispatcher := &capturingDispatcher{}
	bus := events.NewBus(replayRegistry(t), dispatcher)
	bus.Start(context.Background())
	defer bus.Close()

	player := NewPlayer(bus, WithSleeper(func(_ context.Context, _ time.Duration) error { return nil }))

	sc, err := ParseScenario(strings.NewReader(doc))
	require.NoError(t, err)

	// Emit failures are logged, never returned.
	require.NoError(t, player.Run(context.Background(), sc))
	assert.Empty(t, dispatcher.labels())
}

func TestPlayerRunCancels(t *testing.T) {
	dispatcher := &capturingDispatcher{}
	bus := events.NewBus(replayRegistry(t), dispatcher)
	bus.Start(context.Background())
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	player := NewPlayer(bus) // real sleeper, interrupted by ctx
	sc, err := ParseScenario(strings.NewReader(demoScenario))
	require.NoError(t, err)

	err = player.Run(ctx, sc)
	require.ErrorIs(t, err, context.Canceled)
}
