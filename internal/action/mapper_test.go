package action

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/events"
	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/history"
	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/source"
)

// recordingExecutor is the test double standing in for the OS-level
// executor.
type recordingExecutor struct {
	mu       sync.Mutex
	executed []string
	err      error
}

func (e *recordingExecutor) Execute(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executed = append(e.executed, name)
	return e.err
}

func (e *recordingExecutor) names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.executed))
	copy(out, e.executed)
	return out
}

type fakeToggler struct {
	toggles int
}

func (f *fakeToggler) TogglePause() error {
	f.toggles++
	return nil
}

func mapperRegistry(t *testing.T) *source.Registry {
	t.Helper()
	reg, err := source.NewRegistry(
		[]source.Source{
			{ID: "gesture", Priority: 2, RecencyWindow: 300 * time.Millisecond, Actions: map[string]string{
				"pinch":    "copy",
				"pinky_up": PauseToggleAction,
			}},
			{ID: "eye", Priority: 1, RecencyWindow: 300 * time.Millisecond, Actions: map[string]string{
				"left_gaze":    "previous_tab",
				"single_blink": "enter",
			}},
		},
		[]source.ConflictRule{{A: "eye", B: "gesture", AllowSimultaneous: true}},
	)
	require.NoError(t, err)
	return reg
}

// testMapper builds a mapper with a manually advanced clock.
func testMapper(t *testing.T, exec Executor, opts ...MapperOption) (*Mapper, *history.Recorder, *time.Time) {
	t.Helper()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	recorder := history.NewRecorder(100)
	cooldowns := NewCooldownTracker(ScopeAction, 200*time.Millisecond, nil)
	opts = append(opts, WithMapperClock(clock))
	m := NewMapper(mapperRegistry(t), cooldowns, exec, recorder, opts...)
	return m, recorder, &now
}

func gazeEvent() events.Event {
	return events.Event{Type: events.TypeGazeLeft, Source: "eye", Priority: 1}
}

func TestMapperDispatchExecutesAction(t *testing.T) {
	exec := &recordingExecutor{}
	m, recorder, _ := testMapper(t, exec)

	require.NoError(t, m.Dispatch(context.Background(), gazeEvent()))

	assert.Equal(t, []string{"previous_tab"}, exec.names())

	recent := recorder.Recent(0)
	require.Len(t, recent, 1)
	assert.Equal(t, "previous_tab", recent[0].Action)
	assert.Equal(t, source.ID("eye"), recent[0].Source)
	assert.Equal(t, "left_gaze", recent[0].Details)
	assert.True(t, recent[0].Executed)

	assert.Equal(t, int64(1), recorder.Stats()[history.Key{Action: "previous_tab", Source: "eye"}])
}

func TestMapperUnknownLabel(t *testing.T) {
	exec := &recordingExecutor{}
	m, recorder, _ := testMapper(t, exec)

	ev := events.Event{Type: events.TypeGestureDetected, Source: "gesture",
		Payload: events.GesturePayload{Name: "wave"}}
	err := m.Dispatch(context.Background(), ev)
	require.ErrorIs(t, err, events.ErrUnknownLabel)

	assert.Empty(t, exec.names())
	assert.Zero(t, recorder.Len())
}

func TestMapperEventWithoutLabel(t *testing.T) {
	exec := &recordingExecutor{}
	m, _, _ := testMapper(t, exec)

	// A gesture event missing its typed payload carries no label.
	err := m.Dispatch(context.Background(), events.Event{Type: events.TypeGestureDetected, Source: "gesture"})
	require.ErrorIs(t, err, events.ErrUnknownLabel)
}

// TestMapperCooldown covers the 200ms throttle: a duplicate at +100ms is
// throttled, a duplicate at +300ms executes.
func TestMapperCooldown(t *testing.T) {
	exec := &recordingExecutor{}
	m, recorder, now := testMapper(t, exec)

	require.NoError(t, m.Dispatch(context.Background(), gazeEvent()))

	*now = now.Add(100 * time.Millisecond)
	err := m.Dispatch(context.Background(), gazeEvent())
	require.ErrorIs(t, err, events.ErrThrottled)

	*now = now.Add(200 * time.Millisecond)
	require.NoError(t, m.Dispatch(context.Background(), gazeEvent()))

	// Exactly two executions and two history entries.
	assert.Equal(t, []string{"previous_tab", "previous_tab"}, exec.names())
	assert.Equal(t, 2, recorder.Len())
	assert.Equal(t, int64(2), recorder.Stats()[history.Key{Action: "previous_tab", Source: "eye"}])
}

func TestMapperThrottleLeavesNoTrace(t *testing.T) {
	exec := &recordingExecutor{}
	m, recorder, now := testMapper(t, exec)

	require.NoError(t, m.Dispatch(context.Background(), gazeEvent()))
	*now = now.Add(50 * time.Millisecond)
	require.ErrorIs(t, m.Dispatch(context.Background(), gazeEvent()), events.ErrThrottled)

	// The throttled dispatch must not touch history, stats, or the
	// executor.
	assert.Len(t, exec.names(), 1)
	assert.Equal(t, 1, recorder.Len())
	assert.Equal(t, int64(1), recorder.Total())
}

func TestMapperExecutorFailure(t *testing.T) {
	exec := &recordingExecutor{err: errors.New("hotkey rejected")}
	m, recorder, now := testMapper(t, exec)

	err := m.Dispatch(context.Background(), gazeEvent())
	require.ErrorIs(t, err, events.ErrExecution)

	// The failed action is still recorded and still consumed its slot.
	recent := recorder.Recent(0)
	require.Len(t, recent, 1)
	assert.False(t, recent[0].Executed)
	assert.Equal(t, int64(1), recorder.Stats()[history.Key{Action: "previous_tab", Source: "eye"}])

	*now = now.Add(100 * time.Millisecond)
	require.ErrorIs(t, m.Dispatch(context.Background(), gazeEvent()), events.ErrThrottled,
		"a failed execution must not allow a rapid retry")
}

func TestMapperPauseToggleAction(t *testing.T) {
	exec := &recordingExecutor{}
	toggler := &fakeToggler{}
	m, recorder, now := testMapper(t, exec, WithPauseToggler(toggler))

	ev := events.Event{Type: events.TypeGestureDetected, Source: "gesture",
		Payload: events.GesturePayload{Name: "pinky_up"}}
	require.NoError(t, m.Dispatch(context.Background(), ev))

	// pause_toggle never reaches the executor and never enters history.
	assert.Equal(t, 1, toggler.toggles)
	assert.Empty(t, exec.names())
	assert.Zero(t, recorder.Len())

	// It still respects its cooldown.
	*now = now.Add(50 * time.Millisecond)
	require.ErrorIs(t, m.Dispatch(context.Background(), ev), events.ErrThrottled)
	assert.Equal(t, 1, toggler.toggles)
}

func TestMapperPauseToggleWithoutToggler(t *testing.T) {
	exec := &recordingExecutor{}
	m, _, _ := testMapper(t, exec)

	ev := events.Event{Type: events.TypeGestureDetected, Source: "gesture",
		Payload: events.GesturePayload{Name: "pinky_up"}}
	require.ErrorIs(t, m.Dispatch(context.Background(), ev), events.ErrUnknownLabel)
}

// TestMapperHistoryStatsRoundTrip: every history append increments exactly
// one stats counter and the totals always agree.
func TestMapperHistoryStatsRoundTrip(t *testing.T) {
	exec := &recordingExecutor{}
	m, recorder, now := testMapper(t, exec)

	dispatches := []events.Event{
		gazeEvent(),
		{Type: events.TypeGestureDetected, Source: "gesture", Payload: events.GesturePayload{Name: "pinch"}},
		{Type: events.TypeBlink, Source: "eye", Payload: events.BlinkPayload{Count: 1}},
	}
	for _, ev := range dispatches {
		require.NoError(t, m.Dispatch(context.Background(), ev))
		*now = now.Add(time.Second)
	}

	var statTotal int64
	for _, n := range recorder.Stats() {
		statTotal += n
	}
	assert.Equal(t, int64(recorder.Len()), statTotal)
	assert.Equal(t, recorder.Total(), statTotal)
}
