package session

import (
	"sync/atomic"
	"testing"
	"time"

	"coachly/fitness-coach/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repDay builds a day of rep-based exercises so nothing advances on the
// ticker and tests stay deterministic.
func repDay(names ...string) domain.DayPlan {
	day := domain.DayPlan{}
	for _, name := range names {
		day.Exercises = append(day.Exercises, domain.ExerciseRef{Name: name, RepsOrTime: "10"})
	}
	return day
}

func TestManager_StartReplacesPriorSession(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	id1, _, err := m.Start("u1", New(repDay("a"), nil))
	require.NoError(t, err)

	otherID, _, err := m.Start("u2", New(repDay("x"), nil))
	require.NoError(t, err)

	id2, state, err := m.Start("u1", New(repDay("b"), nil))
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, PhaseMain, state.Phase)

	// The first session was aborted and forgotten.
	_, err = m.State(id1)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	gotID, gotState, err := m.StateForUser("u1")
	require.NoError(t, err)
	assert.Equal(t, id2, gotID)
	require.NotNil(t, gotState.Item)
	assert.Equal(t, "b", gotState.Item.Ref.Name)

	// Another user's session is untouched by the restart.
	_, err = m.State(otherID)
	assert.NoError(t, err)
}

func TestManager_AbortReapsSession(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	var completions atomic.Int32
	id, _, err := m.Start("u1", New(repDay("a", "b"), func() { completions.Add(1) }))
	require.NoError(t, err)

	require.NoError(t, m.Abort(id))

	_, err = m.State(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, _, err = m.StateForUser("u1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, int32(0), completions.Load(), "abort records no progress")
}

func TestManager_SkipToCompletionFiresOnce(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	var completions atomic.Int32
	id, _, err := m.Start("u1", New(repDay("a", "b"), func() { completions.Add(1) }))
	require.NoError(t, err)

	require.NoError(t, m.Skip(id))
	require.NoError(t, m.Skip(id))

	require.Eventually(t, func() bool {
		state, err := m.State(id)
		return err == nil && state.Phase == PhaseCompleted
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return completions.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// A completed session stays queryable and ignores further commands.
	require.NoError(t, m.Skip(id))
	assert.Never(t, func() bool {
		return completions.Load() > 1
	}, 300*time.Millisecond, 50*time.Millisecond)

	state, err := m.State(id)
	require.NoError(t, err)
	assert.Equal(t, PhaseCompleted, state.Phase)
}

func TestManager_TimedItemCompletesViaTicker(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	var completions atomic.Int32
	day := domain.DayPlan{
		Exercises: []domain.ExerciseRef{{Name: "sprint", RepsOrTime: "1s"}},
	}
	id, _, err := m.Start("u1", New(day, func() { completions.Add(1) }))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		state, err := m.State(id)
		return err == nil && state.Phase == PhaseCompleted
	}, 5*time.Second, 50*time.Millisecond)
	require.Eventually(t, func() bool {
		return completions.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestManager_PauseAndResume(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	id, _, err := m.Start("u1", New(testDay(), nil))
	require.NoError(t, err)

	require.NoError(t, m.Pause(id))
	require.Eventually(t, func() bool {
		state, err := m.State(id)
		return err == nil && state.Paused
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Resume(id))
	require.Eventually(t, func() bool {
		state, err := m.State(id)
		return err == nil && !state.Paused
	}, 2*time.Second, 10*time.Millisecond)
}

func TestManager_StateNotBlockedByCompletionHandler(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	release := make(chan struct{})
	defer close(release)
	entered := make(chan struct{})

	id, _, err := m.Start("u1", New(repDay("a"), func() {
		close(entered)
		<-release
	}))
	require.NoError(t, err)

	require.NoError(t, m.Skip(id))
	<-entered

	// State reads must not wait for the completion handler to return.
	read := make(chan struct{})
	go func() {
		state, err := m.State(id)
		assert.NoError(t, err)
		assert.Equal(t, PhaseCompleted, state.Phase)
		close(read)
	}()
	select {
	case <-read:
	case <-time.After(time.Second):
		t.Fatal("state query blocked while the completion handler was running")
	}
}

func TestManager_ShutdownWithLiveSession(t *testing.T) {
	m := NewManager()

	id, _, err := m.Start("u1", New(repDay("a"), nil))
	require.NoError(t, err)

	m.Shutdown()

	// Shutdown stops ticking but leaves the last state readable.
	state, err := m.State(id)
	require.NoError(t, err)
	assert.Equal(t, PhaseMain, state.Phase)
}

func TestManager_UnknownSessionID(t *testing.T) {
	m := NewManager()

	_, err := m.State("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Pause("missing"), ErrSessionNotFound)
	assert.ErrorIs(t, m.Resume("missing"), ErrSessionNotFound)
	assert.ErrorIs(t, m.Skip("missing"), ErrSessionNotFound)
	assert.ErrorIs(t, m.Abort("missing"), ErrSessionNotFound)

	_, _, err = m.StateForUser("nobody")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
