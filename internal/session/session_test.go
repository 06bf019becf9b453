package session

import (
	"testing"

	"coachly/fitness-coach/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepsOrTime(t *testing.T) {
	tests := []struct {
		in      string
		seconds int
		timed   bool
	}{
		{"12", 0, false},
		{"30s", 30, true},
		{"2m", 120, true},
		{"2min", 120, true},
		{"1m30s", 90, true},
		{"", 0, false},
		{"as many as possible", 0, false},
		{"0s", 0, false},
	}
	for _, tt := range tests {
		seconds, timed := ParseRepsOrTime(tt.in)
		assert.Equal(t, tt.seconds, seconds, "input %q", tt.in)
		assert.Equal(t, tt.timed, timed, "input %q", tt.in)
	}
}

func testDay() domain.DayPlan {
	return domain.DayPlan{
		Exercises: []domain.ExerciseRef{
			{Name: "A", RepsOrTime: "10s"},
			{Name: "B", RepsOrTime: "12"}, // rep-based
		},
		CooldownExercises: []domain.ExerciseRef{
			{Name: "C", RepsOrTime: "15s"},
		},
	}
}

func tickN(s *Session, n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}

func TestSession_FullSequence(t *testing.T) {
	completions := 0
	s := New(testDay(), func() { completions++ })

	require.NoError(t, s.Start())

	// Warmup is empty, so start lands directly on the main phase, item A.
	state := s.Snapshot()
	assert.Equal(t, PhaseMain, state.Phase)
	require.NotNil(t, state.Item)
	assert.Equal(t, "A", state.Item.Ref.Name)
	assert.Equal(t, 10, state.Item.RemainingSec)

	// 10 seconds of ticks exhaust A and advance to B.
	tickN(s, 10)
	state = s.Snapshot()
	assert.Equal(t, PhaseMain, state.Phase)
	require.NotNil(t, state.Item)
	assert.Equal(t, "B", state.Item.Ref.Name)

	// B is rep-based: ticks alone never advance it.
	tickN(s, 100)
	assert.Equal(t, "B", s.Snapshot().Item.Ref.Name)

	// Explicit done moves to the cooldown phase, item C.
	require.NoError(t, s.Skip())
	state = s.Snapshot()
	assert.Equal(t, PhaseCooldown, state.Phase)
	require.NotNil(t, state.Item)
	assert.Equal(t, "C", state.Item.Ref.Name)

	// C's 15 seconds complete the session, onComplete fires exactly once.
	tickN(s, 15)
	assert.Equal(t, PhaseCompleted, s.Snapshot().Phase)
	assert.Equal(t, 1, completions)

	// Further ticks or skips cannot re-fire completion.
	tickN(s, 5)
	assert.Error(t, s.Skip())
	assert.Equal(t, 1, completions)
}

func TestSession_SkipInsteadOfTicks(t *testing.T) {
	completions := 0
	s := New(testDay(), func() { completions++ })
	require.NoError(t, s.Start())

	require.NoError(t, s.Skip()) // A
	require.NoError(t, s.Skip()) // B
	require.NoError(t, s.Skip()) // C

	assert.Equal(t, PhaseCompleted, s.Snapshot().Phase)
	assert.Equal(t, 1, completions)
}

func TestSession_StartSkipsEmptyPhases(t *testing.T) {
	day := domain.DayPlan{
		WarmupExercises: []domain.ExerciseRef{{Name: "jog", RepsOrTime: "60s"}},
		Exercises:       []domain.ExerciseRef{{Name: "squat", RepsOrTime: "10"}},
	}
	s := New(day, nil)
	require.NoError(t, s.Start())
	assert.Equal(t, PhaseWarmup, s.Snapshot().Phase)

	// No cooldown: exhausting the main phase completes the session.
	require.NoError(t, s.Skip())
	require.NoError(t, s.Skip())
	assert.Equal(t, PhaseCompleted, s.Snapshot().Phase)
}

func TestSession_StartRequiresExercises(t *testing.T) {
	s := New(domain.DayPlan{}, nil)
	assert.ErrorIs(t, s.Start(), ErrNoExercises)
}

func TestSession_StartTwice(t *testing.T) {
	s := New(testDay(), nil)
	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrAlreadyStarted)
}

func TestSession_PauseKeepsRemainingTime(t *testing.T) {
	s := New(testDay(), nil)
	require.NoError(t, s.Start())

	// Run A down to 7 seconds remaining.
	tickN(s, 3)
	assert.Equal(t, 7, s.Snapshot().Item.RemainingSec)

	require.NoError(t, s.Pause())
	assert.True(t, s.Paused())

	// Ticks while paused must not advance the countdown.
	tickN(s, 50)
	assert.Equal(t, 7, s.Snapshot().Item.RemainingSec)

	// Resume continues from 7, not from the full duration.
	require.NoError(t, s.Resume())
	assert.Equal(t, 7, s.Snapshot().Item.RemainingSec)
	tickN(s, 1)
	assert.Equal(t, 6, s.Snapshot().Item.RemainingSec)
}

func TestSession_RepeatedPauseCycles(t *testing.T) {
	s := New(testDay(), nil)
	require.NoError(t, s.Start())

	tickN(s, 2)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Pause())
		require.NoError(t, s.Resume())
	}
	// Five pause cycles changed nothing about the countdown.
	assert.Equal(t, 8, s.Snapshot().Item.RemainingSec)
}

func TestSession_Abort(t *testing.T) {
	completions := 0
	s := New(testDay(), func() { completions++ })
	require.NoError(t, s.Start())
	tickN(s, 4)

	s.Abort()
	assert.Equal(t, PhaseAborted, s.Snapshot().Phase)
	assert.Equal(t, 0, completions, "abort records no progress")

	// Aborted is terminal.
	tickN(s, 20)
	assert.Error(t, s.Skip())
	assert.Equal(t, PhaseAborted, s.Snapshot().Phase)
}

func TestSession_OrderIsExactlyAsSupplied(t *testing.T) {
	day := domain.DayPlan{
		WarmupExercises: []domain.ExerciseRef{
			{Name: "w1", RepsOrTime: "5"},
			{Name: "w2", RepsOrTime: "5"},
		},
		Exercises: []domain.ExerciseRef{
			{Name: "m1", RepsOrTime: "5"},
		},
		CooldownExercises: []domain.ExerciseRef{
			{Name: "c1", RepsOrTime: "5"},
		},
	}
	s := New(day, nil)
	require.NoError(t, s.Start())

	var seen []string
	for s.Running() {
		seen = append(seen, s.Snapshot().Item.Ref.Name)
		require.NoError(t, s.Skip())
	}
	assert.Equal(t, []string{"w1", "w2", "m1", "c1"}, seen)
}
