// Package session sequences a workout through warmup, main, and cooldown
// phases with per-exercise countdowns, pause/resume, and completion
// recording.
package session

import (
	"errors"

	"coachly/fitness-coach/internal/domain"
)

// Phase is the position of a session in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWarmup
	PhaseMain
	PhaseCooldown
	PhaseCompleted
	PhaseAborted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWarmup:
		return "warmup"
	case PhaseMain:
		return "main"
	case PhaseCooldown:
		return "cooldown"
	case PhaseCompleted:
		return "completed"
	case PhaseAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

var (
	ErrAlreadyStarted = errors.New("session: already started")
	ErrNotRunning     = errors.New("session: not in a running phase")
	ErrNoExercises    = errors.New("session: day has no exercises")
)

// Session is the workout state machine. It is not safe for concurrent use;
// the Manager serializes access.
type Session struct {
	warmup   []Item
	main     []Item
	cooldown []Item

	phase  Phase
	index  int
	paused bool

	completeFired bool
	onComplete    func()
}

// State is a point-in-time snapshot for rendering.
type State struct {
	Phase        Phase
	ItemIndex    int
	Item         *Item
	Paused       bool
	ItemsInPhase int
}

// New builds a session from a day's exercise lists. Item order is exactly the
// order supplied; empty phases are skipped when reached. onComplete fires
// exactly once when the session completes, and never on abort.
func New(day domain.DayPlan, onComplete func()) *Session {
	return &Session{
		warmup:     buildItems(day.WarmupExercises),
		main:       buildItems(day.Exercises),
		cooldown:   buildItems(day.CooldownExercises),
		phase:      PhaseIdle,
		onComplete: onComplete,
	}
}

func (s *Session) items(phase Phase) []Item {
	switch phase {
	case PhaseWarmup:
		return s.warmup
	case PhaseMain:
		return s.main
	case PhaseCooldown:
		return s.cooldown
	default:
		return nil
	}
}

// firstNonEmptyPhase returns the first phase at or after the given one that
// has items, or PhaseCompleted when none is left.
func (s *Session) firstNonEmptyPhase(from Phase) Phase {
	for p := from; p <= PhaseCooldown; p++ {
		if len(s.items(p)) > 0 {
			return p
		}
	}
	return PhaseCompleted
}

// Start moves an idle session to its first non-empty phase.
func (s *Session) Start() error {
	if s.phase != PhaseIdle {
		return ErrAlreadyStarted
	}
	if len(s.warmup)+len(s.main)+len(s.cooldown) == 0 {
		return ErrNoExercises
	}
	s.phase = s.firstNonEmptyPhase(PhaseWarmup)
	s.index = 0
	s.paused = false
	return nil
}

// Running reports whether the session is in an exercise phase.
func (s *Session) Running() bool {
	return s.phase == PhaseWarmup || s.phase == PhaseMain || s.phase == PhaseCooldown
}

// Terminal reports whether the session reached a final state.
func (s *Session) Terminal() bool {
	return s.phase == PhaseCompleted || s.phase == PhaseAborted
}

// Completed reports whether the session finished every phase.
func (s *Session) Completed() bool {
	return s.phase == PhaseCompleted
}

func (s *Session) current() *Item {
	items := s.items(s.phase)
	if s.index < 0 || s.index >= len(items) {
		return nil
	}
	return &items[s.index]
}

// Tick advances the current timed item's countdown by one second. Rep-based
// items are unaffected: they advance only through Skip. Ticks while paused or
// outside a running phase are ignored.
func (s *Session) Tick() {
	if !s.Running() || s.paused {
		return
	}
	item := s.current()
	if item == nil || !item.Timed {
		return
	}
	if item.RemainingSec > 0 {
		item.RemainingSec--
	}
	if item.RemainingSec <= 0 {
		s.advance()
	}
}

// Skip advances to the next item or phase exactly as a countdown expiry
// would, without waiting for the timer. It is also the "done" action for
// rep-based items.
func (s *Session) Skip() error {
	if !s.Running() {
		return ErrNotRunning
	}
	s.advance()
	return nil
}

// advance moves to the next item in the phase, the next non-empty phase, or
// completion.
func (s *Session) advance() {
	if s.index+1 < len(s.items(s.phase)) {
		s.index++
		return
	}
	next := s.firstNonEmptyPhase(s.phase + 1)
	s.phase = next
	s.index = 0
	if next == PhaseCompleted {
		s.fireComplete()
	}
}

func (s *Session) fireComplete() {
	if s.completeFired {
		return
	}
	s.completeFired = true
	if s.onComplete != nil {
		s.onComplete()
	}
}

// detachCompletion removes and returns the completion callback so the caller
// can invoke it without holding whatever lock serializes the session.
// Completion handlers may do slow I/O.
func (s *Session) detachCompletion() func() {
	fn := s.onComplete
	s.onComplete = nil
	return fn
}

// Pause freezes the countdown without resetting position or remaining time.
func (s *Session) Pause() error {
	if !s.Running() {
		return ErrNotRunning
	}
	s.paused = true
	return nil
}

// Resume unfreezes a paused session. The remaining countdown continues from
// where Pause left it.
func (s *Session) Resume() error {
	if !s.Running() {
		return ErrNotRunning
	}
	s.paused = false
	return nil
}

// Paused reports whether the session is paused.
func (s *Session) Paused() bool {
	return s.paused
}

// Abort terminates the session. No completion fires and no progress is
// recorded. Aborting a terminal session is a no-op.
func (s *Session) Abort() {
	if s.Terminal() {
		return
	}
	s.phase = PhaseAborted
	s.paused = false
}

// Snapshot returns the current state for rendering.
func (s *Session) Snapshot() State {
	state := State{
		Phase:        s.phase,
		ItemIndex:    s.index,
		Paused:       s.paused,
		ItemsInPhase: len(s.items(s.phase)),
	}
	if item := s.current(); item != nil {
		copied := *item
		state.Item = &copied
	}
	return state
}
