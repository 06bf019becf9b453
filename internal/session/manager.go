package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const tickPeriod = 1 * time.Second

// ErrSessionNotFound is returned for unknown or already closed session ids.
var ErrSessionNotFound = errors.New("session: not found")

type command int

const (
	cmdPause command = iota
	cmdResume
	cmdSkip
	cmdAbort
)

// liveSession couples a state machine with the goroutine driving its ticks.
type liveSession struct {
	id     string
	userID string

	mu sync.Mutex
	s  *Session

	// onComplete is detached from the session so run can invoke it after
	// releasing mu; a slow completion handler must not block state reads.
	onComplete func()

	cmdChan chan command
	done    chan struct{}
	once    sync.Once
}

func (ls *liveSession) stop() {
	ls.once.Do(func() { close(ls.done) })
}

// Manager owns the live workout sessions. Each session runs a 1s tick
// schedule on its own goroutine; pausing stops the schedule and resuming
// restarts it, which restarts only the schedule, never the remaining
// countdown, so repeated pause cycles accumulate no drift.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*liveSession
	wg       sync.WaitGroup
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*liveSession)}
}

// Start creates a session for the day, starts it, and begins ticking.
// A previous live session of the same user is aborted first: one workout at
// a time.
func (m *Manager) Start(userID string, s *Session) (string, State, error) {
	if err := s.Start(); err != nil {
		return "", State{}, err
	}

	m.mu.Lock()
	for id, existing := range m.sessions {
		if existing.userID == userID {
			existing.abortLocked()
			delete(m.sessions, id)
		}
	}
	ls := &liveSession{
		id:         uuid.NewString(),
		userID:     userID,
		s:          s,
		onComplete: s.detachCompletion(),
		cmdChan:    make(chan command, 1),
		done:       make(chan struct{}),
	}
	m.sessions[ls.id] = ls
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(ls)

	logrus.Debugf("session %s started for user %s", ls.id, userID)
	return ls.id, s.Snapshot(), nil
}

func (ls *liveSession) abortLocked() {
	ls.mu.Lock()
	ls.s.Abort()
	ls.mu.Unlock()
	ls.stop()
}

// run drives one session until it terminates or the manager shuts down.
func (m *Manager) run(ls *liveSession) {
	defer m.wg.Done()

	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ls.done:
			return

		case cmd := <-ls.cmdChan:
			switch cmd {
			case cmdPause:
				ticker.Stop()
				ls.mu.Lock()
				_ = ls.s.Pause()
				ls.mu.Unlock()

			case cmdResume:
				ls.mu.Lock()
				_ = ls.s.Resume()
				ls.mu.Unlock()
				// Restart the schedule only; the countdown value is untouched.
				ticker.Reset(tickPeriod)

			case cmdSkip:
				ls.mu.Lock()
				_ = ls.s.Skip()
				terminal := ls.s.Terminal()
				completed := ls.s.Completed()
				ls.mu.Unlock()
				if completed && ls.onComplete != nil {
					ls.onComplete()
				}
				if terminal {
					ls.stop()
					return
				}

			case cmdAbort:
				ls.mu.Lock()
				ls.s.Abort()
				ls.mu.Unlock()
				ls.stop()
				return
			}

		case <-ticker.C:
			ls.mu.Lock()
			ls.s.Tick()
			terminal := ls.s.Terminal()
			completed := ls.s.Completed()
			ls.mu.Unlock()
			if completed && ls.onComplete != nil {
				ls.onComplete()
			}
			if terminal {
				ls.stop()
				return
			}
		}
	}
}

func (m *Manager) get(id string) (*liveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ls, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ls, nil
}

// send delivers a command to a live session, accepting that a session whose
// goroutine has already exited (terminal state) ignores it.
func (ls *liveSession) send(cmd command) {
	select {
	case ls.cmdChan <- cmd:
	case <-ls.done:
	}
}

// Pause freezes the session's countdown and tick schedule.
func (m *Manager) Pause(id string) error {
	ls, err := m.get(id)
	if err != nil {
		return err
	}
	ls.send(cmdPause)
	return nil
}

// Resume restarts the session's tick schedule.
func (m *Manager) Resume(id string) error {
	ls, err := m.get(id)
	if err != nil {
		return err
	}
	ls.send(cmdResume)
	return nil
}

// Skip advances the session manually.
func (m *Manager) Skip(id string) error {
	ls, err := m.get(id)
	if err != nil {
		return err
	}
	ls.send(cmdSkip)
	return nil
}

// Abort terminates the session without recording progress and forgets it.
func (m *Manager) Abort(id string) error {
	ls, err := m.get(id)
	if err != nil {
		return err
	}
	ls.send(cmdAbort)
	// The goroutine may already be gone; make the state terminal either way.
	ls.mu.Lock()
	ls.s.Abort()
	ls.mu.Unlock()
	ls.stop()

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// State returns a snapshot of one session.
func (m *Manager) State(id string) (State, error) {
	ls, err := m.get(id)
	if err != nil {
		return State{}, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.s.Snapshot(), nil
}

// StateForUser returns the snapshot of the user's live session, if any.
func (m *Manager) StateForUser(userID string) (string, State, error) {
	m.mu.Lock()
	var found *liveSession
	for _, ls := range m.sessions {
		if ls.userID == userID {
			found = ls
			break
		}
	}
	m.mu.Unlock()
	if found == nil {
		return "", State{}, ErrSessionNotFound
	}
	found.mu.Lock()
	defer found.mu.Unlock()
	return found.id, found.s.Snapshot(), nil
}

// Shutdown stops all session goroutines and waits for them to exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	for _, ls := range m.sessions {
		ls.stop()
	}
	m.mu.Unlock()
	m.wg.Wait()
}
