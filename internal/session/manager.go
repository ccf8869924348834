package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession is returned when an operation targets a user with no open
// session.
var ErrNoSession = errors.New("session: no open session")

// ErrSessionExists is returned when starting a session for a user who
// already has one open.
var ErrSessionExists = errors.New("session: a session is already open")

// snapshotEveryTicks controls how often a quiet session is persisted.
// Phase changes always snapshot immediately.
const snapshotEveryTicks = 15

// Completion summarizes a finished session for the workout log.
type Completion struct {
	SessionID          uuid.UUID
	PlanID             uuid.UUID
	PlanName           string
	UserID             int
	StartedAt          time.Time
	FinishedAt         time.Time
	DurationSec        int
	ExercisesCompleted int
}

// Store persists session snapshots and finished workouts.
type Store interface {
	SaveSessionSnapshot(ctx context.Context, userID int, st State) error
	DeleteSessionSnapshot(ctx context.Context, userID int) error
	LoadSessionSnapshot(ctx context.Context, userID int) (*State, error)
	InsertCompletedWorkout(ctx context.Context, c Completion) error
}

// Manager owns all open sessions, one per user, and drives their clocks
// from a single ticker. All mutations go through the manager's mutex, so
// concurrent requests for the same session are serialized.
type Manager struct {
	mu    sync.Mutex
	open  map[int]*managed
	store Store
	log   *slog.Logger
	nowFn func() time.Time
}

type managed struct {
	sess           *Session
	ticksSinceSnap int
}

// NewManager creates a Manager backed by the given snapshot store.
func NewManager(store Store, log *slog.Logger) *Manager {
	return &Manager{
		open:  make(map[int]*managed),
		store: store,
		log:   log,
		nowFn: time.Now,
	}
}

// Run ticks every open session once per second until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tickAll(ctx)
		}
	}
}

func (m *Manager) tickAll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for userID, mg := range m.open {
		before := mg.sess.phase
		mg.sess.Tick()
		mg.ticksSinceSnap++

		if mg.sess.phase != before || mg.ticksSinceSnap >= snapshotEveryTicks {
			m.snapshotLocked(ctx, userID, mg)
		}
	}
}

// snapshotLocked persists the session state. Caller must hold m.mu.
func (m *Manager) snapshotLocked(ctx context.Context, userID int, mg *managed) {
	if err := m.store.SaveSessionSnapshot(ctx, userID, mg.sess.State()); err != nil {
		m.log.Error("session snapshot failed", "user_id", userID, "error", err)
		return
	}
	mg.ticksSinceSnap = 0
}

// Start opens a session for the user from the given plan exercises.
func (m *Manager) Start(ctx context.Context, userID int, planID uuid.UUID, planName string, exercises []Exercise) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.open[userID]; ok {
		return State{}, ErrSessionExists
	}

	sess, err := Start(planID, planName, exercises, m.nowFn())
	if err != nil {
		return State{}, err
	}

	mg := &managed{sess: sess}
	m.open[userID] = mg
	m.snapshotLocked(ctx, userID, mg)
	return sess.State(), nil
}

// Resume restores the user's session from its latest snapshot, if one
// exists and no session is already open in memory.
func (m *Manager) Resume(ctx context.Context, userID int) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mg, ok := m.open[userID]; ok {
		return mg.sess.State(), nil
	}

	st, err := m.store.LoadSessionSnapshot(ctx, userID)
	if err != nil {
		return State{}, err
	}
	if st == nil {
		return State{}, ErrNoSession
	}

	sess, err := Restore(*st)
	if err != nil {
		return State{}, err
	}
	m.open[userID] = &managed{sess: sess}
	return sess.State(), nil
}

// Current returns the state of the user's open session.
func (m *Manager) Current(userID int) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, ok := m.open[userID]
	if !ok {
		return State{}, ErrNoSession
	}
	return mg.sess.State(), nil
}

// CompleteCurrent marks the user's current exercise done. When the session
// finishes it is logged to the workout history and its snapshot removed.
func (m *Manager) CompleteCurrent(ctx context.Context, userID int) (State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, ok := m.open[userID]
	if !ok {
		return State{}, false, ErrNoSession
	}

	finished, err := mg.sess.CompleteCurrent()
	if err != nil {
		return State{}, false, err
	}

	st := mg.sess.State()
	if !finished {
		m.snapshotLocked(ctx, userID, mg)
		return st, false, nil
	}

	c := Completion{
		SessionID:          st.ID,
		PlanID:             st.PlanID,
		PlanName:           st.PlanName,
		UserID:             userID,
		StartedAt:          st.StartedAt,
		FinishedAt:         m.nowFn(),
		DurationSec:        st.ElapsedSec,
		ExercisesCompleted: len(st.Completed),
	}
	if err := m.store.InsertCompletedWorkout(ctx, c); err != nil {
		m.log.Error("recording completed workout failed", "user_id", userID, "error", err)
	}
	if err := m.store.DeleteSessionSnapshot(ctx, userID); err != nil {
		m.log.Error("deleting session snapshot failed", "user_id", userID, "error", err)
	}
	delete(m.open, userID)
	return st, true, nil
}

// SkipRest skips the current rest countdown.
func (m *Manager) SkipRest(ctx context.Context, userID int) (State, error) {
	return m.mutate(ctx, userID, func(s *Session) error { return s.SkipRest() })
}

// GoToPrevious steps the session back one exercise.
func (m *Manager) GoToPrevious(ctx context.Context, userID int) (State, error) {
	return m.mutate(ctx, userID, func(s *Session) error { return s.GoToPrevious() })
}

func (m *Manager) mutate(ctx context.Context, userID int, op func(*Session) error) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, ok := m.open[userID]
	if !ok {
		return State{}, ErrNoSession
	}
	if err := op(mg.sess); err != nil {
		return State{}, err
	}
	m.snapshotLocked(ctx, userID, mg)
	return mg.sess.State(), nil
}

// Exit abandons the user's session without logging a completion. The
// snapshot is removed so nothing resumes later.
func (m *Manager) Exit(ctx context.Context, userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.open[userID]; !ok {
		return ErrNoSession
	}
	delete(m.open, userID)
	if err := m.store.DeleteSessionSnapshot(ctx, userID); err != nil {
		m.log.Error("deleting session snapshot failed", "user_id", userID, "error", err)
	}
	return nil
}
