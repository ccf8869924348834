package session

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultRestSeconds is used when an exercise has no configured rest time.
const DefaultRestSeconds = 60

var (
	// ErrEmptySession is returned when starting a session with no exercises.
	ErrEmptySession = errors.New("session: exercise list is empty")

	// ErrInvalidTransition is returned when an operation is called in a
	// phase that does not allow it.
	ErrInvalidTransition = errors.New("session: operation not valid in current phase")
)

// Phase is the session's current mode.
type Phase string

const (
	PhaseActive   Phase = "active"
	PhaseResting  Phase = "resting"
	PhaseFinished Phase = "finished"
)

// Exercise is one entry of a workout plan, ordered within the session.
type Exercise struct {
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	Reps        int    `json:"reps"`
	DurationSec int    `json:"duration_sec,omitempty"`
	RestSec     int    `json:"rest_sec,omitempty"`
	Order       int    `json:"order"`
}

// State is a serializable snapshot of a running session. It is what gets
// persisted between ticks so a session survives a server restart.
type State struct {
	ID            uuid.UUID  `json:"id"`
	PlanID        uuid.UUID  `json:"plan_id"`
	PlanName      string     `json:"plan_name"`
	StartedAt     time.Time  `json:"started_at"`
	Exercises     []Exercise `json:"exercises"`
	CurrentIndex  int        `json:"current_index"`
	Completed     []int      `json:"completed"`
	ElapsedSec    int        `json:"elapsed_sec"`
	RestRemaining int        `json:"rest_remaining_sec"`
	Phase         Phase      `json:"phase"`
}

// Session drives a single user through an ordered exercise list with timed
// rest periods. It is not safe for concurrent use; the Manager serializes
// access.
type Session struct {
	id        uuid.UUID
	planID    uuid.UUID
	planName  string
	startedAt time.Time

	exercises []Exercise
	current   int
	completed map[int]bool
	elapsed   int
	restLeft  int
	phase     Phase
}

// Start creates a session over the given exercises, sorted ascending by
// Order. It fails with ErrEmptySession if the list is empty.
func Start(planID uuid.UUID, planName string, exercises []Exercise, now time.Time) (*Session, error) {
	if len(exercises) == 0 {
		return nil, ErrEmptySession
	}

	ordered := make([]Exercise, len(exercises))
	copy(ordered, exercises)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	return &Session{
		id:        uuid.New(),
		planID:    planID,
		planName:  planName,
		startedAt: now,
		exercises: ordered,
		completed: make(map[int]bool),
		phase:     PhaseActive,
	}, nil
}

// Restore rebuilds a session from a persisted snapshot.
func Restore(st State) (*Session, error) {
	if len(st.Exercises) == 0 {
		return nil, ErrEmptySession
	}
	s := &Session{
		id:        st.ID,
		planID:    st.PlanID,
		planName:  st.PlanName,
		startedAt: st.StartedAt,
		exercises: st.Exercises,
		current:   st.CurrentIndex,
		completed: make(map[int]bool, len(st.Completed)),
		elapsed:   st.ElapsedSec,
		restLeft:  st.RestRemaining,
		phase:     st.Phase,
	}
	for _, i := range st.Completed {
		s.completed[i] = true
	}
	return s, nil
}

// Tick advances the session clock by one second. In the active phase it
// accumulates elapsed time; in the resting phase it counts the rest down
// and moves to the next exercise when it reaches zero. Tick never fails:
// a tick in the finished phase is a no-op.
func (s *Session) Tick() {
	switch s.phase {
	case PhaseActive:
		s.elapsed++
	case PhaseResting:
		if s.restLeft > 0 {
			s.restLeft--
		}
		if s.restLeft == 0 {
			s.current++
			s.phase = PhaseActive
		}
	}
}

// CompleteCurrent marks the current exercise done. On the last exercise the
// session finishes; otherwise it enters the rest phase with the countdown
// taken from the upcoming exercise's configured rest time. The rest duration
// deliberately comes from exercise i+1, not i: the pause reflects the next
// exercise's prescribed recovery.
func (s *Session) CompleteCurrent() (finished bool, err error) {
	if s.phase != PhaseActive {
		return false, ErrInvalidTransition
	}

	s.completed[s.current] = true
	if s.current == len(s.exercises)-1 {
		s.phase = PhaseFinished
		return true, nil
	}

	s.restLeft = restFor(s.exercises[s.current+1])
	s.phase = PhaseResting
	return false, nil
}

// SkipRest discards the remaining countdown, resets it to the default, and
// moves straight to the next exercise. Valid only while resting.
func (s *Session) SkipRest() error {
	if s.phase != PhaseResting {
		return ErrInvalidTransition
	}
	s.current++
	s.restLeft = DefaultRestSeconds
	s.phase = PhaseActive
	return nil
}

// GoToPrevious steps back to the previous exercise. Completion bookkeeping
// for the revisited exercise is kept: going back does not undo a completion.
func (s *Session) GoToPrevious() error {
	if s.phase != PhaseActive || s.current == 0 {
		return ErrInvalidTransition
	}
	s.current--
	return nil
}

// Finished reports whether every exercise has been completed.
func (s *Session) Finished() bool { return s.phase == PhaseFinished }

// Elapsed returns total active seconds accumulated so far.
func (s *Session) Elapsed() int { return s.elapsed }

// ID returns the session's identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// State returns a snapshot of the session suitable for persistence and for
// rendering.
func (s *Session) State() State {
	completed := make([]int, 0, len(s.completed))
	for i := range s.completed {
		completed = append(completed, i)
	}
	sort.Ints(completed)

	exercises := make([]Exercise, len(s.exercises))
	copy(exercises, s.exercises)

	return State{
		ID:            s.id,
		PlanID:        s.planID,
		PlanName:      s.planName,
		StartedAt:     s.startedAt,
		Exercises:     exercises,
		CurrentIndex:  s.current,
		Completed:     completed,
		ElapsedSec:    s.elapsed,
		RestRemaining: s.restLeft,
		Phase:         s.phase,
	}
}

func restFor(e Exercise) int {
	if e.RestSec > 0 {
		return e.RestSec
	}
	return DefaultRestSeconds
}
