package session

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeStore is an in-memory Store for manager tests.
type fakeStore struct {
	snapshots   map[int]State
	completions []Completion
}

func newFakeStore() *fakeStore {
	return &fakeStore{snapshots: make(map[int]State)}
}

func (f *fakeStore) SaveSessionSnapshot(_ context.Context, userID int, st State) error {
	f.snapshots[userID] = st
	return nil
}

func (f *fakeStore) DeleteSessionSnapshot(_ context.Context, userID int) error {
	delete(f.snapshots, userID)
	return nil
}

func (f *fakeStore) LoadSessionSnapshot(_ context.Context, userID int) (*State, error) {
	st, ok := f.snapshots[userID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (f *fakeStore) InsertCompletedWorkout(_ context.Context, c Completion) error {
	f.completions = append(f.completions, c)
	return nil
}

func newTestManager(store Store) *Manager {
	m := NewManager(store, slog.Default())
	m.nowFn = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return m
}

// TestManagerStartSnapshotsImmediately verifies that opening a session
// persists an initial snapshot so a crash right after start loses nothing.
func TestManagerStartSnapshotsImmediately(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)

	st, err := m.Start(context.Background(), 1, uuid.New(), "Push Day", testExercises())
	if err != nil {
		t.Fatal(err)
	}

	snap, ok := store.snapshots[1]
	if !ok {
		t.Fatal("no snapshot written on start")
	}
	if snap.ID != st.ID {
		t.Errorf("snapshot ID = %v, want %v", snap.ID, st.ID)
	}
}

// TestManagerStartTwice verifies that a second Start for the same user is
// rejected while a session is open.
func TestManagerStartTwice(t *testing.T) {
	m := newTestManager(newFakeStore())

	if _, err := m.Start(context.Background(), 1, uuid.New(), "Push Day", testExercises()); err != nil {
		t.Fatal(err)
	}
	_, err := m.Start(context.Background(), 1, uuid.New(), "Pull Day", testExercises())
	if !errors.Is(err, ErrSessionExists) {
		t.Errorf("err = %v, want ErrSessionExists", err)
	}
}

// TestManagerFinishLogsCompletionAndClearsSnapshot verifies that finishing
// a session records one workout in the history and removes the snapshot.
func TestManagerFinishLogsCompletionAndClearsSnapshot(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)
	ctx := context.Background()

	planID := uuid.New()
	if _, err := m.Start(ctx, 1, planID, "Push Day", testExercises()); err != nil {
		t.Fatal(err)
	}

	if _, _, err := m.CompleteCurrent(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := m.SkipRest(ctx, 1); err != nil {
		t.Fatal(err)
	}
	st, finished, err := m.CompleteCurrent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !finished {
		t.Fatal("session should be finished after completing both exercises")
	}
	if st.Phase != PhaseFinished {
		t.Errorf("phase = %q, want %q", st.Phase, PhaseFinished)
	}

	if len(store.completions) != 1 {
		t.Fatalf("completions = %d, want 1", len(store.completions))
	}
	c := store.completions[0]
	if c.PlanID != planID || c.UserID != 1 || c.ExercisesCompleted != 2 {
		t.Errorf("completion = %+v, want plan %v, user 1, 2 exercises", c, planID)
	}
	if _, ok := store.snapshots[1]; ok {
		t.Error("snapshot should be deleted after completion")
	}
	if _, err := m.Current(1); !errors.Is(err, ErrNoSession) {
		t.Errorf("Current after finish: err = %v, want ErrNoSession", err)
	}
}

// TestManagerExit verifies that exiting abandons the session without a
// completion record and clears the snapshot.
func TestManagerExit(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)
	ctx := context.Background()

	if _, err := m.Start(ctx, 1, uuid.New(), "Push Day", testExercises()); err != nil {
		t.Fatal(err)
	}
	if err := m.Exit(ctx, 1); err != nil {
		t.Fatal(err)
	}

	if len(store.completions) != 0 {
		t.Errorf("completions = %d, want 0 after exit", len(store.completions))
	}
	if _, ok := store.snapshots[1]; ok {
		t.Error("snapshot should be deleted after exit")
	}
	if err := m.Exit(ctx, 1); !errors.Is(err, ErrNoSession) {
		t.Errorf("second exit: err = %v, want ErrNoSession", err)
	}
}

// TestManagerResume verifies that a session can be rebuilt from its
// persisted snapshot after the in-memory state is gone.
func TestManagerResume(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)
	ctx := context.Background()

	started, err := m.Start(ctx, 1, uuid.New(), "Push Day", testExercises())
	if err != nil {
		t.Fatal(err)
	}

	// Simulate a restart: fresh manager over the same store.
	m2 := newTestManager(store)
	resumed, err := m2.Resume(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if resumed.ID != started.ID {
		t.Errorf("resumed ID = %v, want %v", resumed.ID, started.ID)
	}

	// No snapshot: nothing to resume.
	m3 := newTestManager(newFakeStore())
	if _, err := m3.Resume(ctx, 2); !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

// TestManagerTickAllSnapshotsOnPhaseChange verifies that the ticker loop
// snapshots a session when its rest countdown expires and flips it active.
func TestManagerTickAllSnapshotsOnPhaseChange(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)
	ctx := context.Background()

	if _, err := m.Start(ctx, 1, uuid.New(), "Push Day", []Exercise{
		{Name: "A", Order: 0},
		{Name: "B", Order: 1, RestSec: 2},
	}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.CompleteCurrent(ctx, 1); err != nil {
		t.Fatal(err)
	}

	m.tickAll(ctx) // rest 2 -> 1
	m.tickAll(ctx) // rest 1 -> 0, phase change, snapshot

	snap := store.snapshots[1]
	if snap.Phase != PhaseActive || snap.CurrentIndex != 1 {
		t.Errorf("snapshot = phase %q index %d, want active index 1", snap.Phase, snap.CurrentIndex)
	}
}
