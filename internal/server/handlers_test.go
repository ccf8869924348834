package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/fitlog/internal/session"
)

// memStore is an in-memory session.Store for handler tests.
type memStore struct {
	mu          sync.Mutex
	snapshots   map[int]session.State
	completions []session.Completion
}

func newMemStore() *memStore {
	return &memStore{snapshots: make(map[int]session.State)}
}

func (s *memStore) SaveSessionSnapshot(_ context.Context, userID int, st session.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[userID] = st
	return nil
}

func (s *memStore) DeleteSessionSnapshot(_ context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, userID)
	return nil
}

func (s *memStore) LoadSessionSnapshot(_ context.Context, userID int) (*session.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.snapshots[userID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *memStore) InsertCompletedWorkout(_ context.Context, c session.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completions = append(s.completions, c)
	return nil
}

func newSessionServer(t *testing.T) (*Server, *memStore) {
	t.Helper()
	store := newMemStore()
	mgr := session.NewManager(store, slog.Default())
	return &Server{sessions: mgr, log: slog.Default()}, store
}

func startTestSession(t *testing.T, s *Server, exercises []session.Exercise) session.State {
	t.Helper()
	st, err := s.sessions.Start(context.Background(), 1, uuid.New(), "Push Day", exercises)
	if err != nil {
		t.Fatalf("starting session: %v", err)
	}
	return st
}

// TestHandleMe verifies /api/v1/me returns the resolved identity.
func TestHandleMe(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	want := Identity{UserID: 7, Login: "alice@example.com", DisplayName: "Alice"}
	req = req.WithContext(context.WithValue(req.Context(), identityKey, want))
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got Identity
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if got != want {
		t.Errorf("identity = %+v, want %+v", got, want)
	}
}

// TestHandleCurrentSessionNone verifies that asking for a session when
// none exists (in memory or persisted) returns 404.
func TestHandleCurrentSessionNone(t *testing.T) {
	s, _ := newSessionServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/current", nil)
	rec := httptest.NewRecorder()

	s.handleCurrentSession(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestHandleCurrentSessionResumesSnapshot verifies that a persisted
// snapshot is restored when no session is open in memory.
func TestHandleCurrentSessionResumesSnapshot(t *testing.T) {
	s, store := newSessionServer(t)
	snap := session.State{
		ID:        uuid.New(),
		PlanID:    uuid.New(),
		PlanName:  "Leg Day",
		StartedAt: time.Now().Add(-5 * time.Minute),
		Exercises: []session.Exercise{
			{Name: "Squat", Sets: 5, Reps: 5, Order: 0},
			{Name: "Lunge", Sets: 3, Reps: 12, Order: 1},
		},
		CurrentIndex: 1,
		Completed:    []int{0},
		ElapsedSec:   300,
		Phase:        session.PhaseActive,
	}
	store.snapshots[1] = snap

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/current", nil)
	rec := httptest.NewRecorder()
	s.handleCurrentSession(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Session.PlanName != "Leg Day" {
		t.Errorf("plan = %q, want %q", resp.Session.PlanName, "Leg Day")
	}
	if resp.Session.CurrentIndex != 1 {
		t.Errorf("current index = %d, want 1", resp.Session.CurrentIndex)
	}
}

// TestHandleCompleteExerciseFlow drives a two-exercise session through the
// complete endpoint and checks the finished flag plus the logged workout.
func TestHandleCompleteExerciseFlow(t *testing.T) {
	s, store := newSessionServer(t)
	startTestSession(t, s, []session.Exercise{
		{Name: "Bench Press", Sets: 3, Reps: 8, Order: 0},
		{Name: "Dips", Sets: 3, Reps: 10, RestSec: 45, Order: 1},
	})

	// First completion enters rest, session keeps going.
	rec := httptest.NewRecorder()
	s.handleCompleteExercise(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/current/complete", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first complete: status = %d, want 200", rec.Code)
	}
	var resp sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Finished {
		t.Error("finished after first exercise, want in progress")
	}
	if resp.Session.Phase != session.PhaseResting {
		t.Errorf("phase = %q, want resting", resp.Session.Phase)
	}

	// Completing during rest is a conflict.
	rec = httptest.NewRecorder()
	s.handleCompleteExercise(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/current/complete", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("complete while resting: status = %d, want 409", rec.Code)
	}

	// Skip rest, then finish the last exercise.
	rec = httptest.NewRecorder()
	s.handleSkipRest(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/current/skip-rest", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("skip rest: status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.handleCompleteExercise(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/current/complete", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("final complete: status = %d, want 200", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !resp.Finished {
		t.Error("finished = false after last exercise")
	}

	if len(store.completions) != 1 {
		t.Fatalf("completions = %d, want 1", len(store.completions))
	}
	if got := store.completions[0].ExercisesCompleted; got != 2 {
		t.Errorf("exercises completed = %d, want 2", got)
	}
	if _, ok := store.snapshots[1]; ok {
		t.Error("snapshot still present after finish")
	}
}

// TestHandleExitSession verifies exit abandons the session without logging
// a workout.
func TestHandleExitSession(t *testing.T) {
	s, store := newSessionServer(t)
	startTestSession(t, s, []session.Exercise{{Name: "Row", Sets: 3, Reps: 10, Order: 0}})

	rec := httptest.NewRecorder()
	s.handleExitSession(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/current/exit", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(store.completions) != 0 {
		t.Errorf("completions = %d, want 0", len(store.completions))
	}

	rec = httptest.NewRecorder()
	s.handleCurrentSession(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/current", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("session after exit: status = %d, want 404", rec.Code)
	}
}

// TestHandleGoToPreviousNoSession verifies the 404 mapping for session
// operations without an open session.
func TestHandleGoToPreviousNoSession(t *testing.T) {
	s, _ := newSessionServer(t)
	rec := httptest.NewRecorder()
	s.handleGoToPrevious(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/current/previous", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestMealListingRouted verifies GET /meals is wired through the router and
// rejects a malformed date before touching storage.
func TestMealListingRouted(t *testing.T) {
	store := newMemStore()
	mgr := session.NewManager(store, slog.Default())
	s := New(nil, mgr, nil, "", slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/meals?date=yesterday", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestValidationRejections verifies handlers reject malformed input before
// touching storage.
func TestValidationRejections(t *testing.T) {
	s := &Server{}

	tests := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		body    string
	}{
		{"food without name", s.handleCreateFood, http.MethodPost, `{"calories":100}`},
		{"food with negative calories", s.handleCreateFood, http.MethodPost, `{"name":"Oats","calories":-1}`},
		{"meal with unknown type", s.handleCreateMeal, http.MethodPost, `{"type":"brunch","items":[{"servings":1}]}`},
		{"meal without items", s.handleCreateMeal, http.MethodPost, `{"type":"lunch","items":[]}`},
		{"meal with zero servings", s.handleCreateMeal, http.MethodPost, `{"type":"lunch","items":[{"servings":0}]}`},
		{"water with zero amount", s.handleLogWater, http.MethodPost, `{"amount_ml":0}`},
		{"training event with unknown body part", s.handleLogTrainingEvent, http.MethodPost, `{"body_part":"neck"}`},
		{"goals with zero calorie goal", s.handleUpdateGoals, http.MethodPut, `{"calorie_goal":0,"protein_goal":150,"carb_goal":250,"fat_goal":70,"water_goal_ml":2000}`},
		{"plan without name", s.handleCreatePlan, http.MethodPost, `{"exercises":[{"name":"Squat"}]}`},
		{"plan without exercises", s.handleCreatePlan, http.MethodPost, `{"name":"Legs","exercises":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			tt.handler(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

// TestParseDay verifies date parsing and the today default.
func TestParseDay(t *testing.T) {
	day, err := parseDay("2026-03-15")
	if err != nil {
		t.Fatalf("parseDay: %v", err)
	}
	if day.Year() != 2026 || day.Month() != time.March || day.Day() != 15 {
		t.Errorf("day = %v, want 2026-03-15", day)
	}

	today, err := parseDay("")
	if err != nil {
		t.Fatalf("parseDay empty: %v", err)
	}
	if today.Hour() != 0 || today.Minute() != 0 {
		t.Errorf("default day not truncated: %v", today)
	}

	if _, err := parseDay("15/03/2026"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

// TestParseTimeRange verifies both accepted formats and the inclusive
// end-of-day handling for date-only end values.
func TestParseTimeRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?start=2026-01-01&end=2026-01-31", nil)
	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatalf("parseTimeRange: %v", err)
	}
	if start.Day() != 1 {
		t.Errorf("start day = %d, want 1", start.Day())
	}
	// Date-only end covers the whole end day.
	if end.Day() != 1 || end.Month() != time.February {
		t.Errorf("end = %v, want 2026-02-01 00:00", end)
	}

	req = httptest.NewRequest(http.MethodGet, "/?start=2026-01-01T08:00:00Z&end=2026-01-02T20:00:00Z", nil)
	if _, _, err := parseTimeRange(req); err != nil {
		t.Errorf("RFC3339 range rejected: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	start, end, err = parseTimeRange(req)
	if err != nil {
		t.Fatalf("default range: %v", err)
	}
	if got := end.Sub(start); got != 7*24*time.Hour {
		t.Errorf("default range = %v, want 168h", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/?start=bogus", nil)
	if _, _, err := parseTimeRange(req); err == nil {
		t.Error("expected error for bogus start")
	}
}
