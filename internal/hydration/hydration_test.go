package hydration

import (
	"errors"
	"testing"
	"time"
)

var day = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

// TestTotalIntake verifies the plain sum over one day's entries.
func TestTotalIntake(t *testing.T) {
	entries := []Entry{
		{AmountML: 100, LoggedAt: day.Add(8 * time.Hour)},
		{AmountML: 250, LoggedAt: day.Add(12 * time.Hour)},
		{AmountML: 500, LoggedAt: day.Add(19 * time.Hour)},
	}
	if got := TotalIntake(entries, day); got != 850 {
		t.Errorf("total = %d, want 850", got)
	}
}

// TestTotalIntakeDayBoundaries verifies UTC day boundaries: midnight is
// included, the next midnight is not, and other days are excluded.
func TestTotalIntakeDayBoundaries(t *testing.T) {
	entries := []Entry{
		{AmountML: 100, LoggedAt: day},                                        // 00:00:00 inclusive
		{AmountML: 200, LoggedAt: day.Add(24*time.Hour - time.Millisecond)}, // just before next midnight
		{AmountML: 400, LoggedAt: day.Add(24 * time.Hour)},                   // next day, excluded
		{AmountML: 800, LoggedAt: day.Add(-time.Second)},                     // previous day, excluded
	}
	if got := TotalIntake(entries, day); got != 300 {
		t.Errorf("total = %d, want 300", got)
	}
}

// TestTotalIntakeEmpty verifies a zero total when nothing was logged.
func TestTotalIntakeEmpty(t *testing.T) {
	if got := TotalIntake(nil, day); got != 0 {
		t.Errorf("total = %d, want 0", got)
	}
}

// TestPercent verifies rounding, clamping, and the zero-goal failure.
func TestPercent(t *testing.T) {
	cases := []struct {
		total, goal int
		want        int
	}{
		{0, 2000, 0},
		{850, 2000, 43}, // 42.5 rounds up
		{2000, 2000, 100},
		{2600, 2000, 100}, // clamped
	}
	for _, c := range cases {
		got, err := Percent(c.total, c.goal)
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", c.total, c.goal, got, c.want)
		}
	}

	if _, err := Percent(500, 0); !errors.Is(err, ErrZeroGoal) {
		t.Errorf("err = %v, want ErrZeroGoal", err)
	}
}

// TestSummarize verifies the combined display shape.
func TestSummarize(t *testing.T) {
	entries := []Entry{
		{AmountML: 500, LoggedAt: day.Add(9 * time.Hour)},
		{AmountML: 500, LoggedAt: day.Add(15 * time.Hour)},
	}
	s, err := Summarize(entries, day, DefaultGoalML)
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalML != 1000 || s.GoalML != 2000 || s.Percent != 50 {
		t.Errorf("summary = %+v, want 1000/2000 at 50%%", s)
	}
}
