// Package hydration totals daily water intake. Amounts are integer
// milliliters everywhere; converting to liters is a presentation concern.
package hydration

import (
	"errors"
	"math"
	"time"
)

// DefaultGoalML is the daily water goal applied before the user configures
// their own.
const DefaultGoalML = 2000

// ErrZeroGoal is returned when the goal denominator is zero.
var ErrZeroGoal = errors.New("hydration: goal must be greater than zero")

// Entry is one logged drink.
type Entry struct {
	AmountML int       `json:"amount_ml"`
	LoggedAt time.Time `json:"logged_at"`
}

// Summary is the daily hydration display shape.
type Summary struct {
	TotalML int `json:"total_ml"`
	GoalML  int `json:"goal_ml"`
	Percent int `json:"percent"`
}

// TotalIntake sums entries logged on the given UTC calendar day, bounded
// [00:00:00, 24:00:00).
func TotalIntake(entries []Entry, day time.Time) int {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	total := 0
	for _, e := range entries {
		at := e.LoggedAt.UTC()
		if !at.Before(dayStart) && at.Before(dayEnd) {
			total += e.AmountML
		}
	}
	return total
}

// Percent returns total as a percentage of goal, rounded and clamped to
// [0, 100]. A zero goal fails with ErrZeroGoal.
func Percent(totalML, goalML int) (int, error) {
	if goalML == 0 {
		return 0, ErrZeroGoal
	}
	pct := int(math.Round(float64(totalML) / float64(goalML) * 100))
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct, nil
}

// Summarize folds a day's entries into the display summary.
func Summarize(entries []Entry, day time.Time, goalML int) (Summary, error) {
	total := TotalIntake(entries, day)
	pct, err := Percent(total, goalML)
	if err != nil {
		return Summary{}, err
	}
	return Summary{TotalML: total, GoalML: goalML, Percent: pct}, nil
}
