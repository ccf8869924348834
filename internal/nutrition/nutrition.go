// Package nutrition folds logged meals into daily consumed/goal/remaining
// totals and macro percentage displays.
package nutrition

import (
	"errors"
	"math"
	"strings"
)

// Calories per gram of each macronutrient. Used only for the
// percentage-of-calories display, never for gram-based goal tracking.
const (
	CaloriesPerGramProtein = 4
	CaloriesPerGramCarbs   = 4
	CaloriesPerGramFats    = 9
)

// ErrZeroGoal is returned when a goal denominator is zero. Configuration
// defaults guarantee positive goals, so hitting this means bad input, and
// failing beats silently producing Inf.
var ErrZeroGoal = errors.New("nutrition: goal must be greater than zero")

// Food holds per-serving nutrition values.
type Food struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// Serving links a food to a meal with a serving multiplier.
type Serving struct {
	Food     Food    `json:"food"`
	Servings float64 `json:"servings"`
}

// Meal is one logged meal: a type (breakfast, lunch, ...) and its servings.
type Meal struct {
	Type  string    `json:"type"`
	Items []Serving `json:"items"`
}

// Goals holds the user's daily gram/calorie targets.
type Goals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// Progress is one tracked value against its goal.
type Progress struct {
	Consumed  float64 `json:"consumed"`
	Goal      float64 `json:"goal"`
	Remaining float64 `json:"remaining"`
	Percent   int     `json:"percent"`
}

// MealSummary is the per-meal display line: type, a comma-joined label of
// its foods, and total calories. The label is informational only.
type MealSummary struct {
	Type     string  `json:"type"`
	Label    string  `json:"label"`
	Calories float64 `json:"calories"`
}

// MacroSplit is the share of macro-derived calories contributed by each
// macronutrient, for the donut chart.
type MacroSplit struct {
	ProteinPct int `json:"protein_pct"`
	CarbsPct   int `json:"carbs_pct"`
	FatsPct    int `json:"fats_pct"`
}

// Summary is a full single-day nutrition summary.
type Summary struct {
	Calories Progress      `json:"calories"`
	Protein  Progress      `json:"protein"`
	Carbs    Progress      `json:"carbs"`
	Fats     Progress      `json:"fats"`
	Meals    []MealSummary `json:"meals"`
	Split    MacroSplit    `json:"macro_split"`
}

// Summarize reduces a day's meals into a Summary against the given goals.
// Totals are plain sums, so the result is independent of meal order. All
// goals must be positive.
func Summarize(meals []Meal, goals Goals) (*Summary, error) {
	var calories, protein, carbs, fats float64
	mealSummaries := make([]MealSummary, 0, len(meals))

	for _, meal := range meals {
		var mealCalories float64
		names := make([]string, 0, len(meal.Items))

		for _, item := range meal.Items {
			calories += item.Food.Calories * item.Servings
			protein += item.Food.Protein * item.Servings
			carbs += item.Food.Carbs * item.Servings
			fats += item.Food.Fats * item.Servings

			mealCalories += item.Food.Calories * item.Servings
			names = append(names, item.Food.Name)
		}

		mealSummaries = append(mealSummaries, MealSummary{
			Type:     meal.Type,
			Label:    strings.Join(names, ", "),
			Calories: mealCalories,
		})
	}

	s := &Summary{Meals: mealSummaries, Split: macroSplit(protein, carbs, fats)}

	var err error
	if s.Calories, err = progress(calories, goals.Calories); err != nil {
		return nil, err
	}
	if s.Protein, err = progress(protein, goals.Protein); err != nil {
		return nil, err
	}
	if s.Carbs, err = progress(carbs, goals.Carbs); err != nil {
		return nil, err
	}
	if s.Fats, err = progress(fats, goals.Fats); err != nil {
		return nil, err
	}
	return s, nil
}

// GoalPercent returns consumed as a percentage of goal, rounded and clamped
// to [0, 100]. A zero goal fails with ErrZeroGoal.
func GoalPercent(consumed, goal float64) (int, error) {
	if goal == 0 {
		return 0, ErrZeroGoal
	}
	pct := int(math.Round(consumed / goal * 100))
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct, nil
}

func progress(consumed, goal float64) (Progress, error) {
	pct, err := GoalPercent(consumed, goal)
	if err != nil {
		return Progress{}, err
	}
	return Progress{
		Consumed:  consumed,
		Goal:      goal,
		Remaining: math.Max(0, goal-consumed),
		Percent:   pct,
	}, nil
}

// macroSplit converts consumed grams into each macro's share of
// macro-derived calories using the fixed 4/4/9 factors.
func macroSplit(protein, carbs, fats float64) MacroSplit {
	proteinCal := protein * CaloriesPerGramProtein
	carbsCal := carbs * CaloriesPerGramCarbs
	fatsCal := fats * CaloriesPerGramFats

	total := proteinCal + carbsCal + fatsCal
	if total == 0 {
		return MacroSplit{}
	}
	return MacroSplit{
		ProteinPct: int(math.Round(proteinCal / total * 100)),
		CarbsPct:   int(math.Round(carbsCal / total * 100)),
		FatsPct:    int(math.Round(fatsCal / total * 100)),
	}
}
