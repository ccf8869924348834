// Package models holds row types shared between storage, the HTTP layer,
// and the importer.
package models

import (
	"time"

	"github.com/google/uuid"
)

// FoodRow is a row in the foods table. Nutrition values are per serving.
type FoodRow struct {
	ID       uuid.UUID `json:"id"`
	UserID   int       `json:"-"`
	Name     string    `json:"name"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein"`
	Carbs    float64   `json:"carbs"`
	Fats     float64   `json:"fats"`
}

// MealRow is a row in the meals table: one logged meal on one day.
type MealRow struct {
	ID     uuid.UUID `json:"id"`
	UserID int       `json:"-"`
	Type   string    `json:"type"`
	Date   time.Time `json:"date"`
}

// MealItemRow links a meal to a food with a serving multiplier.
type MealItemRow struct {
	ID       uuid.UUID `json:"id"`
	MealID   uuid.UUID `json:"meal_id"`
	FoodID   uuid.UUID `json:"food_id"`
	Servings float64   `json:"servings"`
}

// WaterEntryRow is one logged drink, in milliliters.
type WaterEntryRow struct {
	ID       uuid.UUID `json:"id"`
	UserID   int       `json:"-"`
	AmountML int       `json:"amount_ml"`
	LoggedAt time.Time `json:"logged_at"`
}

// TrainingEventRow is one "trained body part" record.
type TrainingEventRow struct {
	ID       uuid.UUID `json:"id"`
	UserID   int       `json:"-"`
	BodyPart string    `json:"body_part"`
	LoggedAt time.Time `json:"logged_at"`
}

// PlanRow is a workout plan header.
type PlanRow struct {
	ID        uuid.UUID `json:"id"`
	UserID    int       `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PlanExerciseRow is one ordered exercise of a plan.
type PlanExerciseRow struct {
	ID          uuid.UUID `json:"id"`
	PlanID      uuid.UUID `json:"plan_id"`
	Name        string    `json:"name"`
	Sets        int       `json:"sets"`
	Reps        int       `json:"reps"`
	DurationSec int       `json:"duration_sec,omitempty"`
	RestSec     int       `json:"rest_sec,omitempty"`
	Position    int       `json:"position"`
}

// GoalsRow holds a user's daily targets. Gram goals drive the nutrition
// summary; the water goal is milliliters.
type GoalsRow struct {
	UserID      int     `json:"-"`
	CalorieGoal float64 `json:"calorie_goal"`
	ProteinGoal float64 `json:"protein_goal"`
	CarbGoal    float64 `json:"carb_goal"`
	FatGoal     float64 `json:"fat_goal"`
	WaterGoalML int     `json:"water_goal_ml"`
}

// DefaultGoals applies until the user saves their own targets. All values
// are positive so percentage math never divides by zero.
var DefaultGoals = GoalsRow{
	CalorieGoal: 2000,
	ProteinGoal: 150,
	CarbGoal:    250,
	FatGoal:     70,
	WaterGoalML: 2000,
}

// CompletedWorkoutRow is one finished session in the workout log.
type CompletedWorkoutRow struct {
	ID                 uuid.UUID `json:"id"`
	UserID             int       `json:"-"`
	PlanID             uuid.UUID `json:"plan_id"`
	PlanName           string    `json:"plan_name"`
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at"`
	DurationSec        int       `json:"duration_sec"`
	ExercisesCompleted int       `json:"exercises_completed"`
}
