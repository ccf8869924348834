package mcp

import (
	"context"
	"time"

	"github.com/meltforce/fitlog/internal/hydration"
	"github.com/meltforce/fitlog/internal/models"
	"github.com/meltforce/fitlog/internal/nutrition"
	"github.com/meltforce/fitlog/internal/progress"
	"github.com/meltforce/fitlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. DBSource (local
// Postgres) and HTTPClient (remote via REST API) both satisfy it.
type DataSource interface {
	NutritionSummary(ctx context.Context, userID int, day time.Time) (*nutrition.Summary, error)
	WaterSummary(ctx context.Context, userID int, day time.Time) (hydration.Summary, error)
	TrainingCalendar(ctx context.Context, userID int, start, end time.Time) (map[string]int, error)
	TrainingFrequency(ctx context.Context, userID int, start, end time.Time) ([]progress.Frequency, error)
	Workouts(ctx context.Context, userID int, start, end time.Time) ([]models.CompletedWorkoutRow, error)
	Stats(ctx context.Context, userID int) (*storage.DataStats, error)
}

// DBSource implements DataSource straight off the database, composing the
// storage queries with the domain calculators.
type DBSource struct {
	db *storage.DB
}

var _ DataSource = (*DBSource)(nil)

// NewDBSource wraps a database handle as a DataSource.
func NewDBSource(db *storage.DB) *DBSource {
	return &DBSource{db: db}
}

func (s *DBSource) NutritionSummary(ctx context.Context, userID int, day time.Time) (*nutrition.Summary, error) {
	goals, err := s.db.GetGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	meals, err := s.db.QueryMealsForDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	return nutrition.Summarize(meals, nutrition.Goals{
		Calories: goals.CalorieGoal,
		Protein:  goals.ProteinGoal,
		Carbs:    goals.CarbGoal,
		Fats:     goals.FatGoal,
	})
}

func (s *DBSource) WaterSummary(ctx context.Context, userID int, day time.Time) (hydration.Summary, error) {
	goals, err := s.db.GetGoals(ctx, userID)
	if err != nil {
		return hydration.Summary{}, err
	}
	entries, err := s.db.QueryWaterEntriesForDay(ctx, userID, day)
	if err != nil {
		return hydration.Summary{}, err
	}
	return hydration.Summarize(entries, day, goals.WaterGoalML)
}

func (s *DBSource) TrainingCalendar(ctx context.Context, userID int, start, end time.Time) (map[string]int, error) {
	events, err := s.db.QueryTrainingEvents(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return progress.BuildCalendar(events, start, end), nil
}

func (s *DBSource) TrainingFrequency(ctx context.Context, userID int, start, end time.Time) ([]progress.Frequency, error) {
	events, err := s.db.QueryTrainingEvents(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return progress.BuildFrequency(events, progress.BodyParts), nil
}

func (s *DBSource) Workouts(ctx context.Context, userID int, start, end time.Time) ([]models.CompletedWorkoutRow, error) {
	return s.db.QueryCompletedWorkouts(ctx, userID, start, end)
}

func (s *DBSource) Stats(ctx context.Context, userID int) (*storage.DataStats, error) {
	return s.db.GetDataStats(ctx, userID)
}
