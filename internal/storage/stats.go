package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about all stored data.
type DataStats struct {
	TotalMeals          int64          `json:"total_meals"`
	TotalWaterEntries   int64          `json:"total_water_entries"`
	TotalTrainingEvents int64          `json:"total_training_events"`
	TotalWorkouts       int64          `json:"total_workouts"`
	EarliestData        *time.Time     `json:"earliest_data"`
	LatestData          *time.Time     `json:"latest_data"`
	WorkoutsByPlan      []PlanStat     `json:"workouts_by_plan"`
}

// PlanStat holds summary stats for one workout plan.
type PlanStat struct {
	PlanName      string  `json:"plan_name"`
	Count         int64   `json:"count"`
	TotalDuration float64 `json:"total_duration_sec"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM meals WHERE user_id = $1`, userID,
	).Scan(&stats.TotalMeals)
	if err != nil {
		return nil, fmt.Errorf("counting meals: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM water_entries WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWaterEntries)
	if err != nil {
		return nil, fmt.Errorf("counting water entries: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM training_events WHERE user_id = $1`, userID,
	).Scan(&stats.TotalTrainingEvents)
	if err != nil {
		return nil, fmt.Errorf("counting training events: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM completed_workouts WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	// Date range across the append-only logs.
	err = db.Pool.QueryRow(ctx,
		`SELECT MIN(t), MAX(t) FROM (
			SELECT MIN(logged_at) AS t FROM water_entries WHERE user_id = $1
			UNION ALL
			SELECT MIN(logged_at) FROM training_events WHERE user_id = $1
			UNION ALL
			SELECT MIN(started_at) FROM completed_workouts WHERE user_id = $1
			UNION ALL
			SELECT MAX(logged_at) FROM water_entries WHERE user_id = $1
			UNION ALL
			SELECT MAX(logged_at) FROM training_events WHERE user_id = $1
			UNION ALL
			SELECT MAX(started_at) FROM completed_workouts WHERE user_id = $1
		) sub`, userID,
	).Scan(&stats.EarliestData, &stats.LatestData)
	if err != nil {
		return nil, fmt.Errorf("querying date range: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT plan_name, COUNT(*), COALESCE(SUM(duration_sec), 0)
		 FROM completed_workouts
		 WHERE user_id = $1
		 GROUP BY plan_name
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts by plan: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s PlanStat
		if err := rows.Scan(&s.PlanName, &s.Count, &s.TotalDuration); err != nil {
			return nil, fmt.Errorf("scanning plan stat: %w", err)
		}
		stats.WorkoutsByPlan = append(stats.WorkoutsByPlan, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
