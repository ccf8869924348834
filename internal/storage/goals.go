package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/fitlog/internal/models"
)

// GetGoals returns the user's daily targets, falling back to the defaults
// when nothing is configured yet.
func (db *DB) GetGoals(ctx context.Context, userID int) (models.GoalsRow, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT user_id, calorie_goal, protein_goal, carb_goal, fat_goal, water_goal_ml
		 FROM nutrition_goals
		 WHERE user_id = $1`,
		userID)

	var g models.GoalsRow
	err := row.Scan(&g.UserID, &g.CalorieGoal, &g.ProteinGoal, &g.CarbGoal, &g.FatGoal, &g.WaterGoalML)
	if errors.Is(err, pgx.ErrNoRows) {
		g = models.DefaultGoals
		g.UserID = userID
		return g, nil
	}
	if err != nil {
		return models.GoalsRow{}, fmt.Errorf("querying goals: %w", err)
	}
	return g, nil
}

// UpsertGoals saves the user's daily targets.
func (db *DB) UpsertGoals(ctx context.Context, g models.GoalsRow) error {
	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO nutrition_goals (user_id, calorie_goal, protein_goal, carb_goal, fat_goal, water_goal_ml)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (user_id) DO UPDATE SET
			calorie_goal = $2, protein_goal = $3, carb_goal = $4,
			fat_goal = $5, water_goal_ml = $6, updated_at = NOW()`,
		g.UserID, g.CalorieGoal, g.ProteinGoal, g.CarbGoal, g.FatGoal, g.WaterGoalML); err != nil {
		return fmt.Errorf("upserting goals: %w", err)
	}
	return nil
}
