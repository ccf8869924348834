package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/fitlog/internal/models"
	"github.com/meltforce/fitlog/internal/session"
)

// ErrNotFound is returned when a requested row does not exist for the user.
var ErrNotFound = errors.New("storage: not found")

// PlanDetail is a plan with its ordered exercises.
type PlanDetail struct {
	models.PlanRow
	Exercises []models.PlanExerciseRow `json:"exercises"`
}

// InsertPlan inserts a plan and its exercises in one transaction.
func (db *DB) InsertPlan(ctx context.Context, plan models.PlanRow, exercises []models.PlanExerciseRow) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning plan insert: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO workout_plans (id, user_id, name) VALUES ($1,$2,$3)`,
		plan.ID, plan.UserID, plan.Name); err != nil {
		return fmt.Errorf("inserting plan: %w", err)
	}

	for _, e := range exercises {
		if _, err := tx.Exec(ctx,
			`INSERT INTO plan_exercises (id, plan_id, name, sets, reps, duration_sec, rest_sec, position)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			e.ID, plan.ID, e.Name, e.Sets, e.Reps, e.DurationSec, e.RestSec, e.Position); err != nil {
			return fmt.Errorf("inserting plan exercise: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing plan insert: %w", err)
	}
	return nil
}

// QueryPlans retrieves the user's plan headers, newest first.
func (db *DB) QueryPlans(ctx context.Context, userID int) ([]models.PlanRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, created_at
		 FROM workout_plans
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	var result []models.PlanRow
	for rows.Next() {
		var p models.PlanRow
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// GetPlan retrieves a single plan with its exercises ordered by position.
func (db *DB) GetPlan(ctx context.Context, planID uuid.UUID, userID int) (*PlanDetail, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, created_at
		 FROM workout_plans
		 WHERE id = $1 AND user_id = $2`,
		planID, userID)

	var p models.PlanRow
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying plan: %w", err)
	}

	detail := &PlanDetail{PlanRow: p}

	exRows, err := db.Pool.Query(ctx,
		`SELECT id, plan_id, name, sets, reps, duration_sec, rest_sec, position
		 FROM plan_exercises
		 WHERE plan_id = $1
		 ORDER BY position ASC`,
		planID)
	if err != nil {
		return nil, fmt.Errorf("querying plan exercises: %w", err)
	}
	defer exRows.Close()

	for exRows.Next() {
		var e models.PlanExerciseRow
		if err := exRows.Scan(&e.ID, &e.PlanID, &e.Name, &e.Sets, &e.Reps, &e.DurationSec, &e.RestSec, &e.Position); err != nil {
			return nil, fmt.Errorf("scanning plan exercise: %w", err)
		}
		detail.Exercises = append(detail.Exercises, e)
	}
	return detail, exRows.Err()
}

// SessionExercises converts a plan's exercises into the session machine's
// input shape.
func (p *PlanDetail) SessionExercises() []session.Exercise {
	result := make([]session.Exercise, 0, len(p.Exercises))
	for _, e := range p.Exercises {
		result = append(result, session.Exercise{
			Name:        e.Name,
			Sets:        e.Sets,
			Reps:        e.Reps,
			DurationSec: e.DurationSec,
			RestSec:     e.RestSec,
			Order:       e.Position,
		})
	}
	return result
}
