package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/fitlog/internal/models"
	"github.com/meltforce/fitlog/internal/session"
)

// Compile-time check: *DB satisfies the session manager's store.
var _ session.Store = (*DB)(nil)

// SaveSessionSnapshot upserts the user's in-progress session state. One
// snapshot per user: starting a new session overwrites the old one.
func (db *DB) SaveSessionSnapshot(ctx context.Context, userID int, st session.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding session snapshot: %w", err)
	}

	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO session_snapshots (user_id, state, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET state = $2, updated_at = NOW()`,
		userID, payload); err != nil {
		return fmt.Errorf("saving session snapshot: %w", err)
	}
	return nil
}

// LoadSessionSnapshot returns the user's persisted session state, or nil if
// none exists.
func (db *DB) LoadSessionSnapshot(ctx context.Context, userID int) (*session.State, error) {
	var payload []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT state FROM session_snapshots WHERE user_id = $1`, userID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session snapshot: %w", err)
	}

	var st session.State
	if err := json.Unmarshal(payload, &st); err != nil {
		return nil, fmt.Errorf("decoding session snapshot: %w", err)
	}
	return &st, nil
}

// DeleteSessionSnapshot removes the user's persisted session state.
func (db *DB) DeleteSessionSnapshot(ctx context.Context, userID int) error {
	if _, err := db.Pool.Exec(ctx,
		`DELETE FROM session_snapshots WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("deleting session snapshot: %w", err)
	}
	return nil
}

// InsertCompletedWorkout logs a finished session.
func (db *DB) InsertCompletedWorkout(ctx context.Context, c session.Completion) error {
	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO completed_workouts
		 (id, user_id, plan_id, plan_name, started_at, finished_at, duration_sec, exercises_completed)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT DO NOTHING`,
		c.SessionID, c.UserID, c.PlanID, c.PlanName, c.StartedAt, c.FinishedAt,
		c.DurationSec, c.ExercisesCompleted); err != nil {
		return fmt.Errorf("inserting completed workout: %w", err)
	}
	return nil
}

// QueryCompletedWorkouts retrieves the user's workout log in a time range,
// newest first.
func (db *DB) QueryCompletedWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.CompletedWorkoutRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, plan_id, plan_name, started_at, finished_at, duration_sec, exercises_completed
		 FROM completed_workouts
		 WHERE user_id = $1 AND started_at >= $2 AND started_at < $3
		 ORDER BY started_at DESC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying completed workouts: %w", err)
	}
	defer rows.Close()

	var result []models.CompletedWorkoutRow
	for rows.Next() {
		var w models.CompletedWorkoutRow
		if err := rows.Scan(&w.ID, &w.UserID, &w.PlanID, &w.PlanName, &w.StartedAt,
			&w.FinishedAt, &w.DurationSec, &w.ExercisesCompleted); err != nil {
			return nil, fmt.Errorf("scanning completed workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// GetCompletedWorkout retrieves one workout log entry.
func (db *DB) GetCompletedWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.CompletedWorkoutRow, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, plan_id, plan_name, started_at, finished_at, duration_sec, exercises_completed
		 FROM completed_workouts
		 WHERE id = $1 AND user_id = $2`,
		id, userID)

	var w models.CompletedWorkoutRow
	err := row.Scan(&w.ID, &w.UserID, &w.PlanID, &w.PlanName, &w.StartedAt,
		&w.FinishedAt, &w.DurationSec, &w.ExercisesCompleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying completed workout: %w", err)
	}
	return &w, nil
}
