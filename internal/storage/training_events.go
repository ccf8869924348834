package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/meltforce/fitlog/internal/models"
	"github.com/meltforce/fitlog/internal/progress"
)

// InsertTrainingEvent appends one trained-body-part record.
func (db *DB) InsertTrainingEvent(ctx context.Context, row models.TrainingEventRow) error {
	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO training_events (id, user_id, body_part, logged_at)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT DO NOTHING`,
		row.ID, row.UserID, row.BodyPart, row.LoggedAt); err != nil {
		return fmt.Errorf("inserting training event: %w", err)
	}
	return nil
}

// QueryTrainingEvents retrieves the user's events in [start, end), oldest
// first, in the shape the progress aggregator consumes.
func (db *DB) QueryTrainingEvents(ctx context.Context, userID int, start, end time.Time) ([]progress.Event, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT body_part, logged_at
		 FROM training_events
		 WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
		 ORDER BY logged_at ASC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying training events: %w", err)
	}
	defer rows.Close()

	var result []progress.Event
	for rows.Next() {
		var e progress.Event
		if err := rows.Scan(&e.BodyPart, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning training event: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
