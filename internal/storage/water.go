package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/meltforce/fitlog/internal/hydration"
	"github.com/meltforce/fitlog/internal/models"
)

// InsertWaterEntry appends one drink to the user's log.
func (db *DB) InsertWaterEntry(ctx context.Context, row models.WaterEntryRow) error {
	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO water_entries (id, user_id, amount_ml, logged_at)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT DO NOTHING`,
		row.ID, row.UserID, row.AmountML, row.LoggedAt); err != nil {
		return fmt.Errorf("inserting water entry: %w", err)
	}
	return nil
}

// QueryWaterEntriesForDay retrieves the user's drinks for one UTC calendar
// day, oldest first, in the shape the hydration aggregator consumes.
func (db *DB) QueryWaterEntriesForDay(ctx context.Context, userID int, day time.Time) ([]hydration.Entry, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := db.Pool.Query(ctx,
		`SELECT amount_ml, logged_at
		 FROM water_entries
		 WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
		 ORDER BY logged_at ASC`,
		userID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("querying water entries: %w", err)
	}
	defer rows.Close()

	var result []hydration.Entry
	for rows.Next() {
		var e hydration.Entry
		if err := rows.Scan(&e.AmountML, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning water entry: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
