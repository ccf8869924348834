package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/fitlog/internal/models"
)

// InsertFood inserts a food row. Returns true if inserted, false if a food
// with the same name already exists for the user.
func (db *DB) InsertFood(ctx context.Context, row models.FoodRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO foods (id, user_id, name, calories, protein, carbs, fats)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (user_id, name) DO NOTHING`,
		row.ID, row.UserID, row.Name, row.Calories, row.Protein, row.Carbs, row.Fats)
	if err != nil {
		return false, fmt.Errorf("inserting food: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// QueryFoods retrieves the user's food catalog sorted by name.
func (db *DB) QueryFoods(ctx context.Context, userID int) ([]models.FoodRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, calories, protein, carbs, fats
		 FROM foods
		 WHERE user_id = $1
		 ORDER BY name ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying foods: %w", err)
	}
	defer rows.Close()

	var result []models.FoodRow
	for rows.Next() {
		var f models.FoodRow
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Calories, &f.Protein, &f.Carbs, &f.Fats); err != nil {
			return nil, fmt.Errorf("scanning food: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}
