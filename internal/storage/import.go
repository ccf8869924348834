package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meltforce/fitlog/internal/models"
)

// ImportPayload inserts an export payload for the user, skipping rows the
// database already has. Everything happens in one transaction so a failed
// file leaves no partial data behind.
func (db *DB) ImportPayload(ctx context.Context, userID int, p models.ExportPayload) (models.ImportResult, error) {
	var res models.ImportResult

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback(ctx)

	// Foods first, so meal items can reference them. A food may already
	// exist under a different ID (same name), so map exported IDs to the
	// canonical ones.
	foodIDs := make(map[uuid.UUID]uuid.UUID, len(p.Foods))
	for _, f := range p.Foods {
		tag, err := tx.Exec(ctx,
			`INSERT INTO foods (id, user_id, name, calories, protein, carbs, fats)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)
			 ON CONFLICT DO NOTHING`,
			f.ID, userID, f.Name, f.Calories, f.Protein, f.Carbs, f.Fats)
		if err != nil {
			return res, fmt.Errorf("importing food %q: %w", f.Name, err)
		}
		if tag.RowsAffected() > 0 {
			res.FoodsInserted++
		} else {
			res.FoodsDuplicated++
		}

		var canonical uuid.UUID
		if err := tx.QueryRow(ctx,
			`SELECT id FROM foods WHERE user_id = $1 AND name = $2`,
			userID, f.Name).Scan(&canonical); err != nil {
			return res, fmt.Errorf("resolving food %q: %w", f.Name, err)
		}
		foodIDs[f.ID] = canonical
	}

	for _, m := range p.Meals {
		tag, err := tx.Exec(ctx,
			`INSERT INTO meals (id, user_id, meal_type, meal_date)
			 VALUES ($1,$2,$3,$4)
			 ON CONFLICT (id) DO NOTHING`,
			m.ID, userID, m.Type, m.Date)
		if err != nil {
			return res, fmt.Errorf("importing meal %s: %w", m.ID, err)
		}
		if tag.RowsAffected() == 0 {
			res.MealsDuplicated++
			continue
		}
		res.MealsInserted++

		for _, item := range m.Items {
			foodID, ok := foodIDs[item.FoodID]
			if !ok {
				// Not in this payload; assume it already exists server-side.
				foodID = item.FoodID
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO meal_items (id, meal_id, food_id, servings) VALUES ($1,$2,$3,$4)`,
				uuid.New(), m.ID, foodID, item.Servings); err != nil {
				return res, fmt.Errorf("importing item of meal %s: %w", m.ID, err)
			}
		}
	}

	for _, w := range p.WaterEntries {
		tag, err := tx.Exec(ctx,
			`INSERT INTO water_entries (id, user_id, amount_ml, logged_at)
			 VALUES ($1,$2,$3,$4)
			 ON CONFLICT (id) DO NOTHING`,
			w.ID, userID, w.AmountML, w.LoggedAt)
		if err != nil {
			return res, fmt.Errorf("importing water entry %s: %w", w.ID, err)
		}
		if tag.RowsAffected() > 0 {
			res.WaterInserted++
		} else {
			res.WaterDuplicated++
		}
	}

	for _, t := range p.TrainingEvents {
		tag, err := tx.Exec(ctx,
			`INSERT INTO training_events (id, user_id, body_part, logged_at)
			 VALUES ($1,$2,$3,$4)
			 ON CONFLICT (id) DO NOTHING`,
			t.ID, userID, t.BodyPart, t.LoggedAt)
		if err != nil {
			return res, fmt.Errorf("importing training event %s: %w", t.ID, err)
		}
		if tag.RowsAffected() > 0 {
			res.TrainingEventsInserted++
		} else {
			res.TrainingEventsDuped++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("committing import: %w", err)
	}
	return res, nil
}
