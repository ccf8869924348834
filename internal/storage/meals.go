package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/fitlog/internal/models"
	"github.com/meltforce/fitlog/internal/nutrition"
)

// InsertMeal inserts a meal and its items in one transaction.
func (db *DB) InsertMeal(ctx context.Context, meal models.MealRow, items []models.MealItemRow) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning meal insert: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO meals (id, user_id, meal_type, meal_date) VALUES ($1,$2,$3,$4)`,
		meal.ID, meal.UserID, meal.Type, meal.Date); err != nil {
		return fmt.Errorf("inserting meal: %w", err)
	}

	for _, item := range items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO meal_items (id, meal_id, food_id, servings) VALUES ($1,$2,$3,$4)`,
			item.ID, meal.ID, item.FoodID, item.Servings); err != nil {
			return fmt.Errorf("inserting meal item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing meal insert: %w", err)
	}
	return nil
}

// DeleteMeal removes a meal and (via cascade) its items. Returns true if a
// row was deleted.
func (db *DB) DeleteMeal(ctx context.Context, mealID uuid.UUID, userID int) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM meals WHERE id = $1 AND user_id = $2`, mealID, userID)
	if err != nil {
		return false, fmt.Errorf("deleting meal: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MealDetail is a logged meal with its items resolved to food names.
type MealDetail struct {
	models.MealRow
	Items []MealDetailItem `json:"items"`
}

// MealDetailItem is one serving line of a meal.
type MealDetailItem struct {
	FoodID   uuid.UUID `json:"food_id"`
	FoodName string    `json:"food_name"`
	Servings float64   `json:"servings"`
}

// QueryMealDetailsForDay lists the user's meals for one calendar day with
// their item lines, oldest first.
func (db *DB) QueryMealDetailsForDay(ctx context.Context, userID int, day time.Time) ([]MealDetail, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT m.id, m.meal_type, m.meal_date, mi.food_id, f.name, mi.servings
		 FROM meals m
		 JOIN meal_items mi ON mi.meal_id = m.id
		 JOIN foods f ON f.id = mi.food_id
		 WHERE m.user_id = $1 AND m.meal_date = $2::date
		 ORDER BY m.created_at ASC, mi.created_at ASC`,
		userID, day)
	if err != nil {
		return nil, fmt.Errorf("querying meals: %w", err)
	}
	defer rows.Close()

	mealByID := make(map[uuid.UUID]int)
	meals := []MealDetail{}

	for rows.Next() {
		var (
			meal models.MealRow
			item MealDetailItem
		)
		if err := rows.Scan(&meal.ID, &meal.Type, &meal.Date, &item.FoodID, &item.FoodName, &item.Servings); err != nil {
			return nil, fmt.Errorf("scanning meal item: %w", err)
		}

		idx, ok := mealByID[meal.ID]
		if !ok {
			idx = len(meals)
			mealByID[meal.ID] = idx
			meals = append(meals, MealDetail{MealRow: meal})
		}
		meals[idx].Items = append(meals[idx].Items, item)
	}
	return meals, rows.Err()
}

// QueryMealsForDay loads the user's meals for one calendar day joined with
// their foods, in the shape the nutrition engine consumes.
func (db *DB) QueryMealsForDay(ctx context.Context, userID int, day time.Time) ([]nutrition.Meal, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT m.id, m.meal_type, f.name, f.calories, f.protein, f.carbs, f.fats, mi.servings
		 FROM meals m
		 JOIN meal_items mi ON mi.meal_id = m.id
		 JOIN foods f ON f.id = mi.food_id
		 WHERE m.user_id = $1 AND m.meal_date = $2::date
		 ORDER BY m.created_at ASC, mi.created_at ASC`,
		userID, day)
	if err != nil {
		return nil, fmt.Errorf("querying meals: %w", err)
	}
	defer rows.Close()

	mealByID := make(map[uuid.UUID]int)
	var meals []nutrition.Meal

	for rows.Next() {
		var (
			mealID   uuid.UUID
			mealType string
			food     nutrition.Food
			servings float64
		)
		if err := rows.Scan(&mealID, &mealType, &food.Name, &food.Calories, &food.Protein, &food.Carbs, &food.Fats, &servings); err != nil {
			return nil, fmt.Errorf("scanning meal item: %w", err)
		}

		idx, ok := mealByID[mealID]
		if !ok {
			idx = len(meals)
			mealByID[mealID] = idx
			meals = append(meals, nutrition.Meal{Type: mealType})
		}
		meals[idx].Items = append(meals[idx].Items, nutrition.Serving{Food: food, Servings: servings})
	}
	return meals, rows.Err()
}
