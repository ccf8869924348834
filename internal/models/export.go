package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportPayload is the wire shape of a FitLog export file. The importer
// POSTs one of these per file to /api/v1/import.
type ExportPayload struct {
	Foods          []ExportFood          `json:"foods,omitempty"`
	Meals          []ExportMeal          `json:"meals,omitempty"`
	WaterEntries   []ExportWaterEntry    `json:"water_entries,omitempty"`
	TrainingEvents []ExportTrainingEvent `json:"training_events,omitempty"`
}

// ExportFood carries a food definition. IDs are preserved so meal items
// in the same payload can reference them.
type ExportFood struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein"`
	Carbs    float64   `json:"carbs"`
	Fats     float64   `json:"fats"`
}

type ExportMeal struct {
	ID    uuid.UUID        `json:"id"`
	Type  string           `json:"type"`
	Date  time.Time        `json:"date"`
	Items []ExportMealItem `json:"items"`
}

type ExportMealItem struct {
	FoodID   uuid.UUID `json:"food_id"`
	Servings float64   `json:"servings"`
}

type ExportWaterEntry struct {
	ID       uuid.UUID `json:"id"`
	AmountML int       `json:"amount_ml"`
	LoggedAt time.Time `json:"logged_at"`
}

type ExportTrainingEvent struct {
	ID       uuid.UUID `json:"id"`
	BodyPart string    `json:"body_part"`
	LoggedAt time.Time `json:"logged_at"`
}

// ImportResult counts what a single import payload produced. Duplicates
// are rows the database already had.
type ImportResult struct {
	FoodsInserted          int `json:"foods_inserted"`
	FoodsDuplicated        int `json:"foods_duplicated"`
	MealsInserted          int `json:"meals_inserted"`
	MealsDuplicated        int `json:"meals_duplicated"`
	WaterInserted          int `json:"water_inserted"`
	WaterDuplicated        int `json:"water_duplicated"`
	TrainingEventsInserted int `json:"training_events_inserted"`
	TrainingEventsDuped    int `json:"training_events_duplicated"`
}

// Add accumulates another result into this one.
func (r *ImportResult) Add(other ImportResult) {
	r.FoodsInserted += other.FoodsInserted
	r.FoodsDuplicated += other.FoodsDuplicated
	r.MealsInserted += other.MealsInserted
	r.MealsDuplicated += other.MealsDuplicated
	r.WaterInserted += other.WaterInserted
	r.WaterDuplicated += other.WaterDuplicated
	r.TrainingEventsInserted += other.TrainingEventsInserted
	r.TrainingEventsDuped += other.TrainingEventsDuped
}
