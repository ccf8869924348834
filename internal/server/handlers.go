package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meltforce/fitlog/internal/hydration"
	"github.com/meltforce/fitlog/internal/models"
	"github.com/meltforce/fitlog/internal/nutrition"
	"github.com/meltforce/fitlog/internal/progress"
	"github.com/meltforce/fitlog/internal/storage"
)

var mealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, identityFromContext(r))
}

// --- Foods ---

type createFoodRequest struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

func (s *Server) handleQueryFoods(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r)
	foods, err := s.db.QueryFoods(r.Context(), id.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, foods)
}

func (s *Server) handleCreateFood(w http.ResponseWriter, r *http.Request) {
	var req createFoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Calories < 0 || req.Protein < 0 || req.Carbs < 0 || req.Fats < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nutrition values must not be negative"})
		return
	}

	id := identityFromContext(r)
	row := models.FoodRow{
		ID:       uuid.New(),
		UserID:   id.UserID,
		Name:     req.Name,
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fats:     req.Fats,
	}
	inserted, err := s.db.InsertFood(r.Context(), row)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !inserted {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a food with this name already exists"})
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

// --- Meals ---

type createMealRequest struct {
	Type  string            `json:"type"`
	Date  string            `json:"date"`
	Items []mealItemRequest `json:"items"`
}

type mealItemRequest struct {
	FoodID   uuid.UUID `json:"food_id"`
	Servings float64   `json:"servings"`
}

func (s *Server) handleCreateMeal(w http.ResponseWriter, r *http.Request) {
	var req createMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if !mealTypes[req.Type] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown meal type"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a meal needs at least one item"})
		return
	}
	for _, item := range req.Items {
		if item.Servings <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "servings must be greater than zero"})
			return
		}
	}
	day, err := parseDay(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date: " + err.Error()})
		return
	}

	id := identityFromContext(r)
	meal := models.MealRow{ID: uuid.New(), UserID: id.UserID, Type: req.Type, Date: day}
	items := make([]models.MealItemRow, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.MealItemRow{
			ID:       uuid.New(),
			MealID:   meal.ID,
			FoodID:   item.FoodID,
			Servings: item.Servings,
		})
	}

	if err := s.db.InsertMeal(r.Context(), meal, items); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, meal)
}

func (s *Server) handleDeleteMeal(w http.ResponseWriter, r *http.Request) {
	mealID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid meal ID"})
		return
	}

	id := identityFromContext(r)
	deleted, err := s.db.DeleteMeal(r.Context(), mealID, id.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "meal not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQueryMeals(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date: " + err.Error()})
		return
	}

	id := identityFromContext(r)
	meals, err := s.db.QueryMealDetailsForDay(r.Context(), id.UserID, day)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, meals)
}

func (s *Server) handleNutritionSummary(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date: " + err.Error()})
		return
	}

	id := identityFromContext(r)
	goals, err := s.db.GetGoals(r.Context(), id.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	meals, err := s.db.QueryMealsForDay(r.Context(), id.UserID, day)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	summary, err := nutrition.Summarize(meals, nutrition.Goals{
		Calories: goals.CalorieGoal,
		Protein:  goals.ProteinGoal,
		Carbs:    goals.CarbGoal,
		Fats:     goals.FatGoal,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// --- Water ---

type logWaterRequest struct {
	AmountML int        `json:"amount_ml"`
	LoggedAt *time.Time `json:"logged_at,omitempty"`
}

func (s *Server) handleLogWater(w http.ResponseWriter, r *http.Request) {
	var req logWaterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.AmountML <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount_ml must be greater than zero"})
		return
	}
	loggedAt := time.Now().UTC()
	if req.LoggedAt != nil {
		loggedAt = req.LoggedAt.UTC()
	}

	id := identityFromContext(r)
	row := models.WaterEntryRow{
		ID:       uuid.New(),
		UserID:   id.UserID,
		AmountML: req.AmountML,
		LoggedAt: loggedAt,
	}
	if err := s.db.InsertWaterEntry(r.Context(), row); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

type waterSummaryResponse struct {
	Summary hydration.Summary `json:"summary"`
	Entries []hydration.Entry `json:"entries"`
}

func (s *Server) handleWaterSummary(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date: " + err.Error()})
		return
	}

	id := identityFromContext(r)
	goals, err := s.db.GetGoals(r.Context(), id.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	entries, err := s.db.QueryWaterEntriesForDay(r.Context(), id.UserID, day)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	summary, err := hydration.Summarize(entries, day, goals.WaterGoalML)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, waterSummaryResponse{Summary: summary, Entries: entries})
}

// --- Progress ---

type logTrainingEventRequest struct {
	BodyPart string     `json:"body_part"`
	LoggedAt *time.Time `json:"logged_at,omitempty"`
}

func (s *Server) handleLogTrainingEvent(w http.ResponseWriter, r *http.Request) {
	var req logTrainingEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if !progress.BodyPart(req.BodyPart).Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown body part"})
		return
	}
	loggedAt := time.Now().UTC()
	if req.LoggedAt != nil {
		loggedAt = req.LoggedAt.UTC()
	}

	id := identityFromContext(r)
	row := models.TrainingEventRow{
		ID:       uuid.New(),
		UserID:   id.UserID,
		BodyPart: req.BodyPart,
		LoggedAt: loggedAt,
	}
	if err := s.db.InsertTrainingEvent(r.Context(), row); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id := identityFromContext(r)
	events, err := s.db.QueryTrainingEvents(r.Context(), id.UserID, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// end is an exclusive bound; seed days up to the last covered instant.
	writeJSON(w, http.StatusOK, progress.BuildCalendar(events, start, end.Add(-time.Second)))
}

func (s *Server) handleFrequency(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id := identityFromContext(r)
	events, err := s.db.QueryTrainingEvents(r.Context(), id.UserID, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, progress.BuildFrequency(events, progress.BodyParts))
}

// --- Goals ---

func (s *Server) handleGetGoals(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r)
	goals, err := s.db.GetGoals(r.Context(), id.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

type updateGoalsRequest struct {
	CalorieGoal float64 `json:"calorie_goal"`
	ProteinGoal float64 `json:"protein_goal"`
	CarbGoal    float64 `json:"carb_goal"`
	FatGoal     float64 `json:"fat_goal"`
	WaterGoalML int     `json:"water_goal_ml"`
}

func (s *Server) handleUpdateGoals(w http.ResponseWriter, r *http.Request) {
	var req updateGoalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.CalorieGoal <= 0 || req.ProteinGoal <= 0 || req.CarbGoal <= 0 || req.FatGoal <= 0 || req.WaterGoalML <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "all goals must be greater than zero"})
		return
	}

	id := identityFromContext(r)
	goals := models.GoalsRow{
		UserID:      id.UserID,
		CalorieGoal: req.CalorieGoal,
		ProteinGoal: req.ProteinGoal,
		CarbGoal:    req.CarbGoal,
		FatGoal:     req.FatGoal,
		WaterGoalML: req.WaterGoalML,
	}
	if err := s.db.UpsertGoals(r.Context(), goals); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// --- Plans ---

type createPlanRequest struct {
	Name      string                `json:"name"`
	Exercises []planExerciseRequest `json:"exercises"`
}

type planExerciseRequest struct {
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	Reps        int    `json:"reps"`
	DurationSec int    `json:"duration_sec"`
	RestSec     int    `json:"rest_sec"`
}

func (s *Server) handleQueryPlans(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r)
	plans, err := s.db.QueryPlans(r.Context(), id.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if len(req.Exercises) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a plan needs at least one exercise"})
		return
	}

	id := identityFromContext(r)
	plan := models.PlanRow{ID: uuid.New(), UserID: id.UserID, Name: req.Name}
	exercises := make([]models.PlanExerciseRow, 0, len(req.Exercises))
	for i, e := range req.Exercises {
		if e.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "every exercise needs a name"})
			return
		}
		exercises = append(exercises, models.PlanExerciseRow{
			ID:          uuid.New(),
			PlanID:      plan.ID,
			Name:        e.Name,
			Sets:        e.Sets,
			Reps:        e.Reps,
			DurationSec: e.DurationSec,
			RestSec:     e.RestSec,
			Position:    i,
		})
	}

	if err := s.db.InsertPlan(r.Context(), plan, exercises); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, storage.PlanDetail{PlanRow: plan, Exercises: exercises})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	planID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plan ID"})
		return
	}

	id := identityFromContext(r)
	detail, err := s.db.GetPlan(r.Context(), planID, id.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// --- Workout log ---

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id := identityFromContext(r)
	workouts, err := s.db.QueryCompletedWorkouts(r.Context(), id.UserID, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	id := identityFromContext(r)
	workout, err := s.db.GetCompletedWorkout(r.Context(), workoutID, id.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

// --- Stats ---

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r)
	stats, err := s.db.GetDataStats(r.Context(), id.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseDay parses a YYYY-MM-DD value, defaulting to today (UTC).
func parseDay(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", s)
}

// parseTimeRange reads start/end query params, accepting RFC3339 or
// date-only values. Defaults to the last 7 days.
func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		end = time.Now().UTC()
		start = end.AddDate(0, 0, -7)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now().UTC()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
