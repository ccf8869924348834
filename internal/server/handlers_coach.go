package server

import (
	"net/http"
	"time"

	"github.com/meltforce/fitlog/internal/coach"
	"github.com/meltforce/fitlog/internal/hydration"
	"github.com/meltforce/fitlog/internal/nutrition"
	"github.com/meltforce/fitlog/internal/progress"
)

// handleCoachDaily assembles the day's tracked data and asks the coach
// for a briefing.
func (s *Server) handleCoachDaily(w http.ResponseWriter, r *http.Request) {
	if s.coach == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "coach is not configured"})
		return
	}

	day, err := parseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date: " + err.Error()})
		return
	}

	id := identityFromContext(r)
	ctx := r.Context()

	goals, err := s.db.GetGoals(ctx, id.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	meals, err := s.db.QueryMealsForDay(ctx, id.UserID, day)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	nutritionSummary, err := nutrition.Summarize(meals, nutrition.Goals{
		Calories: goals.CalorieGoal,
		Protein:  goals.ProteinGoal,
		Carbs:    goals.CarbGoal,
		Fats:     goals.FatGoal,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	entries, err := s.db.QueryWaterEntriesForDay(ctx, id.UserID, day)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	waterSummary, err := hydration.Summarize(entries, day, goals.WaterGoalML)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	weekStart := day.AddDate(0, 0, -6)
	events, err := s.db.QueryTrainingEvents(ctx, id.UserID, weekStart, day.Add(24*time.Hour))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	briefing, err := s.coach.DailyBriefing(ctx, coach.Input{
		Date:      day.Format("2006-01-02"),
		Nutrition: nutritionSummary,
		Water:     waterSummary,
		Frequency: progress.BuildFrequency(events, progress.BodyParts),
	})
	if err != nil {
		s.log.Error("coach briefing failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "coach is unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"date":     day.Format("2006-01-02"),
		"briefing": briefing,
	})
}
