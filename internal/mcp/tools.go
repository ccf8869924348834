package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now().UTC()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// defaultDay parses a date tool argument, defaulting to today (UTC).
func defaultDay(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", s)
}

// --- Tool definitions ---

var toolGetNutritionSummary = mcp.NewTool("get_nutrition_summary",
	mcp.WithDescription("Daily nutrition summary: calories and macros consumed vs goals, per-meal breakdown, and the macro calorie split."),
	mcp.WithString("date", mcp.Description("Day to summarize (YYYY-MM-DD). Defaults to today.")),
)

var toolGetWaterIntake = mcp.NewTool("get_water_intake",
	mcp.WithDescription("Total water intake for a day in milliliters, with goal progress."),
	mcp.WithString("date", mcp.Description("Day to summarize (YYYY-MM-DD). Defaults to today.")),
)

var toolGetTrainingCalendar = mcp.NewTool("get_training_calendar",
	mcp.WithDescription("Training events per calendar day over a date range. Days without training are included with a zero count."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetTrainingFrequency = mcp.NewTool("get_training_frequency",
	mcp.WithDescription("How often each body part was trained over a date range. Untrained body parts are included with a zero count."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Completed workout sessions: plan name, duration, and exercises completed."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetStats = mcp.NewTool("get_stats",
	mcp.WithDescription("Overall tracking stats: total meals, water entries, training events, workouts, data range, and workouts per plan."),
)

var toolCompareFrequencyPeriods = mcp.NewTool("compare_frequency_periods",
	mcp.WithDescription("Compare per-body-part training frequency between two time periods (e.g. this week vs last week)."),
	mcp.WithString("period_a_start", mcp.Required(), mcp.Description("Period A start date")),
	mcp.WithString("period_a_end", mcp.Required(), mcp.Description("Period A end date")),
	mcp.WithString("period_b_start", mcp.Required(), mcp.Description("Period B start date")),
	mcp.WithString("period_b_end", mcp.Required(), mcp.Description("Period B end date")),
)

// --- Tool handlers ---

func (h *handlers) getNutritionSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := defaultDay(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	summary, err := h.ds.NutritionSummary(ctx, uid, day)
	if err != nil {
		h.log.Error("mcp get_nutrition_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWaterIntake(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := defaultDay(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	summary, err := h.ds.WaterSummary(ctx, uid, day)
	if err != nil {
		h.log.Error("mcp get_water_intake", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingCalendar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	calendar, err := h.ds.TrainingCalendar(ctx, uid, start, end)
	if err != nil {
		h.log.Error("mcp get_training_calendar", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(calendar)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingFrequency(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	freq, err := h.ds.TrainingFrequency(ctx, uid, start, end)
	if err != nil {
		h.log.Error("mcp get_training_frequency", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(freq)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	workouts, err := h.ds.Workouts(ctx, uid, start, end)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	stats, err := h.ds.Stats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) compareFrequencyPeriods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	aStartStr, err := req.RequireString("period_a_start")
	if err != nil {
		return mcp.NewToolResultError("period_a_start is required"), nil
	}
	aEndStr, err := req.RequireString("period_a_end")
	if err != nil {
		return mcp.NewToolResultError("period_a_end is required"), nil
	}
	bStartStr, err := req.RequireString("period_b_start")
	if err != nil {
		return mcp.NewToolResultError("period_b_start is required"), nil
	}
	bEndStr, err := req.RequireString("period_b_end")
	if err != nil {
		return mcp.NewToolResultError("period_b_end is required"), nil
	}

	aStart, err := parseFlexTime(aStartStr)
	if err != nil {
		return mcp.NewToolResultError("invalid period_a_start: " + err.Error()), nil
	}
	aEnd, err := parseFlexTime(aEndStr)
	if err != nil {
		return mcp.NewToolResultError("invalid period_a_end: " + err.Error()), nil
	}
	bStart, err := parseFlexTime(bStartStr)
	if err != nil {
		return mcp.NewToolResultError("invalid period_b_start: " + err.Error()), nil
	}
	bEnd, err := parseFlexTime(bEndStr)
	if err != nil {
		return mcp.NewToolResultError("invalid period_b_end: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)

	freqA, err := h.ds.TrainingFrequency(ctx, uid, aStart, aEnd)
	if err != nil {
		h.log.Error("mcp compare_frequency_periods A", "error", err)
		return mcp.NewToolResultError("query failed for period A: " + err.Error()), nil
	}

	freqB, err := h.ds.TrainingFrequency(ctx, uid, bStart, bEnd)
	if err != nil {
		h.log.Error("mcp compare_frequency_periods B", "error", err)
		return mcp.NewToolResultError("query failed for period B: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"period_a": freqA,
		"period_b": freqB,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
