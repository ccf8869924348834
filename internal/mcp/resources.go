package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) dailySummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	nutritionSummary, err := h.ds.NutritionSummary(ctx, uid, today)
	if err != nil {
		return nil, err
	}

	waterSummary, err := h.ds.WaterSummary(ctx, uid, today)
	if err != nil {
		h.log.Warn("daily_summary: water query failed", "error", err)
	}

	freq, err := h.ds.TrainingFrequency(ctx, uid, today.AddDate(0, 0, -6), today.AddDate(0, 0, 1))
	if err != nil {
		h.log.Warn("daily_summary: frequency query failed", "error", err)
	}

	summary := map[string]any{
		"date":               today.Format("2006-01-02"),
		"nutrition":          nutritionSummary,
		"water":              waterSummary,
		"training_frequency": freq,
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -14)

	workouts, err := h.ds.Workouts(ctx, uid, start, end)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(workouts)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
