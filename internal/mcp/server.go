package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FitLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FitLog fitness tracking server. Query nutrition summaries, water intake, training frequency, and workout history. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetNutritionSummary, Handler: h.getNutritionSummary},
		server.ServerTool{Tool: toolGetWaterIntake, Handler: h.getWaterIntake},
		server.ServerTool{Tool: toolGetTrainingCalendar, Handler: h.getTrainingCalendar},
		server.ServerTool{Tool: toolGetTrainingFrequency, Handler: h.getTrainingFrequency},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetStats, Handler: h.getStats},
		server.ServerTool{Tool: toolCompareFrequencyPeriods, Handler: h.compareFrequencyPeriods},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resDailySummary, Handler: h.dailySummary},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resDailySummary = mcp.NewResource(
	"fitlog://daily_summary",
	"Daily Summary",
	mcp.WithResourceDescription("Today's nutrition and hydration progress plus training frequency for the trailing week"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"fitlog://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Completed workouts from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)
