package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"tailscale.com/client/local"

	"github.com/meltforce/fitlog/internal/coach"
	"github.com/meltforce/fitlog/internal/session"
	"github.com/meltforce/fitlog/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	sessions *session.Manager
	coach    coach.Service
	log      *slog.Logger
	apiKey   string
	ts       *local.Client
	router   chi.Router
}

// New creates a new Server with all routes configured. coachSvc may be nil
// when the coach is disabled.
func New(db *storage.DB, sessions *session.Manager, coachSvc coach.Service, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		sessions: sessions,
		coach:    coachSvc,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale switches identity resolution to Tailscale whois lookups.
func (s *Server) SetTailscale(lc *local.Client) {
	s.ts = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Bulk import (API key required)
	s.router.Route("/api/v1/import", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleImport)
	})

	// Interactive API (identity resolved per request)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.ResolveIdentity)

		r.Get("/me", s.handleMe)

		r.Get("/plans", s.handleQueryPlans)
		r.Post("/plans", s.handleCreatePlan)
		r.Get("/plans/{id}", s.handleGetPlan)

		r.Post("/sessions", s.handleStartSession)
		r.Get("/sessions/current", s.handleCurrentSession)
		r.Post("/sessions/current/complete", s.handleCompleteExercise)
		r.Post("/sessions/current/skip-rest", s.handleSkipRest)
		r.Post("/sessions/current/previous", s.handleGoToPrevious)
		r.Post("/sessions/current/exit", s.handleExitSession)

		r.Get("/workouts", s.handleQueryWorkouts)
		r.Get("/workouts/{id}", s.handleGetWorkout)

		r.Get("/foods", s.handleQueryFoods)
		r.Post("/foods", s.handleCreateFood)

		r.Get("/meals", s.handleQueryMeals)
		r.Post("/meals", s.handleCreateMeal)
		r.Delete("/meals/{id}", s.handleDeleteMeal)
		r.Get("/nutrition/summary", s.handleNutritionSummary)

		r.Get("/water", s.handleWaterSummary)
		r.Post("/water", s.handleLogWater)

		r.Post("/training-events", s.handleLogTrainingEvent)
		r.Get("/progress/calendar", s.handleCalendar)
		r.Get("/progress/frequency", s.handleFrequency)

		r.Get("/goals", s.handleGetGoals)
		r.Put("/goals", s.handleUpdateGoals)

		r.Get("/coach/daily", s.handleCoachDaily)
		r.Get("/stats", s.handleStats)
	})
}
