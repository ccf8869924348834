package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/meltforce/fitlog/internal/session"
	"github.com/meltforce/fitlog/internal/storage"
)

type startSessionRequest struct {
	PlanID uuid.UUID `json:"plan_id"`
}

type sessionResponse struct {
	Session  session.State `json:"session"`
	Finished bool          `json:"finished,omitempty"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	id := identityFromContext(r)
	plan, err := s.db.GetPlan(r.Context(), req.PlanID, id.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	st, err := s.sessions.Start(r.Context(), id.UserID, plan.ID, plan.Name, plan.SessionExercises())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Session: st})
}

// handleCurrentSession returns the open session, falling back to the
// latest persisted snapshot so a restarted server picks up where the
// user left off.
func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r)
	st, err := s.sessions.Resume(r.Context(), id.UserID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: st})
}

func (s *Server) handleCompleteExercise(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r)
	st, finished, err := s.sessions.CompleteCurrent(r.Context(), id.UserID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: st, Finished: finished})
}

func (s *Server) handleSkipRest(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r)
	st, err := s.sessions.SkipRest(r.Context(), id.UserID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: st})
}

func (s *Server) handleGoToPrevious(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r)
	st, err := s.sessions.GoToPrevious(r.Context(), id.UserID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: st})
}

func (s *Server) handleExitSession(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r)
	if err := s.sessions.Exit(r.Context(), id.UserID); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNoSession):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, session.ErrSessionExists), errors.Is(err, session.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, session.ErrEmptySession):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
