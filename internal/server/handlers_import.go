package server

import (
	"encoding/json"
	"net/http"

	"github.com/meltforce/fitlog/internal/models"
	"github.com/meltforce/fitlog/internal/progress"
)

// handleImport accepts one export payload and inserts it idempotently.
// The endpoint is API-key authenticated so the importer can run headless;
// the target user is picked by login via the `user` query param.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var payload models.ExportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	for _, m := range payload.Meals {
		if !mealTypes[m.Type] {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown meal type: " + m.Type})
			return
		}
	}
	for _, t := range payload.TrainingEvents {
		if !progress.BodyPart(t.BodyPart).Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown body part: " + t.BodyPart})
			return
		}
	}
	for _, we := range payload.WaterEntries {
		if we.AmountML <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount_ml must be greater than zero"})
			return
		}
	}

	login := r.URL.Query().Get("user")
	if login == "" {
		login = devIdentity.Login
	}
	userID, err := s.db.GetOrCreateUser(r.Context(), login, login)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	result, err := s.db.ImportPayload(r.Context(), userID, payload)
	if err != nil {
		s.log.Error("import failed", "user", login, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("import payload processed", "user", login,
		"foods", result.FoodsInserted, "meals", result.MealsInserted,
		"water", result.WaterInserted, "training_events", result.TrainingEventsInserted)
	writeJSON(w, http.StatusOK, result)
}
