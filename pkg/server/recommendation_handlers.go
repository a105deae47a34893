package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mentormatch/mentormatch/pkg/matcher"
	"github.com/mentormatch/mentormatch/pkg/models"
)

// GetRecommendationsHandler returns a handler for GET requests to
// /students/{studentId}/recommendations. The first call for a student
// generates and persists the result; subsequent calls return the stored
// result unchanged.
func GetRecommendationsHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentId")

		recommendations, err := matcher.GetOrGenerate(r.Context(), appState, studentID)
		if err != nil {
			renderError(w, err)
			return
		}

		if err := encodeJSON(w, recommendations); err != nil {
			renderError(w, err)
			return
		}
	}
}
