package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mentormatch/mentormatch/pkg/models"
)

// CreateMentorHandler returns a handler for POST requests to /mentors
func CreateMentorHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request models.CreateMentorRequest
		if err := decodeJSON(r, &request); err != nil {
			renderError(w, models.NewBadRequestError(err.Error()))
			return
		}
		if err := validate.Struct(request); err != nil {
			renderError(w, models.NewBadRequestError(err.Error()))
			return
		}

		mentor, err := appState.MatchStore.Mentors().Create(r.Context(), &request)
		if err != nil {
			renderError(w, err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		if err := encodeJSON(w, mentor); err != nil {
			renderError(w, err)
			return
		}
	}
}

// GetMentorHandler returns a handler for GET requests to /mentors/{mentorId}
func GetMentorHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mentorID := chi.URLParam(r, "mentorId")

		mentor, err := appState.MatchStore.Mentors().Get(r.Context(), mentorID)
		if err != nil {
			renderError(w, err)
			return
		}

		if err := encodeJSON(w, mentor); err != nil {
			renderError(w, err)
			return
		}
	}
}

// UpdateMentorHandler returns a handler for PATCH requests to
// /mentors/{mentorId}. A change to the mentor's research areas clears the
// stored embedding so the next generation pass recomputes it.
func UpdateMentorHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mentorID := chi.URLParam(r, "mentorId")
		var request models.UpdateMentorRequest
		if err := decodeJSON(r, &request); err != nil {
			renderError(w, models.NewBadRequestError(err.Error()))
			return
		}
		request.MentorID = mentorID
		if err := validate.Struct(request); err != nil {
			renderError(w, models.NewBadRequestError(err.Error()))
			return
		}

		mentor, err := appState.MatchStore.Mentors().Update(r.Context(), &request)
		if err != nil {
			renderError(w, err)
			return
		}

		if err := encodeJSON(w, mentor); err != nil {
			renderError(w, err)
			return
		}
	}
}

// ListMentorsHandler returns a handler for GET requests to /mentors
func ListMentorsHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cursor, err := extractQueryStringValueToInt[int64](r, "cursor")
		if err != nil {
			renderError(w, models.NewBadRequestError(err.Error()))
			return
		}
		limit, err := extractQueryStringValueToInt[int](r, "limit")
		if err != nil {
			renderError(w, models.NewBadRequestError(err.Error()))
			return
		}
		if limit <= 0 {
			limit = defaultListLimit
		}

		mentors, err := appState.MatchStore.Mentors().ListAll(r.Context(), cursor, limit)
		if err != nil {
			renderError(w, err)
			return
		}

		if err := encodeJSON(w, mentors); err != nil {
			renderError(w, err)
			return
		}
	}
}
