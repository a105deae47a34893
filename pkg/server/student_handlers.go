package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mentormatch/mentormatch/internal"
	"github.com/mentormatch/mentormatch/pkg/models"
)

var log = internal.GetLogger()

var validate = validator.New()

const defaultListLimit = 100

// CreateStudentHandler returns a handler for POST requests to /students
func CreateStudentHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request models.CreateStudentRequest
		if err := decodeJSON(r, &request); err != nil {
			renderError(w, models.NewBadRequestError(err.Error()))
			return
		}
		if err := validate.Struct(request); err != nil {
			renderError(w, models.NewBadRequestError(err.Error()))
			return
		}

		student, err := appState.MatchStore.Students().Create(r.Context(), &request)
		if err != nil {
			renderError(w, err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		if err := encodeJSON(w, student); err != nil {
			renderError(w, err)
			return
		}
	}
}

// GetStudentHandler returns a handler for GET requests to /students/{studentId}
func GetStudentHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentId")

		student, err := appState.MatchStore.Students().Get(r.Context(), studentID)
		if err != nil {
			renderError(w, err)
			return
		}

		if err := encodeJSON(w, student); err != nil {
			renderError(w, err)
			return
		}
	}
}

// UpdateStudentHandler returns a handler for PATCH requests to
// /students/{studentId}
func UpdateStudentHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentId")
		var request models.UpdateStudentRequest
		if err := decodeJSON(r, &request); err != nil {
			renderError(w, models.NewBadRequestError(err.Error()))
			return
		}
		request.StudentID = studentID
		if err := validate.Struct(request); err != nil {
			renderError(w, models.NewBadRequestError(err.Error()))
			return
		}

		student, err := appState.MatchStore.Students().Update(r.Context(), &request)
		if err != nil {
			renderError(w, err)
			return
		}

		if err := encodeJSON(w, student); err != nil {
			renderError(w, err)
			return
		}
	}
}

// ListStudentsHandler returns a handler for GET requests to /students
func ListStudentsHandler(appState *models.AppState) http.HandlerFunc {
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

		students, err := appState.MatchStore.Students().ListAll(r.Context(), cursor, limit)
		if err != nil {
			renderError(w, err)
			return
		}

		if err := encodeJSON(w, students); err != nil {
			renderError(w, err)
			return
		}
	}
}
