package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mentormatch/mentormatch/pkg/models"
)

// APIError represents an error response body.
type APIError struct {
	Message string `json:"message"`
}

// extractQueryStringValueToInt extracts a query string value and converts it
// to an int if it is not empty. If the value is empty, it returns 0.
func extractQueryStringValueToInt[T ~int | int64](
	r *http.Request,
	param string,
) (T, error) {
	p := r.URL.Query().Get(param)
	if p == "" {
		return 0, nil
	}
	pInt, err := strconv.ParseInt(p, 10, 64)
	if err != nil {
		return 0, err
	}
	return T(pInt), nil
}

// encodeJSON encodes data into JSON and writes it to the response writer.
func encodeJSON(w http.ResponseWriter, data interface{}) error {
	return json.NewEncoder(w).Encode(data)
}

// decodeJSON decodes a JSON request body into the provided data struct.
func decodeJSON(r *http.Request, data interface{}) error {
	return json.NewDecoder(r.Body).Decode(&data)
}

// renderError renders an APIError response body with the status implied by
// the error's place in the taxonomy.
func renderError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status != http.StatusNotFound {
		// Don't log not found errors
		log.Error(err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := encodeJSON(w, APIError{Message: err.Error()}); encodeErr != nil {
		log.Error(encodeErr)
	}
}

// statusForError maps domain errors onto HTTP statuses. Unclassified errors
// are internal.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrBadRequest),
		errors.Is(err, models.ErrInsufficientProfileData):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNoCapacityAvailable):
		return http.StatusConflict
	case errors.Is(err, models.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
