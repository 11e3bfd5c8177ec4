package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"habitTrackerAPI/internal/identity"
	"habitTrackerAPI/internal/logger"
	"habitTrackerAPI/services"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps service errors to statuses. Anything unexpected
// is logged and answered with fallback.
func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		respondWithError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, services.ErrHabitNotFound):
		respondWithError(w, http.StatusNotFound, "Habit not found")
	case errors.Is(err, identity.ErrUnsupported):
		respondWithError(w, http.StatusNotImplemented, "Not supported by the identity provider")
	default:
		logger.Error(fallback, "error", err)
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}
