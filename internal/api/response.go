package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"droneworks/opsdesk/internal/apperrors"
	"droneworks/opsdesk/internal/logging"
)

type errorBody struct {
	Error    string                      `json:"error"`
	Details  []apperrors.FieldError      `json:"details,omitempty"`
	Conflict *apperrors.ScheduleConflict `json:"conflict,omitempty"`
}

func respondWithData(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func respondWithError(w http.ResponseWriter, statusCode int, body errorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// respondWithAppError maps the error taxonomy to status codes:
// validation 400, unauthorized 401, not found 404, conflict 409,
// everything else 500 with the detail kept out of the response.
func respondWithAppError(w http.ResponseWriter, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		respondWithError(w, http.StatusBadRequest, errorBody{
			Error:   "Validation failed",
			Details: verr.Fields,
		})
		return
	}

	var cerr *apperrors.ConflictError
	if errors.As(err, &cerr) {
		respondWithError(w, http.StatusConflict, errorBody{
			Error:    cerr.Message,
			Conflict: cerr.Conflict,
		})
		return
	}

	if errors.Is(err, apperrors.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, errorBody{Error: "Not found"})
		return
	}
	if errors.Is(err, apperrors.ErrUnauthorized) {
		respondWithError(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
		return
	}

	logging.Error("Request failed", "error", err)
	respondWithError(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON body"})
		return false
	}
	return true
}
