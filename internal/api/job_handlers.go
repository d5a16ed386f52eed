package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/services"
)

// CreateJobHandler handles POST /api/job
func CreateJobHandler(svc *services.JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.CreateJobRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		dto, err := svc.Create(r.Context(), req)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusCreated, map[string]any{"job": dto})
	}
}

// GetJobHandler handles GET /api/job/{id}
func GetJobHandler(svc *services.JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, map[string]any{"job": dto})
	}
}

// ListJobsHandler handles GET /api/job
func ListJobsHandler(svc *services.JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.List(r.Context(), dtos.JobListParamsFromQuery(r.URL.Query()))
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, page)
	}
}

// UpdateJobHandler handles PATCH /api/job/{id}
func UpdateJobHandler(svc *services.JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.UpdateJobRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		dto, err := svc.Update(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, map[string]any{"job": dto})
	}
}

// DeleteJobHandler handles DELETE /api/job/{id}. 409 while schedules
// still reference the job.
func DeleteJobHandler(svc *services.JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondWithAppError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
