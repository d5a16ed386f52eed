package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/services"
)

// CreateScheduleHandler handles POST /api/schduale
func CreateScheduleHandler(svc *services.ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.CreateScheduleRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		dto, err := svc.Create(r.Context(), req)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusCreated, map[string]any{"schduale": dto})
	}
}

// GetScheduleHandler handles GET /api/schduale/{id}
func GetScheduleHandler(svc *services.ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, map[string]any{"schduale": dto})
	}
}

// ListSchedulesHandler handles GET /api/schduale
func ListSchedulesHandler(svc *services.ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.List(r.Context(), dtos.ScheduleListParamsFromQuery(r.URL.Query()))
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, page)
	}
}

// UpdateScheduleHandler handles PATCH /api/schduale/{id}
func UpdateScheduleHandler(svc *services.ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.UpdateScheduleRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		dto, err := svc.Update(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, map[string]any{"schduale": dto})
	}
}

// DeleteScheduleHandler handles DELETE /api/schduale/{id}
func DeleteScheduleHandler(svc *services.ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondWithAppError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListJobSchedulesHandler handles GET /api/job/{id}/schduale
func ListJobSchedulesHandler(svc *services.ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByJob(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, items)
	}
}

// AvailabilityHandler handles GET /api/availability
func AvailabilityHandler(svc *services.ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		snap, err := svc.Availability(r.Context(), q.Get("startAt"), q.Get("endAt"))
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, snap)
	}
}
