package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/services"
)

// CreateDroneHandler handles POST /api/drone
func CreateDroneHandler(svc *services.DroneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.CreateDroneRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		dto, err := svc.Create(r.Context(), req)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusCreated, map[string]any{"drone": dto})
	}
}

// GetDroneHandler handles GET /api/drone/{id}
func GetDroneHandler(svc *services.DroneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, map[string]any{"drone": dto})
	}
}

// ListDronesHandler handles GET /api/drone
func ListDronesHandler(svc *services.DroneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.List(r.Context(), dtos.DroneListParamsFromQuery(r.URL.Query()))
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, page)
	}
}

// UpdateDroneHandler handles PATCH /api/drone/{id}
func UpdateDroneHandler(svc *services.DroneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.UpdateDroneRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		dto, err := svc.Update(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, map[string]any{"drone": dto})
	}
}

// DeleteDroneHandler handles DELETE /api/drone/{id}. 409 while
// schedules still reference the drone.
func DeleteDroneHandler(svc *services.DroneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondWithAppError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
