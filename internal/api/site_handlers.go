package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/services"
)

// CreateSiteHandler handles POST /api/site
func CreateSiteHandler(svc *services.SiteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.SiteRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		dto, err := svc.Create(r.Context(), req)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusCreated, map[string]any{"site": dto})
	}
}

// GetSiteHandler handles GET /api/site/{id}
func GetSiteHandler(svc *services.SiteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, map[string]any{"site": dto})
	}
}

// ListSitesHandler handles GET /api/site
func ListSitesHandler(svc *services.SiteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.List(r.Context(), dtos.SiteListParamsFromQuery(r.URL.Query()))
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, page)
	}
}

// UpdateSiteHandler handles PUT /api/site/{id}. The site form submits
// the full profile.
func UpdateSiteHandler(svc *services.SiteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.SiteRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		dto, err := svc.Update(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, map[string]any{"site": dto})
	}
}

// DeleteSiteHandler handles DELETE /api/site/{id}. 409 while jobs
// still reference the site.
func DeleteSiteHandler(svc *services.SiteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondWithAppError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
