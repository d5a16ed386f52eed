package api

import (
	"net/http"

	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/services"
)

// StatisticsOverviewHandler handles GET /api/statistics/overview
func StatisticsOverviewHandler(svc *services.StatsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		out, err := svc.Overview(r.Context(), dtos.StatisticsParams{From: q.Get("from"), To: q.Get("to")})
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, out)
	}
}

// StatisticsJobsHandler handles GET /api/statistics/jobs
func StatisticsJobsHandler(svc *services.StatsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Jobs(r.Context())
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, out)
	}
}

// StatisticsDronesHandler handles GET /api/statistics/drones
func StatisticsDronesHandler(svc *services.StatsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Drones(r.Context())
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, out)
	}
}
