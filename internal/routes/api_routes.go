package routes

import (
	"github.com/go-chi/chi/v5"

	"droneworks/opsdesk/internal/api"
	"droneworks/opsdesk/internal/middleware"
)

// RegisterAPIRoutes registers everything under /api. The auth endpoints
// are public; the rest sits behind the access-token middleware.
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies) {
	svc := deps.Service

	r.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Route("/auth", func(authRouter chi.Router) {
			authRouter.Post("/register", api.RegisterHandler(svc.Auth, deps.Config))
			authRouter.Post("/login", api.LoginHandler(svc.Auth, deps.Config))
			authRouter.Post("/refresh", api.RefreshHandler(svc.Auth, deps.Config))
			authRouter.Post("/logout", api.LogoutHandler(svc.Auth))

			authRouter.Group(func(me chi.Router) {
				me.Use(middleware.AuthMiddleware(deps.Issuer))
				me.Get("/me", api.MeHandler(svc.Auth))
			})
		})

		apiRouter.Group(func(protected chi.Router) {
			protected.Use(middleware.AuthMiddleware(deps.Issuer))

			// The historical route segment is "schduale"; the dashboard
			// client depends on the spelling.
			protected.Route("/schduale", func(s chi.Router) {
				s.Get("/", api.ListSchedulesHandler(svc.Schedule))
				s.Post("/", api.CreateScheduleHandler(svc.Schedule))
				s.Get("/{id}", api.GetScheduleHandler(svc.Schedule))
				s.Patch("/{id}", api.UpdateScheduleHandler(svc.Schedule))
				s.Delete("/{id}", api.DeleteScheduleHandler(svc.Schedule))
			})

			protected.Get("/availability", api.AvailabilityHandler(svc.Schedule))
			protected.Get("/pilots", api.ListPilotsHandler(svc.Auth))

			protected.Route("/job", func(j chi.Router) {
				j.Get("/", api.ListJobsHandler(svc.Job))
				j.Post("/", api.CreateJobHandler(svc.Job))
				j.Get("/{id}", api.GetJobHandler(svc.Job))
				j.Patch("/{id}", api.UpdateJobHandler(svc.Job))
				j.Delete("/{id}", api.DeleteJobHandler(svc.Job))
				j.Get("/{id}/schduale", api.ListJobSchedulesHandler(svc.Schedule))
			})

			protected.Route("/drone", func(d chi.Router) {
				d.Get("/", api.ListDronesHandler(svc.Drone))
				d.Post("/", api.CreateDroneHandler(svc.Drone))
				d.Get("/{id}", api.GetDroneHandler(svc.Drone))
				d.Patch("/{id}", api.UpdateDroneHandler(svc.Drone))
				d.Delete("/{id}", api.DeleteDroneHandler(svc.Drone))
			})

			protected.Route("/site", func(s chi.Router) {
				s.Get("/", api.ListSitesHandler(svc.Site))
				s.Post("/", api.CreateSiteHandler(svc.Site))
				s.Get("/{id}", api.GetSiteHandler(svc.Site))
				s.Put("/{id}", api.UpdateSiteHandler(svc.Site))
				s.Delete("/{id}", api.DeleteSiteHandler(svc.Site))
			})

			protected.Route("/statistics", func(s chi.Router) {
				s.Get("/overview", api.StatisticsOverviewHandler(svc.Stats))
				s.Get("/jobs", api.StatisticsJobsHandler(svc.Stats))
				s.Get("/drones", api.StatisticsDronesHandler(svc.Stats))
			})
		})
	})
}
