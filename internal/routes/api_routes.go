package routes

import (
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"infinite-experiment/flighttracker/internal/api"
	"infinite-experiment/flighttracker/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers) {
	limiter := middleware.NewRateLimiter(rate.Limit(1), 5) // 1 request/sec, burst up to 5

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(limiter.Middleware)

		v1.Get("/flights", handlers.FlightsHandler())

		v1.Get("/settings", handlers.GetSettingsHandler())
		v1.Put("/settings/refresh-rate", handlers.UpdateRefreshRateHandler())

		v1.Post("/schedule/reload", handlers.ReloadScheduleHandler())
		v1.Post("/schedule/import", handlers.ImportScheduleHandler())
	})
}
