package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"infinite-experiment/flighttracker/internal/api"
	"infinite-experiment/flighttracker/internal/logging"
	"infinite-experiment/flighttracker/internal/middleware"
)

// RegisterRoutes builds the chi router over fully initialized dependencies
func RegisterRoutes(deps *api.Dependencies, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	logging.Info("Router initialized with metrics and logging middleware")

	r.Get("/healthCheck", api.HealthCheckHandler(deps, upSince))

	RegisterUIRoutes(r, deps)

	r.Group(func(apiGroup chi.Router) {
		apiGroup.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.Config.Server.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300, // Maximum value not ignored by any of major browsers
		}))
		RegisterAPIRoutes(apiGroup, api.NewHandlers(deps))
	})

	return r
}
