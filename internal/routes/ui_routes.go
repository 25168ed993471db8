package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"infinite-experiment/flighttracker/internal/api"
	vizbuUI "infinite-experiment/flighttracker/vizburo/ui"
)

// RegisterUIRoutes registers all UI-related routes
func RegisterUIRoutes(r chi.Router, deps *api.Dependencies) {
	uiHandler := vizbuUI.NewUIHandler(deps.Services.Tracker, deps.Worker)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})

	r.Route("/dashboard", func(dashboard chi.Router) {
		dashboard.Get("/", uiHandler.DashboardHandler)
		dashboard.Get("/flights", uiHandler.FlightsPartialHandler)
		dashboard.Post("/refresh-rate", uiHandler.RefreshRateHandler)
	})
}
