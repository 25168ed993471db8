package ui

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"infinite-experiment/flighttracker/internal/constants"
	"infinite-experiment/flighttracker/internal/logging"
	"infinite-experiment/flighttracker/internal/presenter"
	"infinite-experiment/flighttracker/internal/services"
)

// Tracker is the controller surface the dashboard needs
type Tracker interface {
	RunCycle(ctx context.Context) (*services.CycleResult, error)
	RefreshRate() int
	SetRefreshRate(seconds int) error
}

// ResultStore shares cycle results with the background worker
type ResultStore interface {
	Latest() *services.CycleResult
	Publish(result *services.CycleResult)
}

// UIHandler manages all UI routes
type UIHandler struct {
	tracker Tracker
	results ResultStore
}

// NewUIHandler creates a new UI handler
func NewUIHandler(tracker Tracker, results ResultStore) *UIHandler {
	return &UIHandler{tracker: tracker, results: results}
}

type settingsData struct {
	RefreshRate int
	MinRate     int
	MaxRate     int
	Error       string
}

type flightsData struct {
	RefreshRate        int
	Error              string
	FetchFailed        bool
	FetchFailedMessage string
	View               presenter.View
	ShowMap            bool
	MarkersJSON        string
	UpdatedAt          string
}

type pageData struct {
	Title    string
	Caption  string
	Settings settingsData
	Flights  flightsData
	Map      presenter.MapView
}

// DashboardHandler renders the full page. It reuses the worker's latest cycle when there is one.
func (h *UIHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	result := h.results.Latest()
	var err error
	if result == nil {
		result, err = h.runCycle(r.Context())
	}

	data := pageData{
		Title:    PageTitle,
		Caption:  PageCaption,
		Settings: h.settings(""),
		Flights:  h.flights(result, err),
		Map: presenter.MapView{
			CenterLat: presenter.DefaultCenterLat,
			CenterLon: presenter.DefaultCenterLon,
			Zoom:      presenter.DefaultZoom,
			Clustered: true,
		},
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
	}
	RenderTemplate(w, status, "base", data)
}

// FlightsPartialHandler runs a cycle and renders the flights section for HTMX polling.
// Errors render inside the section with 200 so polling keeps going.
func (h *UIHandler) FlightsPartialHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.runCycle(r.Context())
	RenderTemplate(w, http.StatusOK, "flights", h.flights(result, err))
}

// RefreshRateHandler handles the slider form post and re-renders the control
func (h *UIHandler) RefreshRateHandler(w http.ResponseWriter, r *http.Request) {
	seconds, err := strconv.Atoi(r.FormValue("refresh_rate"))
	if err != nil {
		RenderTemplate(w, http.StatusBadRequest, "refresh-rate", h.settings("Refresh rate must be a whole number of seconds"))
		return
	}

	if err := h.tracker.SetRefreshRate(seconds); err != nil {
		msg := err.Error()
		if errors.Is(err, services.ErrRefreshRateOutOfRange) {
			msg = constants.GetErrorMessage(constants.ErrCodeRefreshRateOutOfRange)
		}
		RenderTemplate(w, http.StatusUnprocessableEntity, "refresh-rate", h.settings(msg))
		return
	}

	logging.Info("Refresh rate updated from dashboard", "refresh_rate_seconds", seconds)

	// ask the flights section to re-arm its polling interval right away
	w.Header().Set("HX-Trigger", "refresh-rate-changed")
	RenderTemplate(w, http.StatusOK, "refresh-rate", h.settings(""))
}

func (h *UIHandler) runCycle(ctx context.Context) (*services.CycleResult, error) {
	result, err := h.tracker.RunCycle(ctx)
	if err != nil {
		return nil, err
	}
	h.results.Publish(result)
	return result, nil
}

func (h *UIHandler) settings(errMsg string) settingsData {
	return settingsData{
		RefreshRate: h.tracker.RefreshRate(),
		MinRate:     constants.MinRefreshRateSeconds,
		MaxRate:     constants.MaxRefreshRateSeconds,
		Error:       errMsg,
	}
}

func (h *UIHandler) flights(result *services.CycleResult, err error) flightsData {
	data := flightsData{
		RefreshRate: h.tracker.RefreshRate(),
		MarkersJSON: "[]",
	}
	if err != nil {
		data.Error = err.Error()
		return data
	}

	data.FetchFailed = result.FetchFailed
	data.FetchFailedMessage = constants.FetchFailedMessage
	data.View = result.View
	data.ShowMap = !result.View.Empty
	data.MarkersJSON = markersJSON(result.View.Map)
	data.UpdatedAt = result.StartedAt.Format(time.RFC1123)
	return data
}
