package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"infinite-experiment/flighttracker/internal/constants"
	reqctx "infinite-experiment/flighttracker/internal/context"
	"infinite-experiment/flighttracker/internal/logging"
	"infinite-experiment/flighttracker/internal/schedule"
	"infinite-experiment/flighttracker/internal/services"
)

// maxImportBytes caps uploaded schedule files
const maxImportBytes = 10 << 20

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// SettingsResponse is the body of GET /api/v1/settings
type SettingsResponse struct {
	RefreshRateSeconds int                 `json:"refresh_rate_seconds"`
	MinRefreshRate     int                 `json:"min_refresh_rate_seconds"`
	MaxRefreshRate     int                 `json:"max_refresh_rate_seconds"`
	SnapshotTTLSeconds int                 `json:"snapshot_ttl_seconds"`
	Schedule           schedule.Status     `json:"schedule"`
	Feed               services.FeedStatus `json:"feed"`
}

type refreshRateRequest struct {
	RefreshRateSeconds *int `json:"refresh_rate_seconds"`
}

// ImportResponse reports how many rows a schedule import stored
type ImportResponse struct {
	Imported int             `json:"imported"`
	Schedule schedule.Status `json:"schedule"`
}

// FlightsHandler handles GET /api/v1/flights.
// Runs a fresh cycle unless ?latest=true and the background worker already has one.
// ?refresh=true drops the cached snapshot first.
func (h *Handlers) FlightsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("refresh") == "true" {
			h.deps.Services.Feed.Invalidate()
		} else if r.URL.Query().Get("latest") == "true" {
			if latest := h.deps.Worker.Latest(); latest != nil {
				respondWithSuccess(w, http.StatusOK, latest)
				return
			}
		}

		result, err := h.deps.Services.Tracker.RunCycle(r.Context())
		if err != nil {
			h.respondWithScheduleError(w, r, err)
			return
		}
		h.deps.Worker.Publish(result)

		respondWithSuccess(w, http.StatusOK, result)
	}
}

// GetSettingsHandler handles GET /api/v1/settings
func (h *Handlers) GetSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithSuccess(w, http.StatusOK, h.settings())
	}
}

// UpdateRefreshRateHandler handles PUT /api/v1/settings/refresh-rate
func (h *Handlers) UpdateRefreshRateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshRateSeconds == nil {
			respondWithError(w, http.StatusBadRequest, "Body must be JSON with an integer refresh_rate_seconds")
			return
		}

		if err := h.deps.Services.Tracker.SetRefreshRate(*req.RefreshRateSeconds); err != nil {
			if errors.Is(err, services.ErrRefreshRateOutOfRange) {
				respondWithErrorCode(w, http.StatusUnprocessableEntity,
					constants.ErrCodeRefreshRateOutOfRange,
					constants.GetErrorMessage(constants.ErrCodeRefreshRateOutOfRange))
				return
			}
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		logging.Info("Refresh rate updated", "refresh_rate_seconds", *req.RefreshRateSeconds)
		respondWithSuccess(w, http.StatusOK, h.settings())
	}
}

// ReloadScheduleHandler handles POST /api/v1/schedule/reload.
// A failed reload keeps serving the previous schedule.
func (h *Handlers) ReloadScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := h.deps.Services.Schedule

		if _, err := store.Reload(r.Context()); err != nil {
			h.respondWithScheduleError(w, r, err)
			return
		}

		status := store.Status()
		respondWithSuccess(w, http.StatusOK, &status)
	}
}

// ImportScheduleHandler handles POST /api/v1/schedule/import.
// Accepts a multipart "file" field or a raw text/csv body.
func (h *Handlers) ImportScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		importer := h.deps.Services.Importer
		if importer == nil {
			respondWithErrorCode(w, http.StatusConflict,
				constants.ErrCodeImportUnsupported,
				constants.GetErrorMessage(constants.ErrCodeImportUnsupported))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

		var body io.Reader = r.Body
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			file, _, err := r.FormFile("file")
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "Missing multipart field \"file\"")
				return
			}
			defer file.Close()
			body = file
		}

		imported, err := importer.ImportCSV(r.Context(), body)
		if err != nil {
			var dle *schedule.DataLoadError
			if errors.As(err, &dle) {
				respondWithErrorCode(w, http.StatusBadRequest, dle.Code, dle.Error())
				return
			}
			logging.Error("Schedule import failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to store schedule")
			return
		}

		store := h.deps.Services.Schedule
		if _, err := store.Reload(r.Context()); err != nil {
			h.respondWithScheduleError(w, r, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &ImportResponse{
			Imported: imported,
			Schedule: store.Status(),
		})
	}
}

func (h *Handlers) settings() *SettingsResponse {
	return &SettingsResponse{
		RefreshRateSeconds: h.deps.Services.Tracker.RefreshRate(),
		MinRefreshRate:     constants.MinRefreshRateSeconds,
		MaxRefreshRate:     constants.MaxRefreshRateSeconds,
		SnapshotTTLSeconds: int(h.deps.Config.OpenSky.SnapshotTTL.Seconds()),
		Schedule:           h.deps.Services.Schedule.Status(),
		Feed:               h.deps.Services.Feed.Status(),
	}
}

func (h *Handlers) respondWithScheduleError(w http.ResponseWriter, r *http.Request, err error) {
	logging.WithRequest(reqctx.GetRequestID(r.Context()), r.URL.Path).Errorw("Schedule unavailable", "error", err)

	var dle *schedule.DataLoadError
	if errors.As(err, &dle) {
		respondWithErrorCode(w, http.StatusInternalServerError, dle.Code, dle.Error())
		return
	}
	respondWithError(w, http.StatusInternalServerError, err.Error())
}
