package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"infinite-experiment/flighttracker/internal/models/entities"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusDown     = "down"
)

// HealthCheckHandler handles GET /healthCheck.
// Optional backends only appear when configured. A failing feed is degraded, not down.
func HealthCheckHandler(deps *Dependencies, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		services := make(map[string]entities.ServiceStatus)

		sched := deps.Services.Schedule.Status()
		if sched.Loaded {
			services["schedule"] = entities.ServiceStatus{
				Status:  statusOK,
				Details: fmt.Sprintf("%d callsigns from %s", sched.Count, sched.Source),
			}
		} else {
			services["schedule"] = entities.ServiceStatus{
				Status:  statusDown,
				Details: "Schedule not loaded from " + sched.Source,
			}
		}

		feed := deps.Services.Feed.Status()
		switch {
		case feed.LastError != "":
			services["opensky"] = entities.ServiceStatus{Status: statusDegraded, Details: feed.LastError}
		case feed.Cached:
			services["opensky"] = entities.ServiceStatus{
				Status:  statusOK,
				Details: "Snapshot cached at " + feed.FetchedAt.Format(time.RFC3339),
			}
		default:
			services["opensky"] = entities.ServiceStatus{Status: statusOK, Details: "No snapshot cached"}
		}

		cacheName := "cache"
		if deps.Conn.Redis != nil {
			cacheName = "redis"
		}
		services[cacheName] = pingStatus(deps.Services.Cache.Ping(ctx), "Cache reachable")

		if deps.Conn.SQL != nil {
			services["postgres"] = pingStatus(deps.Conn.SQL.PingContext(ctx), "Postgres Connected")
		} else if deps.Conn.ORM != nil {
			if sqlDB, err := deps.Conn.ORM.DB(); err != nil {
				services["database"] = pingStatus(err, "")
			} else {
				services["database"] = pingStatus(sqlDB.PingContext(ctx), "Database Connected")
			}
		}

		overallStatus := statusOK
		for _, svc := range services {
			if svc.Status == statusDown {
				overallStatus = statusDown
				break
			}
		}

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince.UTC(),
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}

		w.Header().Set("Content-Type", "application/json")
		if overallStatus != statusOK {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func pingStatus(err error, okDetails string) entities.ServiceStatus {
	if err != nil {
		return entities.ServiceStatus{Status: statusDown, Details: err.Error()}
	}
	return entities.ServiceStatus{Status: statusOK, Details: okDetails}
}
