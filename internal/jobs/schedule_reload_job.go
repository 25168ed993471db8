package jobs

import (
	"context"
	"errors"
	"time"

	"infinite-experiment/flighttracker/internal/logging"
	"infinite-experiment/flighttracker/internal/metrics"
	"infinite-experiment/flighttracker/internal/schedule"
	"infinite-experiment/flighttracker/internal/tracking"
)

// ScheduleReloader is satisfied by *schedule.Store
type ScheduleReloader interface {
	Reload(ctx context.Context) (tracking.CallsignSet, error)
}

// ScheduleReloadJob periodically re-reads the timetable so edits to the CSV or
// table are picked up without a restart
type ScheduleReloadJob struct {
	store   ScheduleReloader
	metrics *metrics.MetricsRegistry
}

func NewScheduleReloadJob(store ScheduleReloader, m *metrics.MetricsRegistry) *ScheduleReloadJob {
	return &ScheduleReloadJob{store: store, metrics: m}
}

// Run performs one reload
func (j *ScheduleReloadJob) Run(ctx context.Context) error {
	start := time.Now()

	set, err := j.store.Reload(ctx)
	if err != nil {
		var dle *schedule.DataLoadError
		if errors.As(err, &dle) {
			logging.Warn("Scheduled schedule reload failed, keeping previous schedule",
				"code", dle.Code,
				"source", dle.Source,
				"error", err,
			)
		}
		return err
	}

	if j.metrics != nil {
		j.metrics.ScheduleCallsigns.Set(float64(set.Len()))
	}
	logging.Debug("Schedule reload complete", "callsigns", set.Len(), "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// RunScheduled reloads every interval until ctx is done. A non-positive interval disables the job.
func (j *ScheduleReloadJob) RunScheduled(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}

	logging.Info("Schedule reload job started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				logging.Error("Error in scheduled schedule reload", "error", err)
			}
		case <-ctx.Done():
			logging.Info("Schedule reload job shutting down")
			return nil
		}
	}
}
