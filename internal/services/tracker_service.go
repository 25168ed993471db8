package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"infinite-experiment/flighttracker/internal/constants"
	"infinite-experiment/flighttracker/internal/logging"
	"infinite-experiment/flighttracker/internal/metrics"
	"infinite-experiment/flighttracker/internal/models/dtos"
	"infinite-experiment/flighttracker/internal/presenter"
	"infinite-experiment/flighttracker/internal/tracking"
)

var ErrRefreshRateOutOfRange = errors.New("refresh rate out of range")

// CallsignLoader yields the scheduled callsigns; satisfied by *schedule.Store
type CallsignLoader interface {
	Load(ctx context.Context) (tracking.CallsignSet, error)
}

// SnapshotFetcher yields the latest states or nil; satisfied by *StateFeedService
type SnapshotFetcher interface {
	Fetch(ctx context.Context) *dtos.StateSnapshot
}

// CycleResult is everything one refresh cycle produced
type CycleResult struct {
	ID          string                   `json:"cycle_id"`
	StartedAt   time.Time                `json:"started_at"`
	Duration    time.Duration            `json:"duration"`
	FetchFailed bool                     `json:"fetch_failed"`
	Flights     []tracking.TrackedFlight `json:"flights"`
	View        presenter.View           `json:"view"`

	Total         int `json:"state_vectors"`
	BlankCallsign int `json:"blank_callsign"`
	Unscheduled   int `json:"unscheduled"`
	Malformed     int `json:"malformed"`
}

// TrackerService runs the load, fetch, correlate and present pipeline.
// Cycles are serialized; the refresh rate can change at any time.
type TrackerService struct {
	schedule CallsignLoader
	feed     SnapshotFetcher
	metrics  *metrics.MetricsRegistry

	cycleMu     sync.Mutex
	refreshRate atomic.Int32
}

func NewTrackerService(schedule CallsignLoader, feed SnapshotFetcher, m *metrics.MetricsRegistry, refreshRate int) *TrackerService {
	svc := &TrackerService{
		schedule: schedule,
		feed:     feed,
		metrics:  m,
	}
	if err := svc.SetRefreshRate(refreshRate); err != nil {
		logging.Warn("Refresh rate out of range, using default",
			"requested", refreshRate,
			"default", constants.DefaultRefreshRateSeconds,
		)
		_ = svc.SetRefreshRate(constants.DefaultRefreshRateSeconds)
	}
	return svc
}

// RunCycle executes one pipeline pass. A schedule load failure aborts the cycle
// and is returned; a feed failure yields an empty result with FetchFailed set.
func (s *TrackerService) RunCycle(ctx context.Context) (*CycleResult, error) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	result := &CycleResult{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	log := logging.WithCycle(result.ID)

	known, err := s.schedule.Load(ctx)
	if err != nil {
		s.observeCycle("schedule_error", result.StartedAt)
		log.Errorw("Schedule unavailable, aborting cycle", "error", err)
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ScheduleCallsigns.Set(float64(known.Len()))
	}

	snapshot := s.feed.Fetch(ctx)
	result.FetchFailed = snapshot == nil

	correlation := tracking.Correlate(snapshot, known)
	result.Flights = correlation.Flights
	result.Total = correlation.Total
	result.BlankCallsign = correlation.BlankCallsign
	result.Unscheduled = correlation.Unscheduled
	result.Malformed = correlation.Malformed

	if correlation.Malformed > 0 {
		log.Warnw("Skipped malformed state vectors",
			"count", correlation.Malformed,
			"samples", correlation.MalformedSamples,
		)
	}

	result.View = presenter.Present(result.Flights)
	result.Duration = time.Since(result.StartedAt)

	outcome := "ok"
	if result.FetchFailed {
		outcome = "fetch_failed"
	}
	if s.metrics != nil {
		s.metrics.FlightsTracked.Set(float64(len(result.Flights)))
		s.metrics.StateVectorsSkipped.WithLabelValues(string(tracking.SkipBlankCallsign)).Add(float64(result.BlankCallsign))
		s.metrics.StateVectorsSkipped.WithLabelValues(string(tracking.SkipUnscheduled)).Add(float64(result.Unscheduled))
		s.metrics.StateVectorsSkipped.WithLabelValues(string(tracking.SkipMalformed)).Add(float64(result.Malformed))
	}
	s.observeCycle(outcome, result.StartedAt)

	log.Debugw("Cycle complete",
		"state_vectors", result.Total,
		"tracked", len(result.Flights),
		"fetch_failed", result.FetchFailed,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// RefreshRate returns the polling interval in seconds
func (s *TrackerService) RefreshRate() int {
	return int(s.refreshRate.Load())
}

// SetRefreshRate accepts whole seconds within the configured bounds
func (s *TrackerService) SetRefreshRate(seconds int) error {
	if seconds < constants.MinRefreshRateSeconds || seconds > constants.MaxRefreshRateSeconds {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrRefreshRateOutOfRange,
			seconds, constants.MinRefreshRateSeconds, constants.MaxRefreshRateSeconds)
	}
	s.refreshRate.Store(int32(seconds))
	if s.metrics != nil {
		s.metrics.RefreshRateSeconds.Set(float64(seconds))
	}
	return nil
}

func (s *TrackerService) observeCycle(outcome string, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.CyclesTotal.WithLabelValues(outcome).Inc()
	s.metrics.CycleDuration.Observe(time.Since(started).Seconds())
}
