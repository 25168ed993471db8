package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"

	"infinite-experiment/flighttracker/internal/common"
	"infinite-experiment/flighttracker/internal/constants"
	"infinite-experiment/flighttracker/internal/logging"
	"infinite-experiment/flighttracker/internal/metrics"
	"infinite-experiment/flighttracker/internal/models/dtos"
	"infinite-experiment/flighttracker/internal/providers"
)

const (
	snapshotCacheKey  = string(constants.CachePrefixStateSnapshot) + "ALL"
	snapshotCacheName = "state_snapshot"
)

// FeedStatus summarizes the snapshot cache for health output
type FeedStatus struct {
	Cached    bool      `json:"cached"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// StateFeedService fronts the state provider with a TTL cache.
// Fetch never returns an error: failures are logged and reported as a nil snapshot.
type StateFeedService struct {
	provider providers.StateProvider
	cache    common.CacheInterface
	ttl      time.Duration
	metrics  *metrics.MetricsRegistry
	now      func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	lastErr error
}

func NewStateFeedService(
	provider providers.StateProvider,
	cache common.CacheInterface,
	ttl time.Duration,
	m *metrics.MetricsRegistry,
) *StateFeedService {
	return &StateFeedService{
		provider: provider,
		cache:    cache,
		ttl:      ttl,
		metrics:  m,
		now:      time.Now,
	}
}

// SetClock replaces the time source used for TTL checks
func (s *StateFeedService) SetClock(now func() time.Time) {
	s.now = now
}

// Fetch returns a snapshot no older than the TTL, calling upstream at most once per window.
// Returns nil when the upstream call fails.
func (s *StateFeedService) Fetch(ctx context.Context) *dtos.StateSnapshot {
	if entry, ok := s.cached(); ok {
		s.observeCache(true)
		return entry.Snapshot
	}
	s.observeCache(false)

	v, err, _ := s.group.Do(snapshotCacheKey, func() (interface{}, error) {
		// another caller may have refreshed while we waited
		if entry, ok := s.cached(); ok {
			return entry.Snapshot, nil
		}
		// the result is shared by every waiter, so one caller going away must not cancel it;
		// the provider's client timeout still bounds the call
		return s.fetchAndStore(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil
	}
	return v.(*dtos.StateSnapshot)
}

// Invalidate drops the cached snapshot so the next Fetch goes upstream
func (s *StateFeedService) Invalidate() {
	s.cache.Delete(snapshotCacheKey)
}

func (s *StateFeedService) Status() FeedStatus {
	status := FeedStatus{}
	if entry, ok := s.cached(); ok {
		status.Cached = true
		status.FetchedAt = time.Unix(0, entry.FetchedAt).UTC()
	}

	s.mu.Lock()
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	s.mu.Unlock()
	return status
}

func (s *StateFeedService) fetchAndStore(ctx context.Context) (*dtos.StateSnapshot, error) {
	start := time.Now()
	snapshot, statusCode, err := s.provider.FetchStates(ctx)
	if s.metrics != nil {
		s.metrics.FeedFetchDuration.Observe(time.Since(start).Seconds())
	}

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		code := constants.ErrCodeFetchFailed
		var pErr *providers.ProviderError
		if errors.As(err, &pErr) {
			code = pErr.Code
		}
		if s.metrics != nil {
			s.metrics.FeedFetchesTotal.WithLabelValues(code).Inc()
		}
		logging.Warn("FetchFailure: OpenSky states unavailable",
			"code", code,
			"status", statusCode,
			"error", err,
		)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.FeedFetchesTotal.WithLabelValues("ok").Inc()
	}

	entry := dtos.CachedSnapshot{Snapshot: snapshot, FetchedAt: s.now().UnixNano()}
	encoded, err := msgpack.Marshal(&entry)
	if err != nil {
		// still serve the fresh payload, just without caching it
		logging.Warn("Failed to encode state snapshot", "error", err)
		return snapshot, nil
	}
	s.cache.Set(snapshotCacheKey, encoded, s.ttl)

	logging.Debug("State snapshot refreshed", "states", len(snapshot.States), "time", snapshot.Time)
	return snapshot, nil
}

// cached returns the stored entry if it is still inside the TTL window
func (s *StateFeedService) cached() (*dtos.CachedSnapshot, bool) {
	raw, ok := s.cache.Get(snapshotCacheKey)
	if !ok {
		return nil, false
	}

	var entry dtos.CachedSnapshot
	if err := msgpack.Unmarshal(raw, &entry); err != nil {
		logging.Warn("Discarding undecodable state snapshot", "error", err)
		s.cache.Delete(snapshotCacheKey)
		return nil, false
	}

	if s.now().Sub(time.Unix(0, entry.FetchedAt)) >= s.ttl {
		return nil, false
	}
	return &entry, true
}

func (s *StateFeedService) observeCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHitsTotal.WithLabelValues(snapshotCacheName).Inc()
	} else {
		s.metrics.CacheMissesTotal.WithLabelValues(snapshotCacheName).Inc()
	}
}
