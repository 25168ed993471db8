package schedule

import (
	"context"
	"sync"
	"time"

	"infinite-experiment/flighttracker/internal/logging"
	"infinite-experiment/flighttracker/internal/tracking"
)

// Status describes the memoized schedule for health output
type Status struct {
	Source   string    `json:"source"`
	Loaded   bool      `json:"loaded"`
	Count    int       `json:"callsigns"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
}

// Store memoizes the callsign set derived from a Source.
// The set is read once and reused until Invalidate; failed loads are not remembered.
type Store struct {
	source Source

	mu       sync.Mutex
	loaded   bool
	set      tracking.CallsignSet
	loadedAt time.Time
}

func NewStore(source Source) *Store {
	return &Store{source: source}
}

// Load returns the memoized callsign set, reading the source on first use.
// The set is shared by every caller and offers lookups only.
func (s *Store) Load(ctx context.Context) (tracking.CallsignSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.set, nil
	}
	return s.readLocked(ctx)
}

// Reload re-reads the source. On failure the previous set stays in place and the error is returned.
func (s *Store) Reload(ctx context.Context) (tracking.CallsignSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readLocked(ctx)
}

func (s *Store) readLocked(ctx context.Context) (tracking.CallsignSet, error) {
	entries, err := s.source.Entries(ctx)
	if err != nil {
		return tracking.CallsignSet{}, err
	}

	callsigns := make([]string, 0, len(entries))
	for _, e := range entries {
		callsigns = append(callsigns, e.Callsign())
	}

	s.set = tracking.NewCallsignSet(callsigns...)
	s.loaded = true
	s.loadedAt = time.Now()

	if s.set.Len() == 0 {
		logging.Warn("Schedule loaded with no usable rows", "source", s.source.Describe())
	} else {
		logging.Info("Schedule loaded", "source", s.source.Describe(), "rows", len(entries), "callsigns", s.set.Len())
	}
	return s.set, nil
}

// Invalidate drops the memoized set so the next Load re-reads the source
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.set = tracking.CallsignSet{}
	s.loadedAt = time.Time{}
	s.mu.Unlock()
}

func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Source:   s.source.Describe(),
		Loaded:   s.loaded,
		Count:    s.set.Len(),
		LoadedAt: s.loadedAt,
	}
}
