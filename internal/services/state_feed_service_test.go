package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/flighttracker/internal/common"
	"infinite-experiment/flighttracker/internal/constants"
	"infinite-experiment/flighttracker/internal/metrics"
	"infinite-experiment/flighttracker/internal/models/dtos"
	"infinite-experiment/flighttracker/internal/providers"
)

// mockStateProvider counts upstream calls
type mockStateProvider struct {
	calls         atomic.Int32
	FetchStatesFn func(ctx context.Context) (*dtos.StateSnapshot, int, error)
}

func (m *mockStateProvider) FetchStates(ctx context.Context) (*dtos.StateSnapshot, int, error) {
	m.calls.Add(1)
	if m.FetchStatesFn != nil {
		return m.FetchStatesFn(ctx)
	}
	return &dtos.StateSnapshot{Time: 1700000000, States: []any{}}, 200, nil
}

// fakeClock is advanced manually by tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func newFeed(t *testing.T, provider providers.StateProvider, ttl time.Duration) (*StateFeedService, *fakeClock, *metrics.MetricsRegistry) {
	t.Helper()
	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	cache := common.NewCacheService(time.Hour, time.Hour)
	feed := NewStateFeedService(provider, cache, ttl, m)
	clock := newFakeClock()
	feed.SetClock(clock.Now)
	return feed, clock, m
}

func TestStateFeedService_CachesWithinTTL(t *testing.T) {
	provider := &mockStateProvider{}
	feed, clock, m := newFeed(t, provider, 30*time.Second)

	first := feed.Fetch(context.Background())
	require.NotNil(t, first)

	clock.Advance(29 * time.Second)
	second := feed.Fetch(context.Background())
	require.NotNil(t, second)

	assert.Equal(t, int32(1), provider.calls.Load())
	assert.Equal(t, first.Time, second.Time)
	assert.Equal(t, 1.0, counterValue(t, m.CacheHitsTotal.WithLabelValues(snapshotCacheName)))
	assert.Equal(t, 1.0, counterValue(t, m.FeedFetchesTotal.WithLabelValues("ok")))
}

func TestStateFeedService_RefetchesAfterTTL(t *testing.T) {
	provider := &mockStateProvider{}
	feed, clock, _ := newFeed(t, provider, 30*time.Second)

	require.NotNil(t, feed.Fetch(context.Background()))
	clock.Advance(30 * time.Second)
	require.NotNil(t, feed.Fetch(context.Background()))

	assert.Equal(t, int32(2), provider.calls.Load())
}

func TestStateFeedService_FailureReturnsNilAndIsNotCached(t *testing.T) {
	provider := &mockStateProvider{
		FetchStatesFn: func(ctx context.Context) (*dtos.StateSnapshot, int, error) {
			return nil, 503, &providers.ProviderError{
				Code:       constants.ErrCodeFetchFailed,
				Message:    "OpenSky returned HTTP 503",
				StatusCode: 503,
			}
		},
	}
	feed, _, m := newFeed(t, provider, 30*time.Second)

	assert.Nil(t, feed.Fetch(context.Background()))
	assert.Nil(t, feed.Fetch(context.Background()))

	assert.Equal(t, int32(2), provider.calls.Load(), "failures are retried on the next call")
	assert.Equal(t, 2.0, counterValue(t, m.FeedFetchesTotal.WithLabelValues(constants.ErrCodeFetchFailed)))

	status := feed.Status()
	assert.False(t, status.Cached)
	assert.Contains(t, status.LastError, "503")
}

func TestStateFeedService_PlainErrorCountsAsFetchFailed(t *testing.T) {
	provider := &mockStateProvider{
		FetchStatesFn: func(ctx context.Context) (*dtos.StateSnapshot, int, error) {
			return nil, 0, errors.New("boom")
		},
	}
	feed, _, m := newFeed(t, provider, 30*time.Second)

	assert.Nil(t, feed.Fetch(context.Background()))
	assert.Equal(t, 1.0, counterValue(t, m.FeedFetchesTotal.WithLabelValues(constants.ErrCodeFetchFailed)))
}

func TestStateFeedService_RecoversAfterFailure(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	provider := &mockStateProvider{
		FetchStatesFn: func(ctx context.Context) (*dtos.StateSnapshot, int, error) {
			if fail.Load() {
				return nil, 0, errors.New("network down")
			}
			return &dtos.StateSnapshot{Time: 42}, 200, nil
		},
	}
	feed, _, _ := newFeed(t, provider, 30*time.Second)

	assert.Nil(t, feed.Fetch(context.Background()))
	fail.Store(false)

	snap := feed.Fetch(context.Background())
	require.NotNil(t, snap)
	assert.Equal(t, int64(42), snap.Time)
	assert.Empty(t, feed.Status().LastError)
}

func TestStateFeedService_Invalidate(t *testing.T) {
	provider := &mockStateProvider{}
	feed, _, _ := newFeed(t, provider, 30*time.Second)

	feed.Fetch(context.Background())
	assert.True(t, feed.Status().Cached)

	feed.Invalidate()
	assert.False(t, feed.Status().Cached)

	feed.Fetch(context.Background())
	assert.Equal(t, int32(2), provider.calls.Load())
}

func TestStateFeedService_ConcurrentCallersShareOneFetch(t *testing.T) {
	release := make(chan struct{})
	provider := &mockStateProvider{
		FetchStatesFn: func(ctx context.Context) (*dtos.StateSnapshot, int, error) {
			<-release
			return &dtos.StateSnapshot{Time: 7}, 200, nil
		},
	}
	feed, _, _ := newFeed(t, provider, 30*time.Second)

	var wg sync.WaitGroup
	results := make([]*dtos.StateSnapshot, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = feed.Fetch(context.Background())
		}(i)
	}

	// let the goroutines pile up on the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), provider.calls.Load())
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, int64(7), r.Time)
	}
}

func TestStateFeedService_PreservesStateVectorsThroughCache(t *testing.T) {
	provider := &mockStateProvider{
		FetchStatesFn: func(ctx context.Context) (*dtos.StateSnapshot, int, error) {
			return &dtos.StateSnapshot{
				Time: 1700000000,
				States: []any{
					[]any{"4ca7b5", "BA123   ", "United Kingdom", 1700000000.0, 1700000000.0, -20.5, 51.2, 10668.0, false, 240.3, 270.1, 0.0, nil},
				},
			}, 200, nil
		},
	}
	feed, _, _ := newFeed(t, provider, 30*time.Second)

	feed.Fetch(context.Background())
	cached := feed.Fetch(context.Background())

	require.NotNil(t, cached)
	require.Len(t, cached.States, 1)
	vector, ok := cached.States[0].([]any)
	require.True(t, ok, "state decoded as %T", cached.States[0])
	assert.Equal(t, "BA123   ", vector[1])
	assert.Equal(t, 51.2, vector[6])
	assert.Nil(t, vector[12])
}

func TestStateFeedService_CallerCancellationDoesNotAbortSharedFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	provider := &mockStateProvider{
		FetchStatesFn: func(ctx context.Context) (*dtos.StateSnapshot, int, error) {
			close(started)
			<-release
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
			return &dtos.StateSnapshot{Time: 1700000000}, 200, nil
		},
	}
	feed, _, _ := newFeed(t, provider, 30*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *dtos.StateSnapshot, 1)
	go func() { done <- feed.Fetch(ctx) }()

	<-started
	cancel()
	close(release)

	snapshot := <-done
	require.NotNil(t, snapshot)
	assert.Equal(t, int64(1700000000), snapshot.Time)

	// the result was cached for the next caller
	require.NotNil(t, feed.Fetch(context.Background()))
	assert.Equal(t, int32(1), provider.calls.Load())
}
