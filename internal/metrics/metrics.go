package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the flight tracker
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Feed Metrics
	FeedFetchesTotal  *prometheus.CounterVec
	FeedFetchDuration prometheus.Histogram

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Pipeline Metrics
	CyclesTotal         *prometheus.CounterVec
	CycleDuration       prometheus.Histogram
	FlightsTracked      prometheus.Gauge
	StateVectorsSkipped *prometheus.CounterVec
	ScheduleCallsigns   prometheus.Gauge
	RefreshRateSeconds  prometheus.Gauge
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry registered on reg.
// Pass prometheus.DefaultRegisterer in production and prometheus.NewRegistry() in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flighttracker_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flighttracker_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flighttracker_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Feed Metrics
		FeedFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flighttracker_feed_fetches_total",
				Help: "Upstream OpenSky fetches by outcome code",
			},
			[]string{"outcome"},
		),
		FeedFetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "flighttracker_feed_fetch_duration_seconds",
				Help:    "OpenSky /states/all round trip time in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flighttracker_cache_hits_total",
				Help: "Total cache hits by cache name",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flighttracker_cache_misses_total",
				Help: "Total cache misses by cache name",
			},
			[]string{"cache"},
		),

		// Pipeline Metrics
		CyclesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flighttracker_cycles_total",
				Help: "Refresh cycles by result",
			},
			[]string{"result"},
		),
		CycleDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "flighttracker_cycle_duration_seconds",
				Help:    "Refresh cycle execution time in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		FlightsTracked: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "flighttracker_flights_tracked",
				Help: "Scheduled flights matched in the latest cycle",
			},
		),
		StateVectorsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flighttracker_state_vectors_skipped_total",
				Help: "State vectors dropped during correlation by reason",
			},
			[]string{"reason"},
		),
		ScheduleCallsigns: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "flighttracker_schedule_callsigns",
				Help: "Distinct callsigns in the loaded schedule",
			},
		),
		RefreshRateSeconds: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "flighttracker_refresh_rate_seconds",
				Help: "Configured refresh interval in seconds",
			},
		),
	}
}
