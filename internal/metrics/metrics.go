package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the opsdesk API
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Database Metrics
	DBQueriesTotal  prometheus.CounterVec
	DBQueryDuration prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Business Metrics
	SchedulesCreatedTotal    prometheus.Counter
	ScheduleConflictsTotal   prometheus.CounterVec
	SchedulesByStatus        prometheus.GaugeVec
	SweeperTransitionsTotal  prometheus.CounterVec
	AvailabilityQueriesTotal prometheus.Counter
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsdesk_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "opsdesk_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "opsdesk_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		DBQueriesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsdesk_db_queries_total",
				Help: "Total database queries by operation type",
			},
			[]string{"query_type"},
		),
		DBQueryDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "opsdesk_db_query_duration_seconds",
				Help:    "Database query execution time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"query_type"},
		),

		CacheHitsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsdesk_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsdesk_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		SchedulesCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "opsdesk_schedules_created_total",
				Help: "Total schedules created",
			},
		),
		ScheduleConflictsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsdesk_schedule_conflicts_total",
				Help: "Total schedule writes rejected with an overlap conflict, by resource dimension",
			},
			[]string{"resource"},
		),
		SchedulesByStatus: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "opsdesk_schedules_by_status",
				Help: "Current number of schedules per lifecycle status",
			},
			[]string{"status"},
		),
		SweeperTransitionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsdesk_sweeper_transitions_total",
				Help: "Schedule status transitions applied by the background sweeper",
			},
			[]string{"transition"},
		),
		AvailabilityQueriesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "opsdesk_availability_queries_total",
				Help: "Total availability snapshots computed",
			},
		),
	}
}
