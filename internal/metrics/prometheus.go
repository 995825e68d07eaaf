package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion worker

var (
	// API call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsync_api_calls_total",
			Help: "Total number of upstream API calls",
		},
		[]string{"host", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsync_api_call_duration_seconds",
			Help:    "Duration of upstream API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"host"},
	)

	PagesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsync_pages_fetched_total",
			Help: "Total number of paginated pages accepted",
		},
		[]string{"host"},
	)

	// Fan-out metrics
	FanOutItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsync_fanout_items_total",
			Help: "Total number of fan-out sub-requests by outcome",
		},
		[]string{"fanout", "outcome"},
	)

	FanOutInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sportsync_fanout_in_flight",
			Help: "Number of fan-out sub-requests currently executing",
		},
		[]string{"fanout"},
	)

	// Normalization metrics
	RecordsNormalizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsync_records_normalized_total",
			Help: "Total number of raw records normalized by outcome",
		},
		[]string{"kind", "outcome"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsync_db_queries_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsync_db_query_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	RowsUpsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsync_rows_upserted_total",
			Help: "Total number of rows inserted or changed by upserts",
		},
		[]string{"table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sportsync_db_connections_active",
			Help: "Number of acquired database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sportsync_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sportsync_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sportsync_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsync_cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Job metrics
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsync_job_runs_total",
			Help: "Total number of job runs",
		},
		[]string{"job", "status"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsync_job_duration_seconds",
			Help:    "Duration of job runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"job"},
	)

	JobsRunning = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sportsync_jobs_running",
			Help: "Number of in-flight runs per job",
		},
		[]string{"job"},
	)

	LastSuccessfulRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sportsync_last_successful_run_timestamp",
			Help: "Unix timestamp of the last successful run per job",
		},
		[]string{"job"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsync_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sportsync_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(host, status string, duration float64) {
	APICallsTotal.WithLabelValues(host, status).Inc()
	APICallDuration.WithLabelValues(host).Observe(duration)
}

// RecordPage records an accepted paginated page
func RecordPage(host string) {
	PagesFetchedTotal.WithLabelValues(host).Inc()
}

// RecordFanOutItem records the outcome of one fan-out sub-request
func RecordFanOutItem(fanout, outcome string) {
	FanOutItemsTotal.WithLabelValues(fanout, outcome).Inc()
}

// RecordNormalized records a normalization outcome ("ok" or "skipped")
func RecordNormalized(kind, outcome string) {
	RecordsNormalizedTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordRowsUpserted records rows changed by an upsert batch
func RecordRowsUpserted(table string, n int) {
	RowsUpsertedTotal.WithLabelValues(table).Add(float64(n))
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordCacheOperation records the duration of a cache operation
func RecordCacheOperation(operation string, duration float64) {
	CacheOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordJobRun records a finished job run
func RecordJobRun(job, status string, duration float64, finishedAt float64) {
	JobRunsTotal.WithLabelValues(job, status).Inc()
	JobDuration.WithLabelValues(job).Observe(duration)
	if status == "success" {
		LastSuccessfulRun.WithLabelValues(job).Set(finishedAt)
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool metrics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
