// Package metrics provides Prometheus metrics for the escala squad service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Allocation engine
	allocations        *prometheus.CounterVec
	allocationDuration prometheus.Histogram
	rosterFilledSlots  prometheus.Histogram
	fallbackPicks      *prometheus.CounterVec
	budgetOverruns     prometheus.Counter
	captainFailures    prometheus.Counter
	candidatePoolSize  prometheus.Gauge

	// Player feed
	feedFetches       *prometheus.CounterVec
	feedFetchDuration prometheus.Histogram
	feedCache         *prometheus.CounterVec
	feedPlayers       prometheus.Gauge

	// Batch workers
	workerCount         prometheus.Gauge
	workerBusy          prometheus.Gauge
	scenarioLatency     prometheus.Histogram
	scenarioErrorsTotal prometheus.Counter

	// Scenario queue
	queueCapacity prometheus.Gauge
	queueDepth    prometheus.Gauge
	queueRejected *prometheus.CounterVec

	// Roster history
	storedRosters      prometheus.Gauge
	storeEvictions     prometheus.Counter
	storeQueryDuration prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // service-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "escala",
		subsystem:        "squad",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)

	m.allocations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "allocations_total",
		Help:      "Allocation runs by formation and outcome",
	}, []string{"formation", "outcome"})

	m.allocationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "allocation_duration_milliseconds",
		Help:      "Wall time of a single allocation run",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
	})

	m.rosterFilledSlots = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_filled_slots",
		Help:      "Number of slots filled per roster",
		Buckets:   prometheus.LinearBuckets(0, 1, 13),
	})

	m.fallbackPicks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fallback_picks_total",
		Help:      "Players admitted by the budget-ignoring fallback pass",
	}, []string{"position"})

	m.budgetOverruns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "budget_overruns_total",
		Help:      "Rosters whose total cost exceeded the requested budget",
	})

	m.captainFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "captain_failures_total",
		Help:      "Runs aborted because no non-coach player was selected",
	})

	m.candidatePoolSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidate_pool_size",
		Help:      "Eligible candidates seen by the last allocation run",
	})

	m.feedFetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_fetch_total",
		Help:      "Upstream player feed fetches by outcome",
	}, []string{"outcome"})

	m.feedFetchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_fetch_duration_milliseconds",
		Help:      "Upstream player feed fetch latency",
		Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})

	m.feedCache = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_cache_total",
		Help:      "Player snapshot cache lookups by result",
	}, []string{"result"})

	m.feedPlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_players",
		Help:      "Players in the most recently fetched snapshot",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Configured batch scenario workers",
	})

	m.workerBusy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_busy",
		Help:      "Batch scenario workers currently running an allocation",
	})

	m.scenarioLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scenario_latency_milliseconds",
		Help:      "Latency of a single batch scenario",
		Buckets:   m.histogramBuckets,
	})

	m.scenarioErrorsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scenario_errors_total",
		Help:      "Batch scenarios that returned an error",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Capacity of the scenario queue",
	})

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_depth",
		Help:      "Scenarios waiting for a worker",
	})

	m.queueRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_rejected_total",
		Help:      "Scenarios the queue refused, by reason",
	}, []string{"reason"})

	m.storedRosters = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stored_rosters",
		Help:      "Rosters held in the history store",
	})

	m.storeEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_evictions_total",
		Help:      "Rosters dropped from the history store to respect its capacity",
	})

	m.storeQueryDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_duration_milliseconds",
		Help:      "History store read latency in milliseconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_type_total",
		Help:      "Errors by type and severity",
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Errors by endpoint, method and type",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordAllocation counts one allocation run. outcome is "complete",
// "partial" or "error".
func RecordAllocation(formation, outcome string) {
	globalManager.allocations.WithLabelValues(formation, outcome).Inc()
}

// RecordAllocationDuration records the wall time of an allocation run.
func RecordAllocationDuration(ms float64) {
	globalManager.allocationDuration.Observe(ms)
}

// RecordRosterFilled records how many slots a roster filled.
func RecordRosterFilled(filled int) {
	globalManager.rosterFilledSlots.Observe(float64(filled))
}

// RecordFallbackPick counts a player admitted by the fallback pass.
func RecordFallbackPick(position string) {
	globalManager.fallbackPicks.WithLabelValues(position).Inc()
}

// RecordBudgetOverrun counts a roster that ended above budget.
func RecordBudgetOverrun() {
	globalManager.budgetOverruns.Inc()
}

// RecordCaptainFailure counts a degenerate squad.
func RecordCaptainFailure() {
	globalManager.captainFailures.Inc()
}

// UpdateCandidatePoolSize sets the eligible pool size of the last run.
func UpdateCandidatePoolSize(n int) {
	globalManager.candidatePoolSize.Set(float64(n))
}

// RecordFeedFetch counts an upstream fetch; outcome is "ok" or "error".
func RecordFeedFetch(outcome string, ms float64) {
	globalManager.feedFetches.WithLabelValues(outcome).Inc()
	globalManager.feedFetchDuration.Observe(ms)
}

// RecordFeedCache counts a snapshot cache lookup; result is "hit", "miss" or "error".
func RecordFeedCache(result string) {
	globalManager.feedCache.WithLabelValues(result).Inc()
}

// UpdateFeedPlayers sets the size of the last fetched snapshot.
func UpdateFeedPlayers(n int) {
	globalManager.feedPlayers.Set(float64(n))
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerBusy moves the busy-worker gauge by delta.
func AddWorkerBusy(delta int) {
	globalManager.workerBusy.Add(float64(delta))
}

// RecordScenarioLatency records the latency of one batch scenario.
func RecordScenarioLatency(ms float64) {
	globalManager.scenarioLatency.Observe(ms)
}

// RecordScenarioError counts a failed batch scenario.
func RecordScenarioError() {
	globalManager.scenarioErrorsTotal.Inc()
}

// UpdateQueueCapacity sets the scenario queue capacity.
func UpdateQueueCapacity(n int) {
	globalManager.queueCapacity.Set(float64(n))
}

// UpdateQueueDepth sets the number of queued scenarios.
func UpdateQueueDepth(n int) {
	globalManager.queueDepth.Set(float64(n))
}

// RecordQueueRejected counts a refused enqueue; reason is "closed", "full"
// or "cancelled".
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// UpdateStoredRosters sets the history store size.
func UpdateStoredRosters(n int) {
	globalManager.storedRosters.Set(float64(n))
}

// RecordStoreEviction counts one roster evicted from the history store.
func RecordStoreEviction() {
	globalManager.storeEvictions.Inc()
}

// RecordStoreQueryLatency records a history store read.
func RecordStoreQueryLatency(ms float64) {
	globalManager.storeQueryDuration.Observe(ms)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
