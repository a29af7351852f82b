// Package metrics provides Prometheus metrics for the kickoff match service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// fetchBuckets covers narrative requests, which take seconds.
var fetchBuckets = []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000} //nolint:gochecknoglobals // fixed bucket layout

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline
	bufferDepth    prometheus.Gauge
	bufferCapacity prometheus.Gauge
	bufferEnqueued prometheus.Counter
	bufferDropped  prometheus.Counter
	bufferPopped   prometheus.Counter
	fetchedUpTo    prometheus.Gauge
	fetches        *prometheus.CounterVec
	fetchLatency   prometheus.Histogram
	fillerFrames   *prometheus.CounterVec
	emptyTicks     prometheus.Counter
	workerTicks    *prometheus.CounterVec
	workersRunning prometheus.Gauge

	// Match
	matchMinute          prometheus.Gauge
	framesProcessed      prometheus.Counter
	eventResolutions     *prometheus.CounterVec
	commentarySuppressed prometheus.Counter
	ballTransitions      *prometheus.CounterVec

	// HTTP and feed
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	feedClients         prometheus.Gauge
	feedMessages        prometheus.Counter

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "kickoff",
		subsystem:        "match",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.bufferDepth = m.gauge("buffer_depth", "Frames waiting in the playback buffer")
	m.bufferCapacity = m.gauge("buffer_capacity", "Maximum frames the playback buffer holds")
	m.bufferEnqueued = m.counter("buffer_enqueued_total", "Frames appended to the playback buffer")
	m.bufferDropped = m.counter("buffer_dropped_total", "Frames rejected by a full or closed buffer")
	m.bufferPopped = m.counter("buffer_popped_total", "Frames popped for playback")
	m.fetchedUpTo = m.gauge("fetched_up_to_minute", "Last match minute requested from the narrative source")
	m.fetches = m.counterVec("fetches_total", "Narrative batch requests by outcome", "outcome")
	m.fetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_latency_milliseconds",
		Help:      "Narrative batch request latency in milliseconds",
		Buckets:   fetchBuckets,
	})
	m.fillerFrames = m.counterVec("filler_frames_total", "Locally synthesized frames by reason", "reason")
	m.emptyTicks = m.counter("playback_empty_ticks_total", "Playback ticks that found the buffer empty")
	m.workerTicks = m.counterVec("worker_ticks_total", "Ticks fired by each ticker worker", "worker")
	m.workersRunning = m.gauge("workers_running", "Ticker workers currently running")

	m.matchMinute = m.gauge("minute", "Current match clock")
	m.framesProcessed = m.counter("frames_processed_total", "Frames applied to the match state")
	m.eventResolutions = m.counterVec("event_resolutions_total", "Frame events by resolution branch", "team", "player")
	m.commentarySuppressed = m.counter("commentary_suppressed_total", "Commentary lines dropped as consecutive duplicates")
	m.ballTransitions = m.counterVec("ball_transitions_total", "Ball state changes by kind", "transition")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "HTTP errors by endpoint", "endpoint", "method", "error_type")
	m.feedClients = m.gauge("feed_clients", "Connected websocket feed clients")
	m.feedMessages = m.counter("feed_messages_total", "Snapshots pushed to feed clients")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// UpdateBufferDepth sets the current buffer depth.
func UpdateBufferDepth(n int) { globalManager.bufferDepth.Set(float64(n)) }

// UpdateBufferCapacity sets the buffer capacity.
func UpdateBufferCapacity(n int) { globalManager.bufferCapacity.Set(float64(n)) }

// RecordBufferEnqueue counts an appended frame.
func RecordBufferEnqueue() { globalManager.bufferEnqueued.Inc() }

// RecordBufferDrop counts a rejected frame.
func RecordBufferDrop() { globalManager.bufferDropped.Inc() }

// RecordBufferPop counts a popped frame.
func RecordBufferPop() { globalManager.bufferPopped.Inc() }

// UpdateFetchedUpTo sets the fetch cursor.
func UpdateFetchedUpTo(minute int) { globalManager.fetchedUpTo.Set(float64(minute)) }

// RecordFetch counts a finished batch request and its latency.
func RecordFetch(outcome string, latencyMs float64) {
	globalManager.fetches.WithLabelValues(outcome).Inc()
	globalManager.fetchLatency.Observe(latencyMs)
}

// RecordFillerFrames counts synthesized frames.
func RecordFillerFrames(reason string, n int) {
	globalManager.fillerFrames.WithLabelValues(reason).Add(float64(n))
}

// RecordEmptyTick counts a playback tick with nothing to play.
func RecordEmptyTick() { globalManager.emptyTicks.Inc() }

// RecordWorkerTick counts a tick of the named worker.
func RecordWorkerTick(worker string) { globalManager.workerTicks.WithLabelValues(worker).Inc() }

// AddWorkersRunning adjusts the running worker gauge by delta.
func AddWorkersRunning(delta int) { globalManager.workersRunning.Add(float64(delta)) }

// UpdateMatchMinute sets the match clock.
func UpdateMatchMinute(minute int) { globalManager.matchMinute.Set(float64(minute)) }

// RecordFrameProcessed counts an applied frame.
func RecordFrameProcessed() { globalManager.framesProcessed.Inc() }

// RecordEventResolution counts a frame event by resolution branch.
func RecordEventResolution(team, player string) {
	globalManager.eventResolutions.WithLabelValues(team, player).Inc()
}

// RecordCommentarySuppressed counts a dropped duplicate line.
func RecordCommentarySuppressed() { globalManager.commentarySuppressed.Inc() }

// RecordBallTransition counts a ball state change.
func RecordBallTransition(transition string) {
	globalManager.ballTransitions.WithLabelValues(transition).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an HTTP error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// AddFeedClients adjusts the connected feed client gauge by delta.
func AddFeedClients(delta int) { globalManager.feedClients.Add(float64(delta)) }

// RecordFeedMessage counts a snapshot pushed to a client.
func RecordFeedMessage() { globalManager.feedMessages.Inc() }

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
