// Package metrics provides Prometheus metrics for the team score simulator.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the simulator.
type Manager struct {
	namespace    string
	subsystem    string
	scoreBuckets []float64
	registry     prometheus.Registerer

	// Simulation metrics
	trialsTotal         prometheus.Counter
	trialScore          prometheus.Histogram
	trialDuration       prometheus.Histogram
	lockUptime          prometheus.Histogram
	perfectRatio        prometheus.Histogram
	eventsProcessed     *prometheus.CounterVec
	skillActivations    *prometheus.CounterVec
	skillFailures       *prometheus.CounterVec
	singletonRejections *prometheus.CounterVec

	// Queue metrics
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Repository metrics
	repositoryRecordsTotal prometheus.Gauge
	repositoryQueryLatency prometheus.Histogram

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:    "sifsim",
		subsystem:    "simulation",
		scoreBuckets: prometheus.ExponentialBuckets(10_000, 2, 12),
		registry:     prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one declaration per metric
	auto := promauto.With(m.registry)

	m.trialsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "trials_total",
		Help:      "Total number of completed trials",
	})
	m.trialScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "trial_score",
		Help:      "Final score of each trial",
		Buckets:   m.scoreBuckets,
	})
	m.trialDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "trial_duration_seconds",
		Help:      "Wall-clock time spent running one trial",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	})
	m.lockUptime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "perfect_lock_uptime_seconds",
		Help:      "Song seconds covered by at least one Perfect Lock per trial",
		Buckets:   prometheus.LinearBuckets(0, 15, 10),
	})
	m.perfectRatio = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "perfect_ratio",
		Help:      "Share of judgments that were Perfect per trial",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})
	m.eventsProcessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_processed_total",
		Help:      "Events dispatched by the event loop, by kind",
	}, []string{"kind"})
	m.skillActivations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "skill_activations_total",
		Help:      "Successful skill activations by skill type",
	}, []string{"skill"})
	m.skillFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "skill_failures_total",
		Help:      "Failed skill activation rolls by skill type",
	}, []string{"skill"})
	m.singletonRejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "singleton_rejections_total",
		Help:      "Activations ignored because a singleton effect was already running",
	}, []string{"skill"})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "queue",
		Name:      "capacity",
		Help:      "Maximum number of trial jobs the queue can hold",
	})
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "queue",
		Name:      "size",
		Help:      "Trial jobs currently queued",
	})
	m.queueEnqueueTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "queue",
		Name:      "enqueued_total",
		Help:      "Trial jobs accepted by the queue",
	})
	m.queueDequeueTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "queue",
		Name:      "dequeued_total",
		Help:      "Trial jobs handed to workers",
	})
	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "queue",
		Name:      "enqueue_errors_total",
		Help:      "Trial jobs rejected by the queue",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "worker",
		Name:      "active",
		Help:      "Workers currently running",
	})
	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "worker",
		Name:      "job_duration_seconds",
		Help:      "Time a worker spends on one trial job",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	})
	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "worker",
		Name:      "errors_total",
		Help:      "Trial jobs that failed to record",
	})

	m.repositoryRecordsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "repository",
		Name:      "records",
		Help:      "Trial results held by the ranked store",
	})
	m.repositoryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "repository",
		Name:      "query_duration_seconds",
		Help:      "Latency of ranked store queries",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
	})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "errors_total",
		Help:      "Errors by component and type",
	}, []string{"component", "error_type"})
}

// RecordTrial records one finished trial.
func RecordTrial(score int, seconds float64) {
	globalManager.trialsTotal.Inc()
	globalManager.trialScore.Observe(float64(score))
	globalManager.trialDuration.Observe(seconds)
}

// RecordTrialDiagnostics records the lock uptime and perfect ratio of a trial.
func RecordTrialDiagnostics(lockUptimeSeconds, perfectRatio float64) {
	globalManager.lockUptime.Observe(lockUptimeSeconds)
	globalManager.perfectRatio.Observe(perfectRatio)
}

// RecordEvents adds n dispatched events of kind.
func RecordEvents(kind string, n int) {
	if n > 0 {
		globalManager.eventsProcessed.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordSkillActivations adds n successful activations of skill.
func RecordSkillActivations(skill string, n int) {
	if n > 0 {
		globalManager.skillActivations.WithLabelValues(skill).Add(float64(n))
	}
}

// RecordSkillFailures adds n failed rolls of skill.
func RecordSkillFailures(skill string, n int) {
	if n > 0 {
		globalManager.skillFailures.WithLabelValues(skill).Add(float64(n))
	}
}

// RecordSingletonRejections adds n ignored singleton activations of skill.
func RecordSingletonRejections(skill string, n int) {
	if n > 0 {
		globalManager.singletonRejections.WithLabelValues(skill).Add(float64(n))
	}
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueTotal.Inc()
}

// RecordQueueDequeue counts a job handed to a worker.
func RecordQueueDequeue() {
	globalManager.queueDequeueTotal.Inc()
}

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerActiveCount sets the running worker gauge.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency observes one job's duration.
func RecordWorkerProcessingLatency(seconds float64) {
	globalManager.workerProcessingLatency.Observe(seconds)
}

// RecordWorkerError counts a failed job.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateRepositoryRecordsTotal sets the stored result gauge.
func UpdateRepositoryRecordsTotal(count int) {
	globalManager.repositoryRecordsTotal.Set(float64(count))
}

// RecordRepositoryQueryLatency observes a store query.
func RecordRepositoryQueryLatency(seconds float64) {
	globalManager.repositoryQueryLatency.Observe(seconds)
}

// RecordErrorByComponent counts an error.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text exposition format, for pickup by a node exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}
