// Package metrics provides Prometheus-based metrics collection for scangate.
package metrics

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// Namespace for all scangate metrics
	namespace = "scangate"

	// Subsystems
	subsystemScan       = "scan"
	subsystemValidation = "validation"
	subsystemExport     = "export"
	subsystemSystem     = "system"
	subsystemAPI        = "api"
)

// PrometheusMetrics holds all Prometheus metric collectors
type PrometheusMetrics struct {
	// Scan metrics
	scansTotal      *prometheus.CounterVec
	scanDuration    *prometheus.HistogramVec
	portsObserved   *prometheus.CounterVec
	hostsReported   prometheus.Counter
	orphanPortLines prometheus.Counter
	activeScans     prometheus.Gauge

	// Validation metrics
	rejections        *prometheus.CounterVec
	injectionAttempts *prometheus.CounterVec

	// Export metrics
	exportsTotal *prometheus.CounterVec

	// API metrics
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	rateLimited  *prometheus.CounterVec

	// System metrics
	memoryUsage prometheus.Gauge
	goroutines  prometheus.Gauge
	uptime      prometheus.Gauge

	startTime  time.Time
	lastUpdate time.Time
	mu         sync.RWMutex
	registry   *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance with all collectors
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	pm := &PrometheusMetrics{
		startTime: time.Now(),
		registry:  registry,
	}

	pm.initScanMetrics()
	pm.initValidationMetrics()
	pm.initExportMetrics()
	pm.initAPIMetrics()
	pm.initSystemMetrics()

	pm.registerMetrics()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return pm
}

// initScanMetrics initializes scan-related metrics
func (pm *PrometheusMetrics) initScanMetrics() {
	pm.scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "total",
			Help:      "Total number of scans by outcome",
		},
		[]string{"outcome"},
	)

	pm.scanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of scanner processes in seconds",
			Buckets:   []float64{0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0, 120.0, 300.0},
		},
		[]string{"outcome"},
	)

	pm.portsObserved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "ports_total",
			Help:      "Total number of ports reported by state",
		},
		[]string{"state"},
	)

	pm.hostsReported = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "hosts_total",
			Help:      "Total number of host records parsed from scanner output",
		},
	)

	pm.orphanPortLines = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "orphan_port_lines_total",
			Help:      "Port lines dropped because no host header preceded them",
		},
	)

	pm.activeScans = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "active",
			Help:      "Number of scanner processes currently running",
		},
	)
}

// initValidationMetrics initializes input validation metrics
func (pm *PrometheusMetrics) initValidationMetrics() {
	pm.rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemValidation,
			Name:      "rejections_total",
			Help:      "Total number of rejected inputs by field and reason",
		},
		[]string{"field", "reason"},
	)

	pm.injectionAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemValidation,
			Name:      "injection_attempts_total",
			Help:      "Total number of inputs carrying shell metacharacters",
		},
		[]string{"field"},
	)
}

// initExportMetrics initializes report export metrics
func (pm *PrometheusMetrics) initExportMetrics() {
	pm.exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemExport,
			Name:      "total",
			Help:      "Total number of report exports by format and status",
		},
		[]string{"format", "status"},
	)
}

// initAPIMetrics initializes API-related metrics
func (pm *PrometheusMetrics) initAPIMetrics() {
	pm.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemAPI,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	pm.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemAPI,
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0, 300.0},
		},
		[]string{"method", "path"},
	)

	pm.rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemAPI,
			Name:      "rate_limited_total",
			Help:      "Total number of requests refused by a rate limit",
		},
		[]string{"limit"},
	)
}

// initSystemMetrics initializes system-related metrics
func (pm *PrometheusMetrics) initSystemMetrics() {
	pm.memoryUsage = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemSystem,
			Name:      "memory_bytes",
			Help:      "Current memory usage in bytes",
		},
	)

	pm.goroutines = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemSystem,
			Name:      "goroutines",
			Help:      "Current number of goroutines",
		},
	)

	pm.uptime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemSystem,
			Name:      "uptime_seconds",
			Help:      "Application uptime in seconds",
		},
	)
}

// registerMetrics registers all metrics with the Prometheus registry
func (pm *PrometheusMetrics) registerMetrics() {
	pm.registry.MustRegister(
		pm.scansTotal,
		pm.scanDuration,
		pm.portsObserved,
		pm.hostsReported,
		pm.orphanPortLines,
		pm.activeScans,

		pm.rejections,
		pm.injectionAttempts,

		pm.exportsTotal,

		pm.httpRequests,
		pm.httpDuration,
		pm.rateLimited,

		pm.memoryUsage,
		pm.goroutines,
		pm.uptime,
	)
}

// GetRegistry returns the Prometheus registry for HTTP handler
func (pm *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return pm.registry
}

// Scan Metrics Methods

// RecordScan counts one finished scanner process and observes its duration.
func (pm *PrometheusMetrics) RecordScan(outcome string, duration time.Duration) {
	pm.scansTotal.WithLabelValues(outcome).Inc()
	pm.scanDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// AddPorts adds count ports in state.
func (pm *PrometheusMetrics) AddPorts(state string, count int) {
	if count <= 0 {
		return
	}
	pm.portsObserved.WithLabelValues(state).Add(float64(count))
}

// AddHosts adds parsed host records and dropped orphan port lines.
func (pm *PrometheusMetrics) AddHosts(hosts, orphans int) {
	if hosts > 0 {
		pm.hostsReported.Add(float64(hosts))
	}
	if orphans > 0 {
		pm.orphanPortLines.Add(float64(orphans))
	}
}

// SetActiveScans sets the number of running scanner processes
func (pm *PrometheusMetrics) SetActiveScans(count int) {
	pm.activeScans.Set(float64(count))
}

// Validation Metrics Methods

// IncrementRejections counts one rejected input.
func (pm *PrometheusMetrics) IncrementRejections(field, reason string) {
	pm.rejections.WithLabelValues(field, reason).Inc()
}

// IncrementInjectionAttempts counts one input carrying shell metacharacters.
func (pm *PrometheusMetrics) IncrementInjectionAttempts(field string) {
	pm.injectionAttempts.WithLabelValues(field).Inc()
}

// Export Metrics Methods

// IncrementExports counts one export attempt.
func (pm *PrometheusMetrics) IncrementExports(format, status string) {
	pm.exportsTotal.WithLabelValues(format, status).Inc()
}

// API Metrics Methods

// IncrementHTTPRequests increments HTTP request counter
func (pm *PrometheusMetrics) IncrementHTTPRequests(method, path, status string) {
	pm.httpRequests.WithLabelValues(method, path, status).Inc()
}

// RecordHTTPDuration records HTTP request duration
func (pm *PrometheusMetrics) RecordHTTPDuration(method, path string, duration time.Duration) {
	pm.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncrementRateLimited counts one request refused by the named limit.
func (pm *PrometheusMetrics) IncrementRateLimited(limit string) {
	pm.rateLimited.WithLabelValues(limit).Inc()
}

// System Metrics Methods

// UpdateSystemMetrics updates all system metrics with current values
func (pm *PrometheusMetrics) UpdateSystemMetrics() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	pm.memoryUsage.Set(float64(memStats.Alloc))
	pm.goroutines.Set(float64(runtime.NumGoroutine()))
	pm.uptime.Set(time.Since(pm.startTime).Seconds())

	pm.lastUpdate = time.Now()
}

// GetUptime returns the application uptime
func (pm *PrometheusMetrics) GetUptime() time.Duration {
	return time.Since(pm.startTime)
}

// GetLastUpdate returns the last metrics update time
func (pm *PrometheusMetrics) GetLastUpdate() time.Time {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.lastUpdate
}

// StartPeriodicUpdates updates system metrics every interval until ctx is done.
func (pm *PrometheusMetrics) StartPeriodicUpdates(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pm.UpdateSystemMetrics()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pm.UpdateSystemMetrics()
		}
	}
}

// Global instance for easy access
var globalMetrics *PrometheusMetrics
var metricsOnce sync.Once

// GetGlobalMetrics returns the global Prometheus metrics instance
func GetGlobalMetrics() *PrometheusMetrics {
	metricsOnce.Do(func() {
		globalMetrics = NewPrometheusMetrics()
	})
	return globalMetrics
}
