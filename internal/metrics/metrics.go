// Package metrics provides the centralized Prometheus metrics registry for the trade journal.
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trade_journal"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// HTTP metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// Journal record metrics
var (
	RecordMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_mutations_total",
		Help:      "Total number of journal record mutations by entity and action",
	}, []string{"entity", "action"})
	LoginAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts by outcome",
	}, []string{"outcome"})
	DatabaseConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "database_connected",
		Help:      "1 when the database pool is initialised and answered the last ping",
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(HTTPRequestsTotal)
		registry.MustRegister(HTTPRequestDuration)

		registry.MustRegister(RecordMutationsTotal)
		registry.MustRegister(LoginAttemptsTotal)
		registry.MustRegister(DatabaseConnected)

		// Register calibration metrics
		registry.MustRegister(CalculationsTotal)
		registry.MustRegister(CalibrationRunsTotal)
		registry.MustRegister(CalibrationDuration)
		registry.MustRegister(CalibrationBestError)
		registry.MustRegister(CalibrationCasesSkipped)
		registry.MustRegister(ReferenceRequestsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a completed HTTP request.
// route is the matched mux pattern, not the raw path, to bound cardinality.
func RecordHTTPRequest(route, method string, status int, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(durationSeconds)
}

// RecordMutation records a create, update or delete of a journal record.
func RecordMutation(entity, action string) {
	RecordMutationsTotal.WithLabelValues(entity, action).Inc()
}

// RecordLoginAttempt records a login attempt.
// outcome should be one of: "success", "failure", "throttled"
func RecordLoginAttempt(outcome string) {
	LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// UpdateDatabaseConnected sets the database connectivity gauge.
func UpdateDatabaseConnected(connected bool) {
	if connected {
		DatabaseConnected.Set(1)
		return
	}
	DatabaseConnected.Set(0)
}
