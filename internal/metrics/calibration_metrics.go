// Package metrics defines growth-model and calibration metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calculations_total",
		Help:      "Total number of growth projections by policy and edge",
	}, []string{"policy", "edge"})

	CalibrationRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calibration_runs_total",
		Help:      "Total number of calibration runs by kind and status",
	}, []string{"kind", "status"})

	CalibrationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "calibration_duration_seconds",
		Help:      "Duration of calibration runs by kind",
		Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"kind"})

	CalibrationBestError = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "calibration_best_mean_abs_error",
		Help:      "Mean absolute profit error of the best candidate of the last fit",
	})

	CalibrationCasesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calibration_cases_skipped_total",
		Help:      "Total number of calibration cases skipped (no edge or not invertible)",
	})

	ReferenceRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reference_requests_total",
		Help:      "Total number of reference calculator requests by status",
	}, []string{"status"})
)

// RecordCalculation records a growth projection.
func RecordCalculation(policy string, noEdge bool) {
	edge := "yes"
	if noEdge {
		edge = "no"
	}
	CalculationsTotal.WithLabelValues(policy, edge).Inc()
}

// RecordCalibrationRun records a calibration run.
// kind should be one of: "scan", "compare", "fit"
// status should be one of: "success", "failure", "empty"
func RecordCalibrationRun(kind, status string, durationSeconds float64) {
	CalibrationRunsTotal.WithLabelValues(kind, status).Inc()
	CalibrationDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// UpdateCalibrationBestError sets the best-fit error gauge.
func UpdateCalibrationBestError(meanAbsError float64) {
	CalibrationBestError.Set(meanAbsError)
}

// RecordCasesSkipped adds skipped calibration cases.
func RecordCasesSkipped(n int) {
	CalibrationCasesSkipped.Add(float64(n))
}

// RecordReferenceRequest records a reference calculator call.
// status should be one of: "success", "failure", "rate_limited"
func RecordReferenceRequest(status string) {
	ReferenceRequestsTotal.WithLabelValues(status).Inc()
}
