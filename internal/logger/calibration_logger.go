// Package logger provides calibration-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// CalibrationLogger provides dedicated logging for growth-model calibration.
type CalibrationLogger struct {
	*logrus.Entry
}

// NewCalibrationLogger creates a new calibration logger.
func NewCalibrationLogger(baseLogger *logrus.Logger) *CalibrationLogger {
	return &CalibrationLogger{
		Entry: baseLogger.WithField("component", "calibration"),
	}
}

// LogScan logs the outcome of a local scan around an implied fraction.
func (cl *CalibrationLogger) LogScan(caseName string, impliedFraction, bestFraction, bestAbsError float64, candidates int) {
	cl.WithFields(logrus.Fields{
		"case":             caseName,
		"implied_fraction": impliedFraction,
		"best_fraction":    bestFraction,
		"best_abs_error":   bestAbsError,
		"candidates":       candidates,
	}).Info("Local scan completed")
}

// LogCaseSkipped logs a case excluded from scoring.
func (cl *CalibrationLogger) LogCaseSkipped(caseName, reason string) {
	cl.WithFields(logrus.Fields{
		"case":   caseName,
		"reason": reason,
	}).Warn("Calibration case skipped")
}

// LogComparison logs the winner of a formula comparison.
func (cl *CalibrationLogger) LogComparison(bestFormula string, wins, scored, skipped int) {
	cl.WithFields(logrus.Fields{
		"best_formula": bestFormula,
		"wins":         wins,
		"scored":       scored,
		"skipped":      skipped,
	}).Info("Formula comparison completed")
}

// LogFit logs the best candidate of a multi-case fit.
func (cl *CalibrationLogger) LogFit(policy string, totalAbsError, meanAbsError float64, candidates, scored, skipped int, duration time.Duration) {
	cl.WithFields(logrus.Fields{
		"best_policy":     policy,
		"total_abs_error": totalAbsError,
		"mean_abs_error":  meanAbsError,
		"candidates":      candidates,
		"scored":          scored,
		"skipped":         skipped,
		"duration_ms":     duration.Milliseconds(),
	}).Info("Calibration fit completed")
}

// LogPolicyActivated logs a calibrated policy replacing the active one.
func (cl *CalibrationLogger) LogPolicyActivated(policy string, params map[string]float64, trigger string) {
	cl.WithFields(logrus.Fields{
		"policy":  policy,
		"params":  params,
		"trigger": trigger,
	}).Info("Calibrated policy activated")
}
