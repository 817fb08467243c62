package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput(buf, "debug", "development")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	log = NewLoggerWithOutput(buf, "nonsense", "production")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
	assert.Contains(t, buf.String(), "Invalid log level")
}

func TestCalibrationLoggerScan(t *testing.T) {
	log, buf := setupTestLogger()
	calLogger := NewCalibrationLogger(log)

	calLogger.LogScan("reference", 0.87116, 0.87, 12.5, 5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "calibration", logEntry["component"])
	assert.Equal(t, "reference", logEntry["case"])
	assert.InDelta(t, 0.87, logEntry["best_fraction"], 1e-9)
}

func TestCalibrationLoggerCaseSkipped(t *testing.T) {
	log, buf := setupTestLogger()
	NewCalibrationLogger(log).LogCaseSkipped("losing", "skipped: no edge")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "skipped: no edge", logEntry["reason"])
}

func TestCalibrationLoggerFit(t *testing.T) {
	log, buf := setupTestLogger()
	NewCalibrationLogger(log).LogFit("constant(0.8700)", 10, 5, 16, 2, 1, 250*time.Millisecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "constant(0.8700)", logEntry["best_policy"])
	assert.EqualValues(t, 250, logEntry["duration_ms"])
}

func TestAuditLoggerLogin(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	audit.LogLoginFailure("trader", "127.0.0.1", "invalid credentials")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "login_failure", logEntry["event"])
	assert.NotContains(t, buf.String(), "password")
}

func TestAuditLoggerRecordChange(t *testing.T) {
	log, buf := setupTestLogger()
	NewAuditLogger(log).LogRecordChange("user-1", "trade", "abc", "delete")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "trade", logEntry["entity"])
	assert.Equal(t, "delete", logEntry["action"])
}

func TestRequestLoggerLevels(t *testing.T) {
	log, buf := setupTestLogger()
	rl := NewRequestLogger(log)

	rl.LogRequest("GET", "/api/trades", 200, time.Millisecond, "user-1")
	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "info", logEntry["level"])
	assert.EqualValues(t, 200, logEntry["status"])

	buf.Reset()
	rl.LogRequest("POST", "/api/trades", 500, time.Millisecond, "")
	logEntry = parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
}
