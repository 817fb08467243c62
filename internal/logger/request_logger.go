package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// RequestLogger logs completed HTTP requests.
type RequestLogger struct {
	*logrus.Entry
}

// NewRequestLogger creates a new request logger.
func NewRequestLogger(baseLogger *logrus.Logger) *RequestLogger {
	return &RequestLogger{
		Entry: baseLogger.WithField("component", "http"),
	}
}

// LogRequest logs one request; 5xx responses are logged at error level.
func (rl *RequestLogger) LogRequest(method, path string, status int, duration time.Duration, userID string) {
	entry := rl.WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": float64(duration.Microseconds()) / 1000,
		"user_id":     userID,
	})
	if status >= 500 {
		entry.Error("Request failed")
		return
	}
	entry.Info("Request handled")
}
