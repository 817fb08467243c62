// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a new configured logger instance writing to stdout
func NewLogger(logLevel, environment string) *logrus.Logger {
	return NewLoggerWithOutput(os.Stdout, logLevel, environment)
}

// NewLoggerWithOutput creates a configured logger writing to w
func NewLoggerWithOutput(w io.Writer, logLevel, environment string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)

	// Parse and set log level
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Use JSON formatter for structured logging in production
	if environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
