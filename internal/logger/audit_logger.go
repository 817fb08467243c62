// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogLoginSuccess logs a successful login.
func (al *AuditLogger) LogLoginSuccess(username, userID, remoteAddr string) {
	al.WithFields(logrus.Fields{
		"event":       "login_success",
		"username":    username,
		"user_id":     userID,
		"remote_addr": remoteAddr,
		"timestamp":   time.Now().Unix(),
	}).Info("Login succeeded")
}

// LogLoginFailure logs a rejected or throttled login. Passwords are never logged.
func (al *AuditLogger) LogLoginFailure(username, remoteAddr, reason string) {
	al.WithFields(logrus.Fields{
		"event":       "login_failure",
		"username":    username,
		"remote_addr": remoteAddr,
		"reason":      reason,
		"timestamp":   time.Now().Unix(),
	}).Warn("Login failed")
}

// LogRecordChange logs a create, update or delete of a journal record.
func (al *AuditLogger) LogRecordChange(userID, entity, recordID, action string) {
	al.WithFields(logrus.Fields{
		"event":     "record_change",
		"user_id":   userID,
		"entity":    entity,
		"record_id": recordID,
		"action":    action,
		"timestamp": time.Now().Unix(),
	}).Info("Journal record changed")
}
