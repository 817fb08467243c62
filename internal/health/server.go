// Package health provides liveness and readiness handlers for container health checks.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// Checker serves the health endpoints.
type Checker struct {
	serviceName string
	version     string
	commit      string
	logger      *logrus.Logger
	db          DatabasePinger
	pingTimeout time.Duration
	mu          sync.RWMutex
	ready       bool
}

// Config holds the configuration for the health checker.
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	Logger      *logrus.Logger
	DB          DatabasePinger
}

// NewChecker creates a new health checker. It starts not ready.
func NewChecker(cfg Config) *Checker {
	return &Checker{
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		commit:      cfg.Commit,
		logger:      cfg.Logger,
		db:          cfg.DB,
		pingTimeout: 3 * time.Second,
	}
}

// Register mounts /health, /ready and /live on mux.
func (c *Checker) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", c.handleHealth)
	mux.HandleFunc("GET /ready", c.handleReady)
	mux.HandleFunc("GET /live", c.handleLive)
}

// SetReady marks the service as ready to accept traffic.
func (c *Checker) SetReady(ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = ready
}

// IsReady returns whether the service is ready.
func (c *Checker) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// handleHealth handles the /health endpoint - basic liveness check.
func (c *Checker) handleHealth(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   c.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   c.version,
		Commit:    c.commit,
	})
}

// handleLive handles the /live endpoint - kubernetes liveness probe.
func (c *Checker) handleLive(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: c.serviceName,
	})
}

// handleReady handles the /ready endpoint - checks database connectivity.
func (c *Checker) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	allHealthy := true

	if !c.IsReady() {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	if c.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), c.pingTimeout)
		defer cancel()

		if err := c.db.Ping(ctx); err != nil {
			allHealthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = "ok"
		}
	}

	response := ReadyResponse{
		Service:  c.serviceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	status := http.StatusOK
	response.Status = "ok"
	if !allHealthy {
		response.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	c.writeJSON(w, status, response)
}

func (c *Checker) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && c.logger != nil {
		c.logger.WithError(err).Warn("Failed to write health response")
	}
}
