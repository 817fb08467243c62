// Package api serves the journal's JSON-over-HTTP interface.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/trade-journal/internal/auth"
	"github.com/yourusername/trade-journal/internal/config"
	"github.com/yourusername/trade-journal/internal/health"
	"github.com/yourusername/trade-journal/internal/logger"
	"github.com/yourusername/trade-journal/internal/metrics"
	"github.com/yourusername/trade-journal/internal/repository"
)

const defaultMaxBodyBytes = 1 << 20

// Deps are the collaborators of the API server
type Deps struct {
	Trades       repository.TradeRepository
	Sessions     repository.SessionRepository
	Calculations repository.CalculationRepository
	Credentials  auth.CredentialStore
	Throttle     *auth.Throttle
	Policies     *PolicySet
	Health       *health.Checker
	Logger       *logrus.Logger
	MaxBodyBytes int64
	// MetricsPath mounts the Prometheus handler; empty disables it
	MetricsPath string
}

// Server routes API requests to the journal repositories
type Server struct {
	trades       repository.TradeRepository
	sessions     repository.SessionRepository
	calculations repository.CalculationRepository
	credentials  auth.CredentialStore
	throttle     *auth.Throttle
	policies     *PolicySet

	logger       *logrus.Logger
	audit        *logger.AuditLogger
	requests     *logger.RequestLogger
	maxBodyBytes int64

	handler http.Handler
}

// NewServer validates the dependencies and builds the route table
func NewServer(deps Deps) (*Server, error) {
	if deps.Trades == nil || deps.Sessions == nil || deps.Calculations == nil {
		return nil, errors.New("api: repositories are required")
	}
	if deps.Credentials == nil || deps.Throttle == nil {
		return nil, errors.New("api: credential store and throttle are required")
	}
	if deps.Policies == nil {
		return nil, errors.New("api: policy set is required")
	}
	log := deps.Logger
	if log == nil {
		log = logrus.New()
	}
	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	s := &Server{
		trades:       deps.Trades,
		sessions:     deps.Sessions,
		calculations: deps.Calculations,
		credentials:  deps.Credentials,
		throttle:     deps.Throttle,
		policies:     deps.Policies,
		logger:       log,
		audit:        logger.NewAuditLogger(log),
		requests:     logger.NewRequestLogger(log),
		maxBodyBytes: maxBody,
	}

	mux := http.NewServeMux()
	s.routes(mux)
	if deps.Health != nil {
		deps.Health.Register(mux)
	}
	if deps.MetricsPath != "" {
		mux.Handle("GET "+deps.MetricsPath, metrics.Handler())
	}
	s.handler = s.instrument(mux)
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.HandleFunc("GET /api/trades", s.requireUser(s.handleListTrades))
	mux.HandleFunc("POST /api/trades", s.requireUser(s.handleCreateTrade))
	mux.HandleFunc("GET /api/trades/{id}", s.requireUser(s.handleGetTrade))
	mux.HandleFunc("PUT /api/trades/{id}", s.requireUser(s.handleUpdateTrade))
	mux.HandleFunc("DELETE /api/trades/{id}", s.requireUser(s.handleDeleteTrade))

	mux.HandleFunc("GET /api/sessions", s.requireUser(s.handleListSessions))
	mux.HandleFunc("POST /api/sessions", s.requireUser(s.handleCreateSession))
	mux.HandleFunc("GET /api/sessions/{id}", s.requireUser(s.handleGetSession))
	mux.HandleFunc("PUT /api/sessions/{id}", s.requireUser(s.handleUpdateSession))
	mux.HandleFunc("DELETE /api/sessions/{id}", s.requireUser(s.handleDeleteSession))
	mux.HandleFunc("GET /api/sessions/{id}/trades", s.requireUser(s.handleSessionTrades))

	mux.HandleFunc("GET /api/calculations", s.requireUser(s.handleListCalculations))
	mux.HandleFunc("POST /api/calculations", s.requireUser(s.handleCreateCalculation))
	mux.HandleFunc("POST /api/calculations/estimate", s.handleEstimate)
	mux.HandleFunc("GET /api/calculations/{id}", s.requireUser(s.handleGetCalculation))
	mux.HandleFunc("DELETE /api/calculations/{id}", s.requireUser(s.handleDeleteCalculation))
}

// Handler returns the instrumented router
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  cfg.IdleTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("address", cfg.Address).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	return nil
}
