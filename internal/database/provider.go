package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/trade-journal/internal/config"
	"github.com/yourusername/trade-journal/internal/metrics"
)

// ErrProviderClosed is returned after Close
var ErrProviderClosed = errors.New("database provider closed")

type connectFunc func(ctx context.Context) (*DB, error)

// Provider owns the single connection pool of the process. The pool is
// created on first use; a failed attempt is not cached, so the next caller
// retries.
type Provider struct {
	mu      sync.Mutex
	db      *DB
	closed  bool
	connect connectFunc
	onOpen  func(ctx context.Context, db *DB) error
	logger  *logrus.Logger
}

// NewProvider creates a provider for the configured database. onOpen, when
// non-nil, runs once against a fresh pool before it is handed out (migrations).
func NewProvider(cfg *config.DatabaseConfig, logger *logrus.Logger, onOpen func(ctx context.Context, db *DB) error) *Provider {
	return newProvider(func(ctx context.Context) (*DB, error) {
		return NewDB(ctx, cfg)
	}, logger, onOpen)
}

func newProvider(connect connectFunc, logger *logrus.Logger, onOpen func(ctx context.Context, db *DB) error) *Provider {
	if logger == nil {
		logger = logrus.New()
	}
	return &Provider{connect: connect, onOpen: onOpen, logger: logger}
}

// DB returns the shared pool, connecting on first use
func (p *Provider) DB(ctx context.Context) (*DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrProviderClosed
	}
	if p.db != nil {
		return p.db, nil
	}

	db, err := p.connect(ctx)
	if err != nil {
		metrics.UpdateDatabaseConnected(false)
		p.logger.WithError(err).Warn("Database connection failed")
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if p.onOpen != nil {
		if err := p.onOpen(ctx, db); err != nil {
			db.Close()
			metrics.UpdateDatabaseConnected(false)
			return nil, fmt.Errorf("initialise database: %w", err)
		}
	}

	p.db = db
	metrics.UpdateDatabaseConnected(true)
	p.logger.Info("Database connection pool established")
	return db, nil
}

// Ping connects if needed and verifies connectivity
func (p *Provider) Ping(ctx context.Context) error {
	db, err := p.DB(ctx)
	if err != nil {
		return err
	}
	if err := db.Ping(ctx); err != nil {
		metrics.UpdateDatabaseConnected(false)
		return fmt.Errorf("ping database: %w", err)
	}
	metrics.UpdateDatabaseConnected(true)
	return nil
}

// Close releases the pool. Further calls to DB fail.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.db != nil {
		p.db.Close()
		p.db = nil
	}
	metrics.UpdateDatabaseConnected(false)
}
