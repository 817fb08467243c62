package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yourusername/trade-journal/internal/database"
	"github.com/yourusername/trade-journal/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DBProvider hands out the shared connection pool
type DBProvider interface {
	DB(ctx context.Context) (*database.DB, error)
}

// Repositories holds all repository implementations
type Repositories struct {
	Trade       TradeRepository
	Session     SessionRepository
	Calculation CalculationRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(provider DBProvider) (*Repositories, error) {
	if provider == nil {
		return nil, fmt.Errorf("database provider is required")
	}

	return &Repositories{
		Trade:       NewPostgresTradeRepository(provider),
		Session:     NewPostgresSessionRepository(provider),
		Calculation: NewPostgresCalculationRepository(provider),
	}, nil
}

// normalizeLimit clamps a page size to (0, maxListLimit]
func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}

// mapError translates driver errors to model sentinels
func mapError(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, models.ErrDuplicateKey)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: referenced record: %w", op, models.ErrNotFound)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
