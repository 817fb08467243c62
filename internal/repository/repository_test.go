package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/trade-journal/internal/models"
)

func TestNewRepositoriesRequiresProvider(t *testing.T) {
	_, err := NewRepositories(nil)
	require.Error(t, err)
}

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero uses default", 0, defaultListLimit},
		{"negative uses default", -3, defaultListLimit},
		{"within range", 20, 20},
		{"clamped", 10000, maxListLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeLimit(tt.limit))
		})
	}
}

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError(pgx.ErrNoRows, "get trade"), models.ErrNotFound)
	assert.ErrorIs(t, mapError(fmt.Errorf("wrapped: %w", pgx.ErrNoRows), "get trade"), models.ErrNotFound)

	dup := mapError(&pgconn.PgError{Code: pgUniqueViolation}, "create trade")
	assert.ErrorIs(t, dup, models.ErrDuplicateKey)

	fk := mapError(&pgconn.PgError{Code: pgForeignKeyViolation}, "create trade")
	assert.ErrorIs(t, fk, models.ErrNotFound)

	other := errors.New("connection reset")
	mapped := mapError(other, "list trades")
	assert.ErrorIs(t, mapped, other)
	assert.Contains(t, mapped.Error(), "failed to list trades")
}
