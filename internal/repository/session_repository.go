package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/trade-journal/internal/models"
)

const sessionColumns = `id, user_id, name, starting_capital, started_at, ended_at, notes, created_at, updated_at`

// PostgresSessionRepository implements SessionRepository for PostgreSQL
type PostgresSessionRepository struct {
	provider DBProvider
}

// NewPostgresSessionRepository creates a new session repository
func NewPostgresSessionRepository(provider DBProvider) SessionRepository {
	return &PostgresSessionRepository{provider: provider}
}

// Create inserts a new session
func (r *PostgresSessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.UserID == "" {
		return models.ErrMissingUser
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sessions (id, user_id, name, starting_capital, started_at, ended_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err = db.QueryRow(ctx, query,
		session.ID, session.UserID, session.Name, session.StartingCapital,
		session.StartedAt, session.EndedAt, session.Notes,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return mapError(err, "create session")
	}

	return nil
}

// GetByID retrieves a session by ID
func (r *PostgresSessionRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*models.Session, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 AND user_id = $2`

	session, err := scanSession(db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, mapError(err, "get session")
	}
	return session, nil
}

// List retrieves the user's sessions, most recent first
func (r *PostgresSessionRepository) List(ctx context.Context, userID string, opts ListOptions) ([]*models.Session, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1 ORDER BY started_at DESC, id LIMIT $2 OFFSET $3`

	rows, err := db.Query(ctx, query, userID, normalizeLimit(opts.Limit), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*models.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// Update updates an existing session
func (r *PostgresSessionRepository) Update(ctx context.Context, session *models.Session) error {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE sessions SET
			name = $3, starting_capital = $4, started_at = $5, ended_at = $6, notes = $7, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`

	err = db.QueryRow(ctx, query,
		session.ID, session.UserID, session.Name, session.StartingCapital,
		session.StartedAt, session.EndedAt, session.Notes,
	).Scan(&session.UpdatedAt)
	if err != nil {
		return mapError(err, "update session")
	}

	return nil
}

// Delete deletes a session; its trades are kept and detached
func (r *PostgresSessionRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	commandTag, err := db.Exec(ctx, "DELETE FROM sessions WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func scanSession(row pgx.Row) (*models.Session, error) {
	s := &models.Session{}
	err := row.Scan(
		&s.ID, &s.UserID, &s.Name, &s.StartingCapital, &s.StartedAt,
		&s.EndedAt, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}
