package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/trade-journal/internal/models"
)

const tradeColumns = `id, user_id, session_id, symbol, direction, entry_price, exit_price, quantity,
	stop_loss, take_profit, fees, outcome, notes, opened_at, closed_at, created_at, updated_at`

// PostgresTradeRepository implements TradeRepository for PostgreSQL
type PostgresTradeRepository struct {
	provider DBProvider
}

// NewPostgresTradeRepository creates a new trade repository
func NewPostgresTradeRepository(provider DBProvider) TradeRepository {
	return &PostgresTradeRepository{provider: provider}
}

// Create inserts a new trade, assigning an ID when unset
func (r *PostgresTradeRepository) Create(ctx context.Context, trade *models.Trade) error {
	if trade.UserID == "" {
		return models.ErrMissingUser
	}
	if trade.ID == uuid.Nil {
		trade.ID = uuid.New()
	}

	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO trades (id, user_id, session_id, symbol, direction, entry_price, exit_price, quantity,
			stop_loss, take_profit, fees, outcome, notes, opened_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`

	err = db.QueryRow(ctx, query,
		trade.ID, trade.UserID, trade.SessionID, trade.Symbol, trade.Direction,
		trade.EntryPrice, trade.ExitPrice, trade.Quantity, trade.StopLoss, trade.TakeProfit,
		trade.Fees, trade.Outcome, trade.Notes, trade.OpenedAt, trade.ClosedAt,
	).Scan(&trade.CreatedAt, &trade.UpdatedAt)
	if err != nil {
		return mapError(err, "create trade")
	}

	return nil
}

// GetByID retrieves a trade by ID
func (r *PostgresTradeRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*models.Trade, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1 AND user_id = $2`

	trade, err := scanTrade(db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, mapError(err, "get trade")
	}
	return trade, nil
}

// List retrieves the user's trades, newest first
func (r *PostgresTradeRepository) List(ctx context.Context, userID string, filter TradeFilter) ([]*models.Trade, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	if filter.Symbol != "" {
		args = append(args, filter.Symbol)
		conditions = append(conditions, fmt.Sprintf("symbol = $%d", len(args)))
	}
	if filter.Outcome != "" {
		args = append(args, filter.Outcome)
		conditions = append(conditions, fmt.Sprintf("outcome = $%d", len(args)))
	}
	args = append(args, normalizeLimit(filter.Limit), filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM trades WHERE %s ORDER BY opened_at DESC, id LIMIT $%d OFFSET $%d`,
		tradeColumns, strings.Join(conditions, " AND "), len(args)-1, len(args))

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// ListBySession retrieves the trades of one session in chronological order
func (r *PostgresTradeRepository) ListBySession(ctx context.Context, userID string, sessionID uuid.UUID) ([]*models.Trade, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + tradeColumns + ` FROM trades WHERE user_id = $1 AND session_id = $2 ORDER BY opened_at ASC, id`

	rows, err := db.Query(ctx, query, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session trades: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// Update updates an existing trade
func (r *PostgresTradeRepository) Update(ctx context.Context, trade *models.Trade) error {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE trades SET
			session_id = $3, symbol = $4, direction = $5, entry_price = $6, exit_price = $7,
			quantity = $8, stop_loss = $9, take_profit = $10, fees = $11, outcome = $12,
			notes = $13, opened_at = $14, closed_at = $15, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`

	err = db.QueryRow(ctx, query,
		trade.ID, trade.UserID, trade.SessionID, trade.Symbol, trade.Direction,
		trade.EntryPrice, trade.ExitPrice, trade.Quantity, trade.StopLoss, trade.TakeProfit,
		trade.Fees, trade.Outcome, trade.Notes, trade.OpenedAt, trade.ClosedAt,
	).Scan(&trade.UpdatedAt)
	if err != nil {
		return mapError(err, "update trade")
	}

	return nil
}

// Delete deletes a trade
func (r *PostgresTradeRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	commandTag, err := db.Exec(ctx, "DELETE FROM trades WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func scanTrade(row pgx.Row) (*models.Trade, error) {
	t := &models.Trade{}
	err := row.Scan(
		&t.ID, &t.UserID, &t.SessionID, &t.Symbol, &t.Direction, &t.EntryPrice, &t.ExitPrice,
		&t.Quantity, &t.StopLoss, &t.TakeProfit, &t.Fees, &t.Outcome, &t.Notes,
		&t.OpenedAt, &t.ClosedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func collectTrades(rows pgx.Rows) ([]*models.Trade, error) {
	trades := make([]*models.Trade, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
