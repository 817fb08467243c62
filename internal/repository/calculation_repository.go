package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/trade-journal/internal/models"
)

const calculationColumns = `id, user_id, capital, total_trades, accuracy, risk_reward_ratio, policy,
	kelly_criterion, expected_value, kelly_fraction, final_balance, profit, no_edge, observed_profit, created_at`

// PostgresCalculationRepository implements CalculationRepository for PostgreSQL
type PostgresCalculationRepository struct {
	provider DBProvider
}

// NewPostgresCalculationRepository creates a new calculation repository
func NewPostgresCalculationRepository(provider DBProvider) CalculationRepository {
	return &PostgresCalculationRepository{provider: provider}
}

// Create inserts a new calculation
func (r *PostgresCalculationRepository) Create(ctx context.Context, calc *models.Calculation) error {
	if calc.UserID == "" {
		return models.ErrMissingUser
	}
	if calc.ID == uuid.Nil {
		calc.ID = uuid.New()
	}

	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO calculations (id, user_id, capital, total_trades, accuracy, risk_reward_ratio, policy,
			kelly_criterion, expected_value, kelly_fraction, final_balance, profit, no_edge, observed_profit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at
	`

	err = db.QueryRow(ctx, query,
		calc.ID, calc.UserID, calc.Capital, calc.TotalTrades, calc.Accuracy, calc.RiskRewardRatio,
		calc.Policy, calc.KellyCriterion, calc.ExpectedValue, calc.KellyFraction,
		calc.FinalBalance, calc.Profit, calc.NoEdge, calc.ObservedProfit,
	).Scan(&calc.CreatedAt)
	if err != nil {
		return mapError(err, "create calculation")
	}

	return nil
}

// GetByID retrieves a calculation by ID
func (r *PostgresCalculationRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*models.Calculation, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + calculationColumns + ` FROM calculations WHERE id = $1 AND user_id = $2`

	calc, err := scanCalculation(db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, mapError(err, "get calculation")
	}
	return calc, nil
}

// List retrieves the user's calculations, newest first
func (r *PostgresCalculationRepository) List(ctx context.Context, userID string, opts ListOptions) ([]*models.Calculation, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + calculationColumns + ` FROM calculations WHERE user_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`

	rows, err := db.Query(ctx, query, userID, normalizeLimit(opts.Limit), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query calculations: %w", err)
	}
	defer rows.Close()

	return collectCalculations(rows)
}

// ListWithObservedProfit retrieves calculations that have an observed profit
func (r *PostgresCalculationRepository) ListWithObservedProfit(ctx context.Context, limit int) ([]*models.Calculation, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + calculationColumns + ` FROM calculations
		WHERE observed_profit IS NOT NULL AND total_trades > 0
		ORDER BY created_at DESC, id LIMIT $1`

	rows, err := db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query observed calculations: %w", err)
	}
	defer rows.Close()

	return collectCalculations(rows)
}

// Delete deletes a calculation
func (r *PostgresCalculationRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	commandTag, err := db.Exec(ctx, "DELETE FROM calculations WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete calculation: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func scanCalculation(row pgx.Row) (*models.Calculation, error) {
	c := &models.Calculation{}
	err := row.Scan(
		&c.ID, &c.UserID, &c.Capital, &c.TotalTrades, &c.Accuracy, &c.RiskRewardRatio, &c.Policy,
		&c.KellyCriterion, &c.ExpectedValue, &c.KellyFraction, &c.FinalBalance, &c.Profit,
		&c.NoEdge, &c.ObservedProfit, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func collectCalculations(rows pgx.Rows) ([]*models.Calculation, error) {
	calcs := make([]*models.Calculation, 0)
	for rows.Next() {
		c, err := scanCalculation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calculation: %w", err)
		}
		calcs = append(calcs, c)
	}
	return calcs, rows.Err()
}
