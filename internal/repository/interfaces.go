package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/trade-journal/internal/models"
)

// ListOptions pages a per-user listing
type ListOptions struct {
	Limit  int
	Offset int
}

// TradeFilter narrows a trade listing
type TradeFilter struct {
	ListOptions
	Symbol  string
	Outcome models.TradeOutcome
}

// TradeRepository defines the interface for trade data access. Every read and
// write is scoped to the owning user.
type TradeRepository interface {
	Create(ctx context.Context, trade *models.Trade) error
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*models.Trade, error)
	List(ctx context.Context, userID string, filter TradeFilter) ([]*models.Trade, error)
	ListBySession(ctx context.Context, userID string, sessionID uuid.UUID) ([]*models.Trade, error)
	Update(ctx context.Context, trade *models.Trade) error
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

// SessionRepository defines the interface for session data access
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*models.Session, error)
	List(ctx context.Context, userID string, opts ListOptions) ([]*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

// CalculationRepository defines the interface for calculation data access
type CalculationRepository interface {
	Create(ctx context.Context, calc *models.Calculation) error
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*models.Calculation, error)
	List(ctx context.Context, userID string, opts ListOptions) ([]*models.Calculation, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	// ListWithObservedProfit returns the newest calculations of all users
	// that carry an observed profit, for recalibration
	ListWithObservedProfit(ctx context.Context, limit int) ([]*models.Calculation, error)
}
