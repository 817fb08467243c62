package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeDirection represents the side of a trade (LONG or SHORT)
type TradeDirection string

const (
	TradeDirectionLong  TradeDirection = "LONG"
	TradeDirectionShort TradeDirection = "SHORT"
)

// TradeOutcome represents how a trade resolved
type TradeOutcome string

const (
	TradeOutcomeOpen      TradeOutcome = "OPEN"
	TradeOutcomeWin       TradeOutcome = "WIN"
	TradeOutcomeLoss      TradeOutcome = "LOSS"
	TradeOutcomeBreakeven TradeOutcome = "BREAKEVEN"
)

// Trade represents a journaled trade
type Trade struct {
	ID         uuid.UUID           `db:"id" json:"id"`
	UserID     string              `db:"user_id" json:"user_id"`
	SessionID  *uuid.UUID          `db:"session_id" json:"session_id,omitempty"`
	Symbol     string              `db:"symbol" json:"symbol"`
	Direction  TradeDirection      `db:"direction" json:"direction"`
	EntryPrice decimal.Decimal     `db:"entry_price" json:"entry_price"`
	ExitPrice  decimal.NullDecimal `db:"exit_price" json:"exit_price"`
	Quantity   decimal.Decimal     `db:"quantity" json:"quantity"`
	StopLoss   decimal.NullDecimal `db:"stop_loss" json:"stop_loss"`
	TakeProfit decimal.NullDecimal `db:"take_profit" json:"take_profit"`
	Fees       decimal.Decimal     `db:"fees" json:"fees"`
	Outcome    TradeOutcome        `db:"outcome" json:"outcome"`
	Notes      string              `db:"notes" json:"notes"`
	OpenedAt   time.Time           `db:"opened_at" json:"opened_at"`
	ClosedAt   *time.Time          `db:"closed_at" json:"closed_at,omitempty"`
	CreatedAt  time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time           `db:"updated_at" json:"updated_at"`
}

// IsClosed reports whether the trade has an exit price
func (t *Trade) IsClosed() bool {
	return t.ExitPrice.Valid
}

// ProfitLoss returns realised P&L net of fees, or false while the trade is open
func (t *Trade) ProfitLoss() (decimal.Decimal, bool) {
	if !t.ExitPrice.Valid {
		return decimal.Zero, false
	}
	move := t.ExitPrice.Decimal.Sub(t.EntryPrice)
	if t.Direction == TradeDirectionShort {
		move = move.Neg()
	}
	return move.Mul(t.Quantity).Sub(t.Fees), true
}

// RiskReward returns the planned reward-to-risk ratio from stop loss and take
// profit, or false when either is missing or the risk is zero
func (t *Trade) RiskReward() (decimal.Decimal, bool) {
	if !t.StopLoss.Valid || !t.TakeProfit.Valid {
		return decimal.Zero, false
	}
	risk := t.EntryPrice.Sub(t.StopLoss.Decimal).Abs()
	if risk.IsZero() {
		return decimal.Zero, false
	}
	reward := t.TakeProfit.Decimal.Sub(t.EntryPrice).Abs()
	return reward.Div(risk), true
}

// ResolveOutcome derives the outcome from realised P&L
func (t *Trade) ResolveOutcome() TradeOutcome {
	pnl, closed := t.ProfitLoss()
	switch {
	case !closed:
		return TradeOutcomeOpen
	case pnl.IsPositive():
		return TradeOutcomeWin
	case pnl.IsNegative():
		return TradeOutcomeLoss
	default:
		return TradeOutcomeBreakeven
	}
}

// TradeRequest is the create/update payload for a trade
type TradeRequest struct {
	SessionID  *uuid.UUID          `json:"session_id"`
	Symbol     string              `json:"symbol" validate:"required,min=1,max=32"`
	Direction  TradeDirection      `json:"direction" validate:"required,oneof=LONG SHORT"`
	EntryPrice decimal.Decimal     `json:"entry_price" validate:"gt=0"`
	ExitPrice  decimal.NullDecimal `json:"exit_price" validate:"omitempty,gt=0"`
	Quantity   decimal.Decimal     `json:"quantity" validate:"gt=0"`
	StopLoss   decimal.NullDecimal `json:"stop_loss" validate:"omitempty,gt=0"`
	TakeProfit decimal.NullDecimal `json:"take_profit" validate:"omitempty,gt=0"`
	Fees       decimal.Decimal     `json:"fees" validate:"gte=0"`
	Notes      string              `json:"notes" validate:"max=4000"`
	OpenedAt   time.Time           `json:"opened_at" validate:"required"`
	ClosedAt   *time.Time          `json:"closed_at"`
}

// ApplyTo copies the request onto a trade and re-derives the outcome
func (r *TradeRequest) ApplyTo(t *Trade) {
	t.SessionID = r.SessionID
	t.Symbol = r.Symbol
	t.Direction = r.Direction
	t.EntryPrice = r.EntryPrice
	t.ExitPrice = r.ExitPrice
	t.Quantity = r.Quantity
	t.StopLoss = r.StopLoss
	t.TakeProfit = r.TakeProfit
	t.Fees = r.Fees
	t.Notes = r.Notes
	t.OpenedAt = r.OpenedAt
	t.ClosedAt = r.ClosedAt
	t.Outcome = t.ResolveOutcome()
}
