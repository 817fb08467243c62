package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session groups trades taken over one trading period
type Session struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	UserID          string          `db:"user_id" json:"user_id"`
	Name            string          `db:"name" json:"name"`
	StartingCapital decimal.Decimal `db:"starting_capital" json:"starting_capital"`
	StartedAt       time.Time       `db:"started_at" json:"started_at"`
	EndedAt         *time.Time      `db:"ended_at" json:"ended_at,omitempty"`
	Notes           string          `db:"notes" json:"notes"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the session is still open
func (s *Session) IsActive() bool {
	return s.EndedAt == nil
}

// SessionRequest is the create/update payload for a session
type SessionRequest struct {
	Name            string          `json:"name" validate:"required,min=1,max=255"`
	StartingCapital decimal.Decimal `json:"starting_capital" validate:"gt=0"`
	StartedAt       time.Time       `json:"started_at" validate:"required"`
	EndedAt         *time.Time      `json:"ended_at"`
	Notes           string          `json:"notes" validate:"max=4000"`
}

// ApplyTo copies the request onto a session
func (r *SessionRequest) ApplyTo(s *Session) {
	s.Name = r.Name
	s.StartingCapital = r.StartingCapital
	s.StartedAt = r.StartedAt
	s.EndedAt = r.EndedAt
	s.Notes = r.Notes
}

// SessionSummary aggregates the closed trades of a session
type SessionSummary struct {
	Trades       int             `json:"trades"`
	Wins         int             `json:"wins"`
	Losses       int             `json:"losses"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	Accuracy     float64         `json:"accuracy"`
	EndingEquity decimal.Decimal `json:"ending_equity"`
}

// Summarize aggregates closed trades against the session's starting capital.
// Accuracy is the win percentage over closed trades.
func (s *Session) Summarize(trades []*Trade) SessionSummary {
	summary := SessionSummary{NetProfit: decimal.Zero}
	for _, t := range trades {
		pnl, closed := t.ProfitLoss()
		if !closed {
			continue
		}
		summary.Trades++
		summary.NetProfit = summary.NetProfit.Add(pnl)
		switch {
		case pnl.IsPositive():
			summary.Wins++
		case pnl.IsNegative():
			summary.Losses++
		}
	}
	if summary.Trades > 0 {
		summary.Accuracy = float64(summary.Wins) / float64(summary.Trades) * 100
	}
	summary.EndingEquity = s.StartingCapital.Add(summary.NetProfit)
	return summary
}
