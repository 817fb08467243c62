package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/trade-journal/internal/growth"
)

// Calculation is a persisted growth projection. ObservedProfit is filled in
// later from real results and feeds recalibration.
type Calculation struct {
	ID              uuid.UUID `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	Capital         float64   `db:"capital" json:"capital"`
	TotalTrades     int       `db:"total_trades" json:"total_trades"`
	Accuracy        float64   `db:"accuracy" json:"accuracy"`
	RiskRewardRatio float64   `db:"risk_reward_ratio" json:"risk_reward_ratio"`
	Policy          string    `db:"policy" json:"policy"`
	KellyCriterion  float64   `db:"kelly_criterion" json:"kelly_criterion"`
	ExpectedValue   float64   `db:"expected_value" json:"expected_value"`
	KellyFraction   float64   `db:"kelly_fraction" json:"kelly_fraction"`
	FinalBalance    float64   `db:"final_balance" json:"final_balance"`
	Profit          float64   `db:"profit" json:"profit"`
	NoEdge          bool      `db:"no_edge" json:"no_edge"`
	ObservedProfit  *float64  `db:"observed_profit" json:"observed_profit,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Scenario rebuilds the validated growth scenario of the calculation
func (c *Calculation) Scenario() (growth.Scenario, error) {
	return growth.NewScenario(c.Capital, c.TotalTrades, c.Accuracy, c.RiskRewardRatio)
}

// ApplyResult copies a projection onto the calculation
func (c *Calculation) ApplyResult(policy string, r growth.GrowthResult) {
	c.Capital = r.Scenario.Capital
	c.TotalTrades = r.Scenario.TotalTrades
	c.Accuracy = r.Scenario.Accuracy
	c.RiskRewardRatio = r.Scenario.RiskRewardRatio
	c.Policy = policy
	c.KellyCriterion = r.Kelly.KellyCriterion
	c.ExpectedValue = r.Kelly.ExpectedValue
	c.KellyFraction = r.KellyFraction
	c.FinalBalance = r.FinalBalance
	c.Profit = r.Profit
	c.NoEdge = r.NoEdge
}

// CalculationRequest is the payload for creating a calculation or requesting
// an estimate. Policy selects a named fraction policy; empty uses the
// configured default.
type CalculationRequest struct {
	Capital         float64  `json:"capital" validate:"gt=0"`
	TotalTrades     int      `json:"total_trades" validate:"gte=0"`
	Accuracy        float64  `json:"accuracy" validate:"gte=0,lte=100"`
	RiskRewardRatio float64  `json:"risk_reward_ratio" validate:"gt=0"`
	Policy          string   `json:"policy" validate:"omitempty,oneof=full half quarter piecewise power-law calibrated"`
	ObservedProfit  *float64 `json:"observed_profit"`
}

// Scenario converts the request to a validated growth scenario
func (r *CalculationRequest) Scenario() (growth.Scenario, error) {
	return growth.NewScenario(r.Capital, r.TotalTrades, r.Accuracy, r.RiskRewardRatio)
}
