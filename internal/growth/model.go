package growth

import (
	"fmt"
	"math"
)

// MaxKellyFraction is the largest share of full Kelly a projection may risk
const MaxKellyFraction = 1.0

// GrowthResult is the outcome of projecting a scenario
type GrowthResult struct {
	Scenario       Scenario        `json:"scenario"`
	Kelly          KellyParameters `json:"kelly"`
	KellyFraction  float64         `json:"kelly_fraction"`
	PerTradeReturn float64         `json:"per_trade_return"`
	FinalBalance   float64         `json:"final_balance"`
	Profit         float64         `json:"profit"`
	NoEdge         bool            `json:"no_edge"`
}

// ComputeProfit returns the projected profit of trading the scenario while
// risking kellyFraction of full Kelly on every trade
func ComputeProfit(s Scenario, kellyFraction float64) (float64, error) {
	result, err := Project(s, kellyFraction)
	if err != nil {
		return 0, err
	}
	return result.Profit, nil
}

// Project compounds the scenario at kellyFraction of full Kelly.
// Systems without an edge project zero profit for any fraction. A balance
// beyond the float64 range fails with ErrProjectionOverflow.
func Project(s Scenario, kellyFraction float64) (GrowthResult, error) {
	if err := s.Validate(); err != nil {
		return GrowthResult{}, err
	}
	if err := ValidateKellyFraction(kellyFraction); err != nil {
		return GrowthResult{}, err
	}

	kelly := s.Kelly()
	result := GrowthResult{
		Scenario:      s,
		Kelly:         kelly,
		KellyFraction: kellyFraction,
		FinalBalance:  s.Capital,
	}
	if !kelly.HasEdge() {
		result.NoEdge = true
		return result, nil
	}

	result.PerTradeReturn = kelly.KellyCriterion * kellyFraction
	result.FinalBalance = Compound(s.Capital, result.PerTradeReturn, s.TotalTrades)
	if !isFinite(result.FinalBalance) {
		return GrowthResult{}, fmt.Errorf("%w: %d trades at %.6f per trade", ErrProjectionOverflow, s.TotalTrades, result.PerTradeReturn)
	}
	result.Profit = result.FinalBalance - s.Capital
	return result, nil
}

// Compound grows capital by perTradeReturn over the given number of trades
func Compound(capital, perTradeReturn float64, trades int) float64 {
	if trades <= 0 {
		return capital
	}
	return capital * math.Pow(1+perTradeReturn, float64(trades))
}

// ImpliedPerTradeReturn inverts Compound: the per-trade return that turns
// capital into capital+profit over the given trades. ok is false when no
// real return exists.
func ImpliedPerTradeReturn(capital, profit float64, trades int) (float64, bool) {
	if capital <= 0 || trades <= 0 {
		return 0, false
	}
	growth := profit/capital + 1
	if growth <= 0 {
		return 0, false
	}
	return math.Pow(growth, 1/float64(trades)) - 1, true
}

// ValidateKellyFraction ensures f lies in (0, MaxKellyFraction]
func ValidateKellyFraction(f float64) error {
	if !isFinite(f) || f <= 0 || f > MaxKellyFraction {
		return fmt.Errorf("%w: got %v", ErrInvalidKellyFraction, f)
	}
	return nil
}

// Model projects scenarios with a pluggable fraction-selection policy
type Model struct {
	Policy FractionPolicy
}

// NewModel creates a model using policy, falling back to half Kelly
func NewModel(policy FractionPolicy) *Model {
	if policy == nil {
		policy = ConstantFraction{Value: 0.5}
	}
	return &Model{Policy: policy}
}

// Project resolves the Kelly fraction through the policy and projects the scenario
func (m *Model) Project(s Scenario) (GrowthResult, error) {
	if err := s.Validate(); err != nil {
		return GrowthResult{}, err
	}
	kelly := s.Kelly()
	if !kelly.HasEdge() {
		return GrowthResult{
			Scenario:     s,
			Kelly:        kelly,
			FinalBalance: s.Capital,
			NoEdge:       true,
		}, nil
	}
	return Project(s, m.Policy.Fraction(s, kelly))
}
