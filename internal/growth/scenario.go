// Package growth projects account growth from a trading system's historical
// edge using fractional Kelly compounding.
package growth

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidScenario is returned when scenario inputs are out of range
	ErrInvalidScenario = errors.New("invalid scenario")
	// ErrInvalidKellyFraction is returned when a Kelly fraction is outside (0, 1]
	ErrInvalidKellyFraction = errors.New("kelly fraction must be in (0, 1]")
	// ErrProjectionOverflow is returned when compounding leaves the float64
	// range. It wraps ErrInvalidScenario.
	ErrProjectionOverflow = fmt.Errorf("%w: projected balance overflows", ErrInvalidScenario)
)

// Scenario describes the trading system a projection is made for
type Scenario struct {
	Capital         float64 `json:"capital" yaml:"capital"`
	TotalTrades     int     `json:"total_trades" yaml:"total_trades"`
	Accuracy        float64 `json:"accuracy" yaml:"accuracy"`
	RiskRewardRatio float64 `json:"risk_reward_ratio" yaml:"risk_reward_ratio"`
}

// NewScenario builds a validated scenario
func NewScenario(capital float64, totalTrades int, accuracy, riskRewardRatio float64) (Scenario, error) {
	s := Scenario{
		Capital:         capital,
		TotalTrades:     totalTrades,
		Accuracy:        accuracy,
		RiskRewardRatio: riskRewardRatio,
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Validate checks every field against its allowed range
func (s Scenario) Validate() error {
	switch {
	case !isFinite(s.Capital) || s.Capital <= 0:
		return fmt.Errorf("%w: capital must be positive, got %v", ErrInvalidScenario, s.Capital)
	case s.TotalTrades < 0:
		return fmt.Errorf("%w: total trades must not be negative, got %d", ErrInvalidScenario, s.TotalTrades)
	case !isFinite(s.Accuracy) || s.Accuracy < 0 || s.Accuracy > 100:
		return fmt.Errorf("%w: accuracy must be within [0, 100], got %v", ErrInvalidScenario, s.Accuracy)
	case !isFinite(s.RiskRewardRatio) || s.RiskRewardRatio <= 0:
		return fmt.Errorf("%w: risk/reward ratio must be positive, got %v", ErrInvalidScenario, s.RiskRewardRatio)
	}
	return nil
}

// KellyParameters are the edge statistics derived from a scenario
type KellyParameters struct {
	WinRate        float64 `json:"win_rate"`
	KellyCriterion float64 `json:"kelly_criterion"`
	ExpectedValue  float64 `json:"expected_value"`
}

// HasEdge reports whether the system has a positive statistical edge
func (k KellyParameters) HasEdge() bool {
	return k.KellyCriterion > 0
}

// Kelly derives win rate, full Kelly fraction and expected value per unit risked.
// The scenario is assumed valid.
func (s Scenario) Kelly() KellyParameters {
	// Kelly Criterion: f = (bp - q) / b
	// where b = reward/risk ratio, p = win rate, q = 1 - p
	p := s.Accuracy / 100
	q := 1.0 - p
	b := s.RiskRewardRatio
	ev := p*b - q
	return KellyParameters{
		WinRate:        p,
		KellyCriterion: ev / b,
		ExpectedValue:  ev,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
