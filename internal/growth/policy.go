package growth

import (
	"fmt"
	"math"
	"sort"
)

// minPolicyFraction keeps clamped policy output strictly positive
const minPolicyFraction = 1e-6

// FractionPolicy selects the share of full Kelly risked per trade
type FractionPolicy interface {
	Name() string
	Fraction(s Scenario, k KellyParameters) float64
	Params() map[string]float64
}

// ConstantFraction risks the same fraction of Kelly for every scenario
type ConstantFraction struct {
	Value float64
}

// Name returns the policy name
func (c ConstantFraction) Name() string {
	return fmt.Sprintf("constant(%.4f)", c.Value)
}

// Fraction returns the configured value
func (c ConstantFraction) Fraction(Scenario, KellyParameters) float64 {
	return c.Value
}

// Params returns the policy parameters
func (c ConstantFraction) Params() map[string]float64 {
	return map[string]float64{"fraction": c.Value}
}

// Tier maps an expected-value threshold to a Kelly fraction
type Tier struct {
	MinExpectedValue float64 `json:"min_expected_value" yaml:"min_expected_value"`
	Fraction         float64 `json:"fraction" yaml:"fraction"`
}

// DefaultPiecewiseTiers is the candidate table used when none is configured
var DefaultPiecewiseTiers = []Tier{
	{MinExpectedValue: 1.0, Fraction: 0.8712},
	{MinExpectedValue: 0.5, Fraction: 0.75},
	{MinExpectedValue: 0.2, Fraction: 0.6},
}

// PiecewiseFraction picks a fraction by expected-value tier: the highest
// threshold not above the scenario's expected value wins
type PiecewiseFraction struct {
	tiers    []Tier
	fallback float64
}

// NewPiecewiseFraction validates the tiers and sorts them by descending threshold
func NewPiecewiseFraction(tiers []Tier, fallback float64) (*PiecewiseFraction, error) {
	if err := ValidateKellyFraction(fallback); err != nil {
		return nil, fmt.Errorf("default tier: %w", err)
	}
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	for _, t := range sorted {
		if err := ValidateKellyFraction(t.Fraction); err != nil {
			return nil, fmt.Errorf("tier %.4f: %w", t.MinExpectedValue, err)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinExpectedValue > sorted[j].MinExpectedValue
	})
	return &PiecewiseFraction{tiers: sorted, fallback: fallback}, nil
}

// Name returns the policy name
func (p *PiecewiseFraction) Name() string {
	return fmt.Sprintf("piecewise(%d tiers)", len(p.tiers))
}

// Fraction returns the fraction of the first tier the expected value reaches
func (p *PiecewiseFraction) Fraction(_ Scenario, k KellyParameters) float64 {
	for _, t := range p.tiers {
		if k.ExpectedValue >= t.MinExpectedValue {
			return t.Fraction
		}
	}
	return p.fallback
}

// Params returns the tier table flattened into named parameters
func (p *PiecewiseFraction) Params() map[string]float64 {
	params := map[string]float64{"default": p.fallback}
	for _, t := range p.tiers {
		params[fmt.Sprintf("ev>=%.2f", t.MinExpectedValue)] = t.Fraction
	}
	return params
}

// Tiers returns a copy of the tier table in evaluation order
func (p *PiecewiseFraction) Tiers() []Tier {
	out := make([]Tier, len(p.tiers))
	copy(out, p.tiers)
	return out
}

// PowerLawFraction blends the edge statistics multiplicatively:
// Scale * kelly^KellyExp * ev^EVExp * R^RatioExp * winRate^WinRateExp,
// clamped to (0, 1]
type PowerLawFraction struct {
	Scale      float64
	KellyExp   float64
	EVExp      float64
	RatioExp   float64
	WinRateExp float64
}

// DefaultPowerLaw is the blend served when no fitted parameters exist
var DefaultPowerLaw = PowerLawFraction{Scale: 0.9, KellyExp: 0.1, EVExp: 0.05, RatioExp: 0, WinRateExp: 0.1}

// Name returns the policy name
func (p PowerLawFraction) Name() string {
	return "power-law"
}

// Fraction evaluates the blend for a scenario with an edge
func (p PowerLawFraction) Fraction(s Scenario, k KellyParameters) float64 {
	f := p.Scale *
		math.Pow(k.KellyCriterion, p.KellyExp) *
		math.Pow(k.ExpectedValue, p.EVExp) *
		math.Pow(s.RiskRewardRatio, p.RatioExp) *
		math.Pow(k.WinRate, p.WinRateExp)
	return clampFraction(f)
}

// Params returns the policy parameters
func (p PowerLawFraction) Params() map[string]float64 {
	return map[string]float64{
		"scale":       p.Scale,
		"kelly_exp":   p.KellyExp,
		"ev_exp":      p.EVExp,
		"ratio_exp":   p.RatioExp,
		"winrate_exp": p.WinRateExp,
	}
}

func clampFraction(f float64) float64 {
	if math.IsNaN(f) || f <= 0 {
		return minPolicyFraction
	}
	if f > MaxKellyFraction {
		return MaxKellyFraction
	}
	return f
}
