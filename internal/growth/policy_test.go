package growth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPiecewiseFractionTiers(t *testing.T) {
	policy, err := NewPiecewiseFraction([]Tier{
		{MinExpectedValue: 0.2, Fraction: 0.6},
		{MinExpectedValue: 1.0, Fraction: 0.8712},
		{MinExpectedValue: 0.5, Fraction: 0.75},
	}, 0.5)
	require.NoError(t, err)

	tests := []struct {
		name string
		ev   float64
		want float64
	}{
		{name: "top tier", ev: 1.0, want: 0.8712},
		{name: "above top tier", ev: 2.4, want: 0.8712},
		{name: "middle tier", ev: 0.7, want: 0.75},
		{name: "lowest tier", ev: 0.2, want: 0.6},
		{name: "below all tiers", ev: 0.1, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Fraction(Scenario{}, KellyParameters{ExpectedValue: tt.ev})
			assert.Equal(t, tt.want, got)
		})
	}

	tiers := policy.Tiers()
	require.Len(t, tiers, 3)
	assert.Equal(t, 1.0, tiers[0].MinExpectedValue)
}

func TestPiecewiseFractionRejectsInvalidFractions(t *testing.T) {
	_, err := NewPiecewiseFraction([]Tier{{MinExpectedValue: 0.5, Fraction: 1.5}}, 0.5)
	assert.Error(t, err)

	_, err = NewPiecewiseFraction(DefaultPiecewiseTiers, 0)
	assert.Error(t, err)
}

func TestPiecewiseFractionMatchesReferenceScenario(t *testing.T) {
	policy, err := NewPiecewiseFraction(DefaultPiecewiseTiers, 0.5)
	require.NoError(t, err)

	s := mustScenario(t, 1000, 10, 50, 3)
	result, err := NewModel(policy).Project(s)
	require.NoError(t, err)
	assert.Equal(t, 0.8712, result.KellyFraction)
}

func TestPowerLawFractionClamps(t *testing.T) {
	s := mustScenario(t, 1000, 10, 50, 3)
	k := s.Kelly()

	high := PowerLawFraction{Scale: 10, KellyExp: 1}
	assert.Equal(t, 1.0, high.Fraction(s, k))

	zero := PowerLawFraction{Scale: 0}
	assert.Greater(t, zero.Fraction(s, k), 0.0)

	plain := PowerLawFraction{Scale: 0.5}
	assert.InDelta(t, 0.5, plain.Fraction(s, k), 1e-12)
}

func TestPolicyFormula(t *testing.T) {
	s := mustScenario(t, 1000, 10, 50, 3)
	formula := PolicyFormula{Policy: ConstantFraction{Value: 0.5}}
	assert.InDelta(t, 1.0/6.0, formula.PerTradeReturn(s), 1e-12)
	assert.Equal(t, "constant(0.5000)", formula.Name())

	noEdge := mustScenario(t, 1000, 10, 25, 2)
	assert.Equal(t, 0.0, formula.PerTradeReturn(noEdge))
}

func TestCandidateFormulasHaveUniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range CandidateFormulas() {
		assert.False(t, seen[f.Name()], "duplicate formula %s", f.Name())
		seen[f.Name()] = true
	}
	assert.GreaterOrEqual(t, len(seen), 4)
}
