package growth

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustScenario(t *testing.T, capital float64, trades int, accuracy, ratio float64) Scenario {
	t.Helper()
	s, err := NewScenario(capital, trades, accuracy, ratio)
	require.NoError(t, err)
	return s
}

func TestNewScenarioValidation(t *testing.T) {
	tests := []struct {
		name     string
		capital  float64
		trades   int
		accuracy float64
		ratio    float64
		wantErr  bool
	}{
		{name: "valid", capital: 1000, trades: 10, accuracy: 50, ratio: 3},
		{name: "zero accuracy", capital: 1000, trades: 10, accuracy: 0, ratio: 3},
		{name: "perfect accuracy", capital: 1000, trades: 10, accuracy: 100, ratio: 3},
		{name: "zero trades", capital: 1000, trades: 0, accuracy: 50, ratio: 3},
		{name: "zero ratio", capital: 1000, trades: 10, accuracy: 50, ratio: 0, wantErr: true},
		{name: "negative ratio", capital: 1000, trades: 10, accuracy: 50, ratio: -1, wantErr: true},
		{name: "zero capital", capital: 0, trades: 10, accuracy: 50, ratio: 3, wantErr: true},
		{name: "negative trades", capital: 1000, trades: -1, accuracy: 50, ratio: 3, wantErr: true},
		{name: "accuracy above 100", capital: 1000, trades: 10, accuracy: 100.5, ratio: 3, wantErr: true},
		{name: "negative accuracy", capital: 1000, trades: 10, accuracy: -1, ratio: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScenario(tt.capital, tt.trades, tt.accuracy, tt.ratio)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidScenario))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestKellyParameters(t *testing.T) {
	k := mustScenario(t, 1000, 10, 50, 3).Kelly()
	assert.InDelta(t, 0.5, k.WinRate, 1e-12)
	assert.InDelta(t, 1.0/3.0, k.KellyCriterion, 1e-12)
	assert.InDelta(t, 1.0, k.ExpectedValue, 1e-12)
	assert.True(t, k.HasEdge())
}

func TestComputeProfitNoEdgeIsZero(t *testing.T) {
	scenarios := []Scenario{
		mustScenario(t, 1000, 50, 25, 2),
		mustScenario(t, 5000, 10, 50, 1),
		mustScenario(t, 1000, 10, 0, 3),
	}
	for _, s := range scenarios {
		for _, f := range []float64{0.01, 0.25, 0.5, 0.8712, 1.0} {
			profit, err := ComputeProfit(s, f)
			require.NoError(t, err)
			assert.Equal(t, 0.0, profit)
		}
	}
}

func TestComputeProfitNegativeKellyCase(t *testing.T) {
	s := mustScenario(t, 1000, 20, 25, 2)
	assert.InDelta(t, -0.125, s.Kelly().KellyCriterion, 1e-12)

	result, err := Project(s, 0.9)
	require.NoError(t, err)
	assert.True(t, result.NoEdge)
	assert.Equal(t, 0.0, result.Profit)
	assert.Equal(t, 1000.0, result.FinalBalance)
}

func TestComputeProfitZeroTrades(t *testing.T) {
	s := mustScenario(t, 1000, 0, 60, 2)
	require.True(t, s.Kelly().HasEdge())

	profit, err := ComputeProfit(s, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, profit)
}

func TestComputeProfitIsDeterministic(t *testing.T) {
	s := mustScenario(t, 2500, 37, 47.5, 2.2)
	first, err := ComputeProfit(s, 0.6)
	require.NoError(t, err)
	second, err := ComputeProfit(s, 0.6)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeProfitMonotonicInFraction(t *testing.T) {
	s := mustScenario(t, 1000, 25, 55, 1.5)
	previous := -1.0
	for f := 0.05; f <= 1.0; f += 0.05 {
		profit, err := ComputeProfit(s, f)
		require.NoError(t, err)
		assert.Greater(t, profit, previous, "fraction %.2f", f)
		previous = profit
	}
}

func TestComputeProfitReferenceScenario(t *testing.T) {
	s := mustScenario(t, 1000, 10, 50, 3)

	result, err := Project(s, 0.8712)
	require.NoError(t, err)
	assert.InDelta(t, 0.29040, result.PerTradeReturn, 1e-5)
	assert.InDelta(t, 12800.99, result.FinalBalance, 0.01)
	assert.InDelta(t, 11800.99, result.Profit, 0.01)

	// the reference target of 11799.69 sits a hair below 0.8712
	implied, ok := ImpliedPerTradeReturn(1000, 11799.69, 10)
	require.True(t, ok)
	fraction := implied / s.Kelly().KellyCriterion
	assert.InDelta(t, 0.87116, fraction, 1e-5)

	profit, err := ComputeProfit(s, fraction)
	require.NoError(t, err)
	assert.InDelta(t, 11799.69, profit, 0.01)
}

func TestComputeProfitModestEdgeCompounds(t *testing.T) {
	s := mustScenario(t, 1000, 10, 40, 3)
	k := s.Kelly()
	assert.InDelta(t, 0.2, k.KellyCriterion, 1e-12)

	profit, err := ComputeProfit(s, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 1593.74, profit, 0.01)
}

func TestComputeProfitPerfectAccuracy(t *testing.T) {
	s := mustScenario(t, 100, 3, 100, 2)
	assert.InDelta(t, 1.0, s.Kelly().KellyCriterion, 1e-12)

	profit, err := ComputeProfit(s, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 700, profit, 1e-9)
}

func TestComputeProfitRejectsBadFraction(t *testing.T) {
	s := mustScenario(t, 1000, 10, 50, 3)
	for _, f := range []float64{0, -0.1, 1.01} {
		_, err := ComputeProfit(s, f)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidKellyFraction))
	}
}

func TestComputeProfitRejectsInvalidScenario(t *testing.T) {
	_, err := ComputeProfit(Scenario{Capital: 1000, TotalTrades: 10, Accuracy: 50}, 0.5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidScenario))
}

func TestComputeProfitRejectsOverflow(t *testing.T) {
	s := mustScenario(t, 1000, 5000, 100, 1)

	_, err := Project(s, 1.0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProjectionOverflow))
	assert.True(t, errors.Is(err, ErrInvalidScenario))

	_, err = NewModel(ConstantFraction{Value: 1.0}).Project(s)
	assert.True(t, errors.Is(err, ErrProjectionOverflow))

	// 5000 trades at 10% per trade stays within range
	result, err := Project(s, 0.1)
	require.NoError(t, err)
	assert.False(t, math.IsInf(result.FinalBalance, 0))
}

func TestImpliedPerTradeReturn(t *testing.T) {
	r, ok := ImpliedPerTradeReturn(1000, Compound(1000, 0.1, 5)-1000, 5)
	require.True(t, ok)
	assert.InDelta(t, 0.1, r, 1e-12)

	_, ok = ImpliedPerTradeReturn(1000, -1000, 5)
	assert.False(t, ok)
	_, ok = ImpliedPerTradeReturn(1000, 500, 0)
	assert.False(t, ok)
}

func TestModelUsesPolicy(t *testing.T) {
	s := mustScenario(t, 1000, 10, 50, 3)
	model := NewModel(ConstantFraction{Value: 0.8712})

	result, err := model.Project(s)
	require.NoError(t, err)
	assert.Equal(t, 0.8712, result.KellyFraction)
	assert.InDelta(t, 11800.99, result.Profit, 0.01)

	noEdge, err := model.Project(mustScenario(t, 1000, 10, 25, 2))
	require.NoError(t, err)
	assert.True(t, noEdge.NoEdge)
	assert.Equal(t, 0.0, noEdge.Profit)
}

func TestNewModelDefaultsToHalfKelly(t *testing.T) {
	model := NewModel(nil)
	assert.Equal(t, 0.5, model.Policy.Fraction(Scenario{}, KellyParameters{}))
}
