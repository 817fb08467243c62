package calibration

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/yourusername/trade-journal/internal/growth"
)

const (
	skipReasonNotInvertible = "skipped: expected profit cannot be reached by compounding"
	skipReasonOutOfRange    = "skipped: implied fraction outside (0, 1]"
	skipReasonOverflow      = "skipped: every fraction in range overflows"
)

// ScanConfig controls the neighbourhood searched around an implied fraction
type ScanConfig struct {
	Radius float64 `json:"radius"`
	Step   float64 `json:"step"`
	TopK   int     `json:"top_k"`
}

// DefaultScanConfig scans +/-0.05 in 0.01 steps and keeps the best five
func DefaultScanConfig() ScanConfig {
	return ScanConfig{Radius: 0.05, Step: 0.01, TopK: 5}
}

// Validate checks the scan bounds
func (c ScanConfig) Validate() error {
	if c.Step <= 0 || math.IsNaN(c.Step) {
		return errors.New("scan step must be positive")
	}
	if c.Radius < 0 || math.IsNaN(c.Radius) {
		return errors.New("scan radius must not be negative")
	}
	if c.TopK < 0 {
		return errors.New("scan top-k must not be negative")
	}
	return nil
}

// ScanResult holds the ranked neighbourhood of one case's implied fraction
type ScanResult struct {
	Case                  Case                   `json:"case"`
	Kelly                 growth.KellyParameters `json:"kelly"`
	ImpliedPerTradeReturn float64                `json:"implied_per_trade_return"`
	ImpliedFraction       float64                `json:"implied_fraction"`
	Candidates            []Evaluation           `json:"candidates"`
	Skipped               bool                   `json:"skipped"`
	SkipReason            string                 `json:"skip_reason,omitempty"`
}

// LocalScan inverts the compounding formula for the case's expected profit,
// converts the implied per-trade return into a Kelly fraction, and scores the
// fractions around it. Candidates are ranked by absolute error; equal errors
// keep scan order. A TopK of zero keeps every candidate. Fractions outside
// (0, 1] or whose projection overflows are dropped, and a scan left with no
// candidate is reported as skipped.
func LocalScan(c Case, cfg ScanConfig) (ScanResult, error) {
	if err := cfg.Validate(); err != nil {
		return ScanResult{}, err
	}
	if err := c.Validate(); err != nil {
		return ScanResult{}, err
	}

	result := ScanResult{Case: c, Kelly: c.Kelly()}
	if !result.Kelly.HasEdge() {
		result.Skipped = true
		result.SkipReason = skipReasonNoEdge
		return result, nil
	}

	implied, ok := growth.ImpliedPerTradeReturn(c.Capital, c.ExpectedProfit, c.TotalTrades)
	if !ok {
		result.Skipped = true
		result.SkipReason = skipReasonNotInvertible
		return result, nil
	}
	result.ImpliedPerTradeReturn = implied
	result.ImpliedFraction = implied / result.Kelly.KellyCriterion

	steps := int(math.Round(cfg.Radius / cfg.Step))
	candidates := make([]Evaluation, 0, 2*steps+1)
	inRange := 0
	for i := -steps; i <= steps; i++ {
		fraction := roundFraction(result.ImpliedFraction + float64(i)*cfg.Step)
		if growth.ValidateKellyFraction(fraction) != nil {
			continue
		}
		inRange++
		projection, err := growth.Project(c.Scenario, fraction)
		if errors.Is(err, growth.ErrProjectionOverflow) {
			continue
		}
		if err != nil {
			return ScanResult{}, fmt.Errorf("failed to project fraction %.6f: %w", fraction, err)
		}
		eval := newEvaluation(fmt.Sprintf("%.6f", fraction), projection.Profit, c.ExpectedProfit)
		eval.KellyFraction = fraction
		eval.PerTradeReturn = projection.PerTradeReturn
		eval.Params = map[string]float64{"fraction": fraction}
		candidates = append(candidates, eval)
	}
	if len(candidates) == 0 {
		result.Skipped = true
		result.SkipReason = skipReasonOutOfRange
		if inRange > 0 {
			result.SkipReason = skipReasonOverflow
		}
		return result, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].AbsoluteError < candidates[j].AbsoluteError
	})
	if cfg.TopK > 0 && len(candidates) > cfg.TopK {
		candidates = candidates[:cfg.TopK]
	}
	result.Candidates = candidates
	return result, nil
}

// roundFraction trims accumulated step error
func roundFraction(f float64) float64 {
	return math.Round(f*1e9) / 1e9
}
