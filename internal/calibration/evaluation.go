package calibration

import (
	"fmt"
	"math"
)

// NotApplicable is printed in place of an undefined relative error
const NotApplicable = "N/A"

// RelativeErrorPct returns |computed - expected| / |expected| * 100.
// ok is false when expected is zero and the metric is undefined.
func RelativeErrorPct(computed, expected float64) (float64, bool) {
	if expected == 0 {
		return 0, false
	}
	return math.Abs(computed-expected) / math.Abs(expected) * 100, true
}

// Evaluation scores one parameter set against one expected profit
type Evaluation struct {
	Label                string             `json:"label"`
	Params               map[string]float64 `json:"params,omitempty"`
	KellyFraction        float64            `json:"kelly_fraction,omitempty"`
	PerTradeReturn       float64            `json:"per_trade_return"`
	Profit               float64            `json:"profit"`
	ExpectedProfit       float64            `json:"expected_profit"`
	AbsoluteError        float64            `json:"absolute_error"`
	RelativeErrorPct     float64            `json:"relative_error_pct"`
	RelativeErrorDefined bool               `json:"relative_error_defined"`
}

func newEvaluation(label string, profit, expected float64) Evaluation {
	rel, ok := RelativeErrorPct(profit, expected)
	return Evaluation{
		Label:                label,
		Profit:               profit,
		ExpectedProfit:       expected,
		AbsoluteError:        math.Abs(profit - expected),
		RelativeErrorPct:     rel,
		RelativeErrorDefined: ok,
	}
}

// RelativeError formats the relative error for reports
func (e Evaluation) RelativeError() string {
	if !e.RelativeErrorDefined {
		return NotApplicable
	}
	return fmt.Sprintf("%.4f%%", e.RelativeErrorPct)
}

// SkippedCase is a case left out of aggregate scoring
type SkippedCase struct {
	Case   Case   `json:"case"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}
