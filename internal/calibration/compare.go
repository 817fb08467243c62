package calibration

import (
	"github.com/yourusername/trade-journal/internal/growth"
)

// CaseComparison holds every formula's result for one case, in formula order
type CaseComparison struct {
	Label      string       `json:"label"`
	Case       Case         `json:"case"`
	Results    []Evaluation `json:"results,omitempty"`
	Winner     string       `json:"winner,omitempty"`
	Skipped    bool         `json:"skipped"`
	SkipReason string       `json:"skip_reason,omitempty"`
}

// FormulaSummary aggregates one formula across the scored cases
type FormulaSummary struct {
	Name                 string  `json:"name"`
	Wins                 int     `json:"wins"`
	Cases                int     `json:"cases"`
	MeanAbsoluteError    float64 `json:"mean_absolute_error"`
	MeanRelativeErrorPct float64 `json:"mean_relative_error_pct"`
	RelativeErrorCases   int     `json:"relative_error_cases"`
}

// CompareReport is the outcome of a comparative search
type CompareReport struct {
	Cases   []CaseComparison `json:"cases"`
	Summary []FormulaSummary `json:"summary"`
	Scored  int              `json:"scored"`
	Skipped int              `json:"skipped"`
}

// Best returns the formula with the most wins, breaking ties by lower mean
// absolute error and then by formula order
func (r CompareReport) Best() (FormulaSummary, bool) {
	if len(r.Summary) == 0 || r.Scored == 0 {
		return FormulaSummary{}, false
	}
	best := r.Summary[0]
	for _, s := range r.Summary[1:] {
		if s.Wins > best.Wins || (s.Wins == best.Wins && s.MeanAbsoluteError < best.MeanAbsoluteError) {
			best = s
		}
	}
	return best, true
}

// Compare evaluates every formula against every case. The formula with the
// lowest absolute error wins a case; ties go to the earlier formula. Cases
// without an edge are reported as skipped and excluded from the summary.
func Compare(cases []Case, formulas []growth.ReturnFormula) CompareReport {
	report := CompareReport{
		Cases:   make([]CaseComparison, 0, len(cases)),
		Summary: make([]FormulaSummary, len(formulas)),
	}
	for i, f := range formulas {
		report.Summary[i].Name = f.Name()
	}

	absTotals := make([]float64, len(formulas))
	relTotals := make([]float64, len(formulas))

	for idx, c := range cases {
		row := CaseComparison{Label: c.Label(idx), Case: c}
		if !c.Kelly().HasEdge() {
			row.Skipped = true
			row.SkipReason = skipReasonNoEdge
			report.Skipped++
			report.Cases = append(report.Cases, row)
			continue
		}

		winner := -1
		row.Results = make([]Evaluation, len(formulas))
		for i, f := range formulas {
			r := f.PerTradeReturn(c.Scenario)
			profit := growth.Compound(c.Capital, r, c.TotalTrades) - c.Capital
			eval := newEvaluation(f.Name(), profit, c.ExpectedProfit)
			eval.PerTradeReturn = r
			row.Results[i] = eval

			absTotals[i] += eval.AbsoluteError
			if eval.RelativeErrorDefined {
				relTotals[i] += eval.RelativeErrorPct
				report.Summary[i].RelativeErrorCases++
			}
			report.Summary[i].Cases++

			if winner < 0 || eval.AbsoluteError < row.Results[winner].AbsoluteError {
				winner = i
			}
		}
		if winner >= 0 {
			row.Winner = formulas[winner].Name()
			report.Summary[winner].Wins++
		}
		report.Scored++
		report.Cases = append(report.Cases, row)
	}

	for i := range report.Summary {
		s := &report.Summary[i]
		if s.Cases > 0 {
			s.MeanAbsoluteError = absTotals[i] / float64(s.Cases)
		}
		if s.RelativeErrorCases > 0 {
			s.MeanRelativeErrorPct = relTotals[i] / float64(s.RelativeErrorCases)
		}
	}
	return report
}
