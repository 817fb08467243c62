package calibration

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// WriteScanReport prints the ranked neighbourhood of a local scan
func WriteScanReport(w io.Writer, result ScanResult) error {
	fmt.Fprintf(w, "\nLocal scan: %s\n", result.Case.Label(0))
	fmt.Fprintf(w, "  capital=%.2f trades=%d accuracy=%.2f%% R=%.2f expected=%.2f\n",
		result.Case.Capital, result.Case.TotalTrades, result.Case.Accuracy,
		result.Case.RiskRewardRatio, result.Case.ExpectedProfit)
	implied := fmt.Sprintf("  kelly=%.6f ev=%.4f implied return=%.6f implied fraction=%.6f\n",
		result.Kelly.KellyCriterion, result.Kelly.ExpectedValue,
		result.ImpliedPerTradeReturn, result.ImpliedFraction)
	if result.Skipped {
		if result.ImpliedFraction != 0 {
			fmt.Fprint(w, implied)
		}
		fmt.Fprintf(w, "  %s\n", result.SkipReason)
		return nil
	}
	fmt.Fprint(w, implied)

	table := tablewriter.NewWriter(w)
	table.Header("#", "Fraction", "Return/trade", "Profit", "Abs err", "Rel err")
	for i, c := range result.Candidates {
		if err := table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.6f", c.KellyFraction),
			fmt.Sprintf("%.6f", c.PerTradeReturn),
			fmt.Sprintf("$%.2f", c.Profit),
			fmt.Sprintf("$%.2f", c.AbsoluteError),
			c.RelativeError(),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteCompareReport prints per-case winners and the per-formula summary
func WriteCompareReport(w io.Writer, report CompareReport) error {
	fmt.Fprintf(w, "\nFormula comparison: %d scored, %d skipped\n", report.Scored, report.Skipped)

	cases := tablewriter.NewWriter(w)
	cases.Header("Case", "Expected", "Winner", "Profit", "Abs err", "Rel err")
	for _, row := range report.Cases {
		if row.Skipped {
			if err := cases.Append(row.Label, fmt.Sprintf("$%.2f", row.Case.ExpectedProfit), row.SkipReason, "-", "-", "-"); err != nil {
				return err
			}
			continue
		}
		best := winningEvaluation(row)
		if err := cases.Append(
			row.Label,
			fmt.Sprintf("$%.2f", row.Case.ExpectedProfit),
			row.Winner,
			fmt.Sprintf("$%.2f", best.Profit),
			fmt.Sprintf("$%.2f", best.AbsoluteError),
			best.RelativeError(),
		); err != nil {
			return err
		}
	}
	if err := cases.Render(); err != nil {
		return err
	}

	summary := tablewriter.NewWriter(w)
	summary.Header("Formula", "Wins", "Cases", "Mean abs err", "Mean rel err")
	for _, s := range report.Summary {
		rel := NotApplicable
		if s.RelativeErrorCases > 0 {
			rel = fmt.Sprintf("%.4f%%", s.MeanRelativeErrorPct)
		}
		if err := summary.Append(
			s.Name,
			fmt.Sprintf("%d", s.Wins),
			fmt.Sprintf("%d", s.Cases),
			fmt.Sprintf("$%.2f", s.MeanAbsoluteError),
			rel,
		); err != nil {
			return err
		}
	}
	if err := summary.Render(); err != nil {
		return err
	}

	if best, ok := report.Best(); ok {
		fmt.Fprintf(w, "  Best formula: %s (%d wins)\n", best.Name, best.Wins)
	}
	return nil
}

// WriteFitReport prints the top candidates of a fit and any skipped cases
func WriteFitReport(w io.Writer, result FitResult, top int) error {
	fmt.Fprintf(w, "\nCalibration fit: %d candidates, %d cases scored, %d skipped\n",
		len(result.Candidates), result.Scored, len(result.Skipped))

	candidates := result.Candidates
	if top > 0 && len(candidates) > top {
		candidates = candidates[:top]
	}

	table := tablewriter.NewWriter(w)
	table.Header("Rank", "Policy", "Params", "Total abs err", "Mean abs err", "Mean rel err")
	for _, c := range candidates {
		if err := table.Append(
			fmt.Sprintf("%d", c.Rank),
			c.Policy,
			formatParams(c.Params),
			fmt.Sprintf("$%.2f", c.TotalAbsoluteError),
			fmt.Sprintf("$%.2f", c.MeanAbsoluteError),
			c.MeanRelativeError(),
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, s := range result.Skipped {
		fmt.Fprintf(w, "  %s: %s\n", s.Label, s.Reason)
	}
	for _, r := range result.Rejected {
		fmt.Fprintf(w, "  rejected %s: %s\n", r.Policy, r.Reason)
	}
	return nil
}

func winningEvaluation(row CaseComparison) Evaluation {
	for _, r := range row.Results {
		if r.Label == row.Winner {
			return r
		}
	}
	return Evaluation{}
}

func formatParams(params map[string]float64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.4f", k, params[k]))
	}
	return strings.Join(parts, " ")
}
