package calibration

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/trade-journal/internal/growth"
	"golang.org/x/sync/errgroup"
)

// CandidateGenerator yields the fraction policies a fit evaluates, in ranking
// tie-break order
type CandidateGenerator interface {
	Candidates() []growth.FractionPolicy
}

// ConstantGrid generates constant fractions from Min to Max inclusive
type ConstantGrid struct {
	Min  float64
	Max  float64
	Step float64
}

// Validate checks the grid bounds
func (g ConstantGrid) Validate() error {
	if g.Step <= 0 {
		return errors.New("grid step must be positive")
	}
	if g.Min > g.Max {
		return errors.New("grid min must not exceed max")
	}
	if growth.ValidateKellyFraction(g.Max) != nil && growth.ValidateKellyFraction(g.Min) != nil {
		return fmt.Errorf("grid [%v, %v] contains no valid kelly fraction", g.Min, g.Max)
	}
	return nil
}

// Candidates returns every valid fraction on the grid
func (g ConstantGrid) Candidates() []growth.FractionPolicy {
	if g.Validate() != nil {
		return nil
	}
	var out []growth.FractionPolicy
	for i := 0; ; i++ {
		f := roundFraction(g.Min + float64(i)*g.Step)
		if f > g.Max+1e-9 {
			break
		}
		if growth.ValidateKellyFraction(f) == nil {
			out = append(out, growth.ConstantFraction{Value: f})
		}
	}
	return out
}

// PolicyList is a fixed candidate set
type PolicyList []growth.FractionPolicy

// Candidates returns the list unchanged
func (l PolicyList) Candidates() []growth.FractionPolicy {
	return l
}

// Generators concatenates the candidates of several generators in order
type Generators []CandidateGenerator

// Candidates returns every generator's candidates, first generator first
func (g Generators) Candidates() []growth.FractionPolicy {
	var out []growth.FractionPolicy
	for _, gen := range g {
		if gen != nil {
			out = append(out, gen.Candidates()...)
		}
	}
	return out
}

// Residual is one candidate's error on one case
type Residual struct {
	Case string `json:"case"`
	Evaluation
}

// CandidateScore aggregates one candidate over all scored cases
type CandidateScore struct {
	Rank                 int                `json:"rank"`
	Policy               string             `json:"policy"`
	Params               map[string]float64 `json:"params"`
	TotalAbsoluteError   float64            `json:"total_absolute_error"`
	MeanAbsoluteError    float64            `json:"mean_absolute_error"`
	MeanRelativeErrorPct float64            `json:"mean_relative_error_pct"`
	RelativeErrorDefined bool               `json:"relative_error_defined"`
	Residuals            []Residual         `json:"residuals"`

	policy growth.FractionPolicy
}

// FractionPolicy returns the policy that produced the score
func (s CandidateScore) FractionPolicy() growth.FractionPolicy {
	return s.policy
}

// MeanRelativeError formats the mean relative error for reports
func (s CandidateScore) MeanRelativeError() string {
	if !s.RelativeErrorDefined {
		return NotApplicable
	}
	return fmt.Sprintf("%.4f%%", s.MeanRelativeErrorPct)
}

// RejectedCandidate is a candidate left out of the ranking
type RejectedCandidate struct {
	Policy string `json:"policy"`
	Reason string `json:"reason"`
}

// FitResult ranks candidates ascending by total absolute error
type FitResult struct {
	Candidates []CandidateScore    `json:"candidates"`
	Skipped    []SkippedCase       `json:"skipped"`
	Rejected   []RejectedCandidate `json:"rejected,omitempty"`
	Scored     int              `json:"scored"`
	Duration   time.Duration    `json:"duration"`
}

// Best returns the top-ranked candidate
func (r FitResult) Best() (CandidateScore, bool) {
	if len(r.Candidates) == 0 {
		return CandidateScore{}, false
	}
	return r.Candidates[0], true
}

// Searcher runs multi-case fits on a bounded worker pool
type Searcher struct {
	workers int
	logger  *logrus.Logger
}

// NewSearcher creates a searcher; workers <= 0 uses one worker per CPU
func NewSearcher(workers int, logger *logrus.Logger) *Searcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &Searcher{workers: workers, logger: logger}
}

type scoredCase struct {
	label string
	c     Case
}

// Fit scores every candidate policy against the cases. An empty case set
// yields an empty result. Cases without an edge are listed in Skipped and
// excluded from scoring. Ranking is stable in generator order, independent
// of worker scheduling. Candidates whose projection overflows on any case
// are listed in Rejected.
func (s *Searcher) Fit(ctx context.Context, cases []Case, gen CandidateGenerator) (FitResult, error) {
	start := time.Now()
	var result FitResult
	if len(cases) == 0 || gen == nil {
		return result, nil
	}

	scored := make([]scoredCase, 0, len(cases))
	for i, c := range cases {
		if err := c.Validate(); err != nil {
			return FitResult{}, err
		}
		label := c.Label(i)
		if !c.Kelly().HasEdge() {
			result.Skipped = append(result.Skipped, SkippedCase{Case: c, Label: label, Reason: skipReasonNoEdge})
			continue
		}
		scored = append(scored, scoredCase{label: label, c: c})
	}
	result.Scored = len(scored)

	policies := gen.Candidates()
	if len(scored) == 0 || len(policies) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	scores := make([]CandidateScore, len(policies))
	rejected := make([]error, len(policies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, policy := range policies {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			score, err := scoreCandidate(policy, scored)
			if errors.Is(err, growth.ErrProjectionOverflow) {
				rejected[i] = err
				return nil
			}
			if err != nil {
				return fmt.Errorf("candidate %s: %w", policy.Name(), err)
			}
			scores[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return FitResult{}, err
	}

	ranked := scores[:0]
	for i, score := range scores {
		if rejected[i] != nil {
			result.Rejected = append(result.Rejected, RejectedCandidate{
				Policy: policies[i].Name(),
				Reason: rejected[i].Error(),
			})
			continue
		}
		ranked = append(ranked, score)
	}
	scores = ranked

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].TotalAbsoluteError < scores[j].TotalAbsoluteError
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}
	result.Candidates = scores
	result.Duration = time.Since(start)

	s.logger.WithFields(logrus.Fields{
		"candidates": len(scores),
		"scored":     result.Scored,
		"skipped":    len(result.Skipped),
		"rejected":   len(result.Rejected),
		"duration":   result.Duration.String(),
	}).Debug("Calibration fit completed")

	return result, nil
}

func scoreCandidate(policy growth.FractionPolicy, cases []scoredCase) (CandidateScore, error) {
	score := CandidateScore{
		Policy:    policy.Name(),
		Params:    policy.Params(),
		Residuals: make([]Residual, 0, len(cases)),
		policy:    policy,
	}

	relTotal := 0.0
	relCases := 0
	for _, sc := range cases {
		k := sc.c.Kelly()
		fraction := policy.Fraction(sc.c.Scenario, k)
		projection, err := growth.Project(sc.c.Scenario, fraction)
		if err != nil {
			return CandidateScore{}, fmt.Errorf("case %s: %w", sc.label, err)
		}
		eval := newEvaluation(policy.Name(), projection.Profit, sc.c.ExpectedProfit)
		eval.KellyFraction = fraction
		eval.PerTradeReturn = projection.PerTradeReturn
		score.Residuals = append(score.Residuals, Residual{Case: sc.label, Evaluation: eval})

		score.TotalAbsoluteError += eval.AbsoluteError
		if eval.RelativeErrorDefined {
			relTotal += eval.RelativeErrorPct
			relCases++
		}
	}

	if math.IsNaN(score.TotalAbsoluteError) {
		score.TotalAbsoluteError = math.Inf(1)
	}
	score.MeanAbsoluteError = score.TotalAbsoluteError / float64(len(cases))
	if relCases > 0 {
		score.MeanRelativeErrorPct = relTotal / float64(relCases)
		score.RelativeErrorDefined = true
	}
	return score, nil
}
