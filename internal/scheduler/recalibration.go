package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/trade-journal/internal/calibration"
	"github.com/yourusername/trade-journal/internal/logger"
	"github.com/yourusername/trade-journal/internal/metrics"
	"github.com/yourusername/trade-journal/internal/models"
	"github.com/yourusername/trade-journal/internal/repository"
)

// RecalibrationJob fits fraction policies to calculations whose observed
// profit has been recorded and activates the best one
type RecalibrationJob struct {
	calculations repository.CalculationRepository
	searcher     *calibration.Searcher
	candidates   calibration.CandidateGenerator
	active       *calibration.ActivePolicy
	maxCases     int
	log          *logger.CalibrationLogger
}

// NewRecalibrationJob creates the job
func NewRecalibrationJob(
	calculations repository.CalculationRepository,
	searcher *calibration.Searcher,
	candidates calibration.CandidateGenerator,
	active *calibration.ActivePolicy,
	maxCases int,
	log *logger.CalibrationLogger,
) *RecalibrationJob {
	if maxCases <= 0 {
		maxCases = 500
	}
	return &RecalibrationJob{
		calculations: calculations,
		searcher:     searcher,
		candidates:   candidates,
		active:       active,
		maxCases:     maxCases,
		log:          log,
	}
}

// Name identifies the job in logs
func (j *RecalibrationJob) Name() string {
	return "recalibration"
}

// Run performs one recalibration
func (j *RecalibrationJob) Run(ctx context.Context) error {
	_, err := j.Fit(ctx)
	return err
}

// Fit loads observed calculations, fits the candidates and activates the
// winner. With nothing to score the active policy is left unchanged.
func (j *RecalibrationJob) Fit(ctx context.Context) (calibration.FitResult, error) {
	start := time.Now()

	calcs, err := j.calculations.ListWithObservedProfit(ctx, j.maxCases)
	if err != nil {
		metrics.RecordCalibrationRun("fit", "failure", time.Since(start).Seconds())
		return calibration.FitResult{}, fmt.Errorf("load observed calculations: %w", err)
	}

	cases := CasesFromCalculations(calcs)
	result, err := j.searcher.Fit(ctx, cases, j.candidates)
	if err != nil {
		metrics.RecordCalibrationRun("fit", "failure", time.Since(start).Seconds())
		return calibration.FitResult{}, err
	}

	for _, s := range result.Skipped {
		j.log.LogCaseSkipped(s.Label, s.Reason)
	}
	metrics.RecordCasesSkipped(len(result.Skipped))

	best, ok := result.Best()
	if !ok {
		metrics.RecordCalibrationRun("fit", "empty", time.Since(start).Seconds())
		j.log.WithField("cases", len(cases)).Info("No scorable calculations, keeping active policy")
		return result, nil
	}

	j.active.Store(best, result.Scored)
	metrics.UpdateCalibrationBestError(best.MeanAbsoluteError)
	metrics.RecordCalibrationRun("fit", "success", time.Since(start).Seconds())
	j.log.LogFit(best.Policy, best.TotalAbsoluteError, best.MeanAbsoluteError,
		len(result.Candidates), result.Scored, len(result.Skipped), result.Duration)
	j.log.LogPolicyActivated(best.Policy, best.Params, j.Name())

	return result, nil
}

// CasesFromCalculations turns calculations with an observed profit into
// calibration cases; others are dropped
func CasesFromCalculations(calcs []*models.Calculation) []calibration.Case {
	cases := make([]calibration.Case, 0, len(calcs))
	for _, c := range calcs {
		if c.ObservedProfit == nil {
			continue
		}
		s, err := c.Scenario()
		if err != nil {
			continue
		}
		cs, err := calibration.NewCase("calc-"+c.ID.String(), s, *c.ObservedProfit)
		if err != nil {
			continue
		}
		cases = append(cases, cs)
	}
	return cases
}
