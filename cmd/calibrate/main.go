// Package main provides the calibration CLI for the growth model.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/trade-journal/internal/calibration"
	"github.com/yourusername/trade-journal/internal/config"
	"github.com/yourusername/trade-journal/internal/growth"
	"github.com/yourusername/trade-journal/internal/logger"
	"github.com/yourusername/trade-journal/internal/reference"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// app carries state shared by the subcommands
type app struct {
	configFile string
	casesFile  string
	logLevel   string
	jsonOutput bool

	out    io.Writer
	cfg    *config.Config
	logger *logrus.Logger
	calLog *logger.CalibrationLogger
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "calibrate",
		Short:         "Calibrate the Kelly growth model against reference profits",
		Long:          `Scans, compares and fits Kelly fraction policies so projected profits match a reference calculator.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(os.Stderr)

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "./config/config.yaml", "Path to configuration file (optional)")
	root.PersistentFlags().StringVar(&a.casesFile, "cases", "", "YAML or JSON case file (built-in reference cases when omitted)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Print results as JSON instead of tables")

	root.AddCommand(a.scanCmd(), a.compareCmd(), a.fitCmd(), a.fetchCmd())
	return root
}

func (a *app) setup() error {
	a.logger = logger.NewLogger(a.logLevel, "development")
	a.logger.SetOutput(os.Stderr)
	a.calLog = logger.NewCalibrationLogger(a.logger)

	cfg, err := config.LoadWithDefaults(a.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg
	return nil
}

func (a *app) loadCases() ([]calibration.Case, error) {
	if a.casesFile == "" {
		return calibration.DefaultCases(), nil
	}
	cases, err := calibration.LoadCases(a.casesFile)
	if err != nil {
		return nil, err
	}
	if len(cases) == 0 {
		a.logger.WithField("file", a.casesFile).Warn("Case file contains no cases")
	}
	return cases, nil
}

func (a *app) writeJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) scanCmd() *cobra.Command {
	var (
		radius float64
		step   float64
		top    int
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan Kelly fractions around each case's implied fraction",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := calibration.ScanConfig{
				Radius: flagOr(cmd, "radius", radius, a.cfg.Calibration.ScanRadius),
				Step:   flagOr(cmd, "step", step, a.cfg.Calibration.ScanStep),
				TopK:   flagOr(cmd, "top", top, a.cfg.Calibration.TopK),
			}
			cases, err := a.loadCases()
			if err != nil {
				return err
			}

			results := make([]calibration.ScanResult, 0, len(cases))
			for i, c := range cases {
				result, err := calibration.LocalScan(c, cfg)
				if err != nil {
					return fmt.Errorf("%s: %w", c.Label(i), err)
				}
				if result.Skipped {
					a.calLog.LogCaseSkipped(c.Label(i), result.SkipReason)
				} else if len(result.Candidates) > 0 {
					best := result.Candidates[0]
					a.calLog.LogScan(c.Label(i), result.ImpliedFraction, best.KellyFraction, best.AbsoluteError, len(result.Candidates))
				}
				results = append(results, result)
			}

			if a.jsonOutput {
				return a.writeJSON(results)
			}
			for _, result := range results {
				if err := calibration.WriteScanReport(a.out, result); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&radius, "radius", calibration.DefaultScanConfig().Radius, "Half-width of the fraction neighbourhood")
	cmd.Flags().Float64Var(&step, "step", calibration.DefaultScanConfig().Step, "Fraction step")
	cmd.Flags().IntVar(&top, "top", calibration.DefaultScanConfig().TopK, "Candidates to keep per case (0 keeps all)")
	return cmd
}

func (a *app) compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Compare the candidate per-trade return formulas across cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := a.loadCases()
			if err != nil {
				return err
			}
			report := calibration.Compare(cases, growth.CandidateFormulas())
			if best, ok := report.Best(); ok {
				a.calLog.LogComparison(best.Name, best.Wins, report.Scored, report.Skipped)
			}
			if a.jsonOutput {
				return a.writeJSON(report)
			}
			return calibration.WriteCompareReport(a.out, report)
		},
	}
}

func (a *app) fitCmd() *cobra.Command {
	var (
		minFraction float64
		maxFraction float64
		step        float64
		workers     int
		top         int
	)
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit fraction policies across all cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			grid := calibration.ConstantGrid{
				Min:  flagOr(cmd, "min", minFraction, a.cfg.Calibration.GridMin),
				Max:  flagOr(cmd, "max", maxFraction, a.cfg.Calibration.GridMax),
				Step: flagOr(cmd, "step", step, a.cfg.Calibration.GridStep),
			}
			if err := grid.Validate(); err != nil {
				return err
			}
			cases, err := a.loadCases()
			if err != nil {
				return err
			}

			piecewise, err := growth.NewPiecewiseFraction(growth.DefaultPiecewiseTiers, a.cfg.Calibration.DefaultFraction)
			if err != nil {
				return err
			}
			candidates := calibration.Generators{
				grid,
				calibration.PolicyList{piecewise, growth.DefaultPowerLaw},
			}

			searcher := calibration.NewSearcher(flagOr(cmd, "workers", workers, a.cfg.Calibration.Workers), a.logger)
			result, err := searcher.Fit(cmd.Context(), cases, candidates)
			if err != nil {
				return err
			}
			for _, s := range result.Skipped {
				a.calLog.LogCaseSkipped(s.Label, s.Reason)
			}
			if best, ok := result.Best(); ok {
				a.calLog.LogFit(best.Policy, best.TotalAbsoluteError, best.MeanAbsoluteError,
					len(result.Candidates), result.Scored, len(result.Skipped), result.Duration)
			}

			if a.jsonOutput {
				return a.writeJSON(result)
			}
			return calibration.WriteFitReport(a.out, result, top)
		},
	}
	cmd.Flags().Float64Var(&minFraction, "min", 0.05, "Smallest constant fraction on the grid")
	cmd.Flags().Float64Var(&maxFraction, "max", 1.0, "Largest constant fraction on the grid")
	cmd.Flags().Float64Var(&step, "step", 0.01, "Grid step")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker goroutines (0 uses one per CPU)")
	cmd.Flags().IntVar(&top, "top", 10, "Candidates to print (0 prints all)")
	return cmd
}

func (a *app) fetchCmd() *cobra.Command {
	var (
		out    string
		url    string
		apiKey string
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fill expected profits from the reference calculator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			cases, err := a.loadCases()
			if err != nil {
				return err
			}

			refCfg := reference.DefaultConfig()
			refCfg.BaseURL = flagOr(cmd, "url", url, a.cfg.Reference.URL)
			refCfg.APIKey = flagOr(cmd, "api-key", apiKey, a.cfg.Reference.APIKey)
			if a.cfg.Reference.TimeoutSeconds > 0 {
				refCfg.Timeout = a.cfg.Reference.Timeout()
			}
			refCfg.MaxRetries = a.cfg.Reference.MaxRetries
			refCfg.RateLimit = a.cfg.Reference.RateLimit

			client, err := reference.NewClient(refCfg, a.logger)
			if err != nil {
				return err
			}
			defer client.Close()

			filled, err := client.FillCases(cmd.Context(), cases)
			if err != nil {
				return err
			}
			if err := calibration.SaveCases(out, filled); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Wrote %d cases to %s\n", len(filled), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output case file")
	cmd.Flags().StringVar(&url, "url", "", "Reference calculator base URL (overrides reference.url)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Reference calculator API key (overrides reference.api_key)")
	return cmd
}

// flagOr prefers an explicitly set flag over the configured value
func flagOr[T comparable](cmd *cobra.Command, name string, flagValue, configured T) T {
	var zero T
	if cmd.Flags().Changed(name) || configured == zero {
		return flagValue
	}
	return configured
}
