// Package main provides the entry point for the trade journal API server.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/trade-journal/internal/api"
	"github.com/yourusername/trade-journal/internal/auth"
	"github.com/yourusername/trade-journal/internal/calibration"
	"github.com/yourusername/trade-journal/internal/config"
	"github.com/yourusername/trade-journal/internal/database"
	"github.com/yourusername/trade-journal/internal/growth"
	"github.com/yourusername/trade-journal/internal/health"
	"github.com/yourusername/trade-journal/internal/logger"
	"github.com/yourusername/trade-journal/internal/metrics"
	"github.com/yourusername/trade-journal/internal/repository"
	"github.com/yourusername/trade-journal/internal/scheduler"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const recalibrationTimeout = 5 * time.Minute

var (
	configFile    string
	awsSecrets    bool
	awsRegion     string
	awsSecretName string

	cfg        *config.Config
	baseLogger *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&awsSecrets, "aws-secrets", os.Getenv("AWS_SECRETS_ENABLED") == "true", "Overlay secrets from AWS Secrets Manager")
	rootCmd.PersistentFlags().StringVar(&awsRegion, "aws-region", os.Getenv("AWS_REGION"), "AWS region of the secret")
	rootCmd.PersistentFlags().StringVar(&awsSecretName, "aws-secret-name", os.Getenv("AWS_SECRET_NAME"), "Secrets Manager secret name")

	hashPasswordCmd.Flags().String("password", "", "Password to hash (read from stdin when omitted)")

	rootCmd.AddCommand(serveCmd, migrateCmd, hashPasswordCmd)
}

var rootCmd = &cobra.Command{
	Use:           "journal-api",
	Short:         "Trade journal API server",
	Long:          `Serves the trade journal JSON API and manages its database schema.`,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd.Context())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply embedded database migrations",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd.Context())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate(cmd.Context())
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash for auth.users[].password_hash",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return errors.New("password must not be empty")
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context) error {
	loaded, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if awsSecrets {
		if awsRegion == "" || awsSecretName == "" {
			return errors.New("--aws-region and --aws-secret-name must be set when AWS secrets are enabled")
		}
		if err := config.LoadSecretsFromAWS(ctx, loaded, awsRegion, awsSecretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	if err := config.Validate(loaded); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded
	baseLogger = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	return nil
}

func serve(ctx context.Context) error {
	metrics.InitRegistry()

	provider := database.Initialize(cfg, baseLogger)
	defer provider.Close()

	repos, err := repository.NewRepositories(provider)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	store, err := auth.NewStaticStore(cfg.Auth.Users)
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if store.Len() == 0 {
		baseLogger.Warn("No users configured; every login will be rejected")
	}
	throttle := auth.NewThrottle(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst,
		time.Duration(cfg.Auth.ThrottleTTLMinutes)*time.Minute)

	active := &calibration.ActivePolicy{}
	policies, err := api.NewPolicySet(cfg.Calibration, active)
	if err != nil {
		return fmt.Errorf("invalid calibration policies: %w", err)
	}

	checker := health.NewChecker(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Logger:      baseLogger,
		DB:          provider,
	})

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	server, err := api.NewServer(api.Deps{
		Trades:       repos.Trade,
		Sessions:     repos.Session,
		Calculations: repos.Calculation,
		Credentials:  store,
		Throttle:     throttle,
		Policies:     policies,
		Health:       checker,
		Logger:       baseLogger,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		MetricsPath:  metricsPath,
	})
	if err != nil {
		return err
	}

	if cfg.Calibration.ScheduleEnabled {
		sched, err := startRecalibration(ctx, repos.Calculation, policies, active)
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Stop(); err != nil {
				baseLogger.WithError(err).Warn("Failed to stop scheduler")
			}
		}()
	}

	checker.SetReady(true)
	baseLogger.WithFields(logrus.Fields{
		"version":     Version,
		"environment": cfg.App.Environment,
		"policy":      cfg.Calibration.DefaultPolicy,
	}).Info("Trade journal API ready")
	return server.ListenAndServe(ctx, cfg.Server)
}

// startRecalibration schedules the periodic fit and runs one immediately so
// the calibrated policy is warm after a restart
func startRecalibration(ctx context.Context, calcs repository.CalculationRepository, policies *api.PolicySet, active *calibration.ActivePolicy) (*scheduler.Scheduler, error) {
	_, piecewise, err := policies.Resolve(api.PolicyPiecewise)
	if err != nil {
		return nil, err
	}
	candidates := calibration.Generators{
		calibration.ConstantGrid{Min: cfg.Calibration.GridMin, Max: cfg.Calibration.GridMax, Step: cfg.Calibration.GridStep},
		calibration.PolicyList{piecewise, growth.DefaultPowerLaw},
	}
	job := scheduler.NewRecalibrationJob(
		calcs,
		calibration.NewSearcher(cfg.Calibration.Workers, baseLogger),
		candidates,
		active,
		cfg.Calibration.MaxCases,
		logger.NewCalibrationLogger(baseLogger),
	)

	sched := scheduler.NewScheduler(baseLogger, recalibrationTimeout)
	if err := sched.Schedule(cfg.Calibration.Schedule, job); err != nil {
		return nil, fmt.Errorf("failed to schedule recalibration: %w", err)
	}
	if err := sched.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, recalibrationTimeout)
		defer cancel()
		if err := job.Run(warmCtx); err != nil {
			baseLogger.WithError(err).Warn("Initial recalibration failed")
		}
	}()
	return sched, nil
}

func migrate(ctx context.Context) error {
	provider := database.NewProvider(&cfg.Database, baseLogger, nil)
	defer provider.Close()

	db, err := provider.DB(ctx)
	if err != nil {
		return err
	}
	applied, err := database.RunMigrations(ctx, db)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Println("Schema is up to date")
		return nil
	}
	for _, name := range applied {
		fmt.Printf("Applied %s\n", name)
	}
	return nil
}
