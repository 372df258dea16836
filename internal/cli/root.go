package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/apodwikat/abtest/internal/infrastructure/config"
	"github.com/apodwikat/abtest/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "abtest",
	Short: "Plan, simulate and analyze an applicant email A/B experiment",
	Long: `abtest explores an applicant dataset and simulates a randomized experiment
on it: does emailing applicants make them more likely to finish the admissions quiz?

It estimates the sample size needed to detect an effect, the chance of
collecting that many observations in a given number of days, assigns
applicants to control and treatment groups, and tests the outcome with a
chi-square test of independence.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

var (
	flagDataset  string
	flagDatabase string
	flagLogLevel string
	flagSeed     uint64

	settings *config.Config
	appLog   *zap.Logger
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagDataset, "dataset", "", "Applicant dataset (.xlsx or .csv), overrides ABTEST_DATASET")
	pf.StringVar(&flagDatabase, "db", "", "Run history database URL or path, overrides ABTEST_DATABASE_URL")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error), overrides ABTEST_LOG_LEVEL")
	pf.Uint64Var(&flagSeed, "seed", 0, "Seed for group assignment, overrides ABTEST_SEED")
}

// loadSettings reads the environment, applies flag overrides and builds the logger.
func loadSettings(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if flagDataset != "" {
		cfg.Dataset = flagDataset
	}
	if flagDatabase != "" {
		cfg.Database.URL = flagDatabase
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = flagSeed
	}

	l, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	settings, appLog = cfg, l
	return nil
}
