package cli

import (
	"context"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/apodwikat/abtest/internal/stats"
)

var sampleSizeCmd = &cobra.Command{
	Use:   "sample-size",
	Short: "Observations needed to detect an effect size",
	Long: `Compute the total number of observations (both groups) needed to detect
the given effect size with a chi-square test at alpha 0.05 and power 0.80.

Examples:
  abtest sample-size --effect 0.2   # 394 observations`,
	RunE: runSampleSize,
}

var probabilityCmd = &cobra.Command{
	Use:   "probability",
	Short: "Chance of collecting enough observations in a number of days",
	Long: `Estimate, from the daily history of incomplete quizzes in the dataset, the
probability of collecting the observations needed for an effect size within
the given number of days.

Examples:
  abtest probability --effect 0.2 --days 10`,
	RunE: runProbability,
}

var (
	planEffect float64
	planDays   int
)

func init() {
	rootCmd.AddCommand(sampleSizeCmd)
	rootCmd.AddCommand(probabilityCmd)

	sampleSizeCmd.Flags().Float64VarP(&planEffect, "effect", "e", 0.2, "Effect size (Cohen's w) to detect")
	probabilityCmd.Flags().Float64VarP(&planEffect, "effect", "e", 0.2, "Effect size (Cohen's w) to detect")
	probabilityCmd.Flags().IntVarP(&planDays, "days", "d", 1, "Experiment duration in days")
}

func runSampleSize(cmd *cobra.Command, args []string) error {
	n, err := stats.RequiredSampleSize(planEffect)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "To detect an effect size of %g, you would need %d observations.\n", planEffect, n)
	return nil
}

func runProbability(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := NewAppContext(ctx, settings, appLog, appOptions{dataset: true})
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()

	n, err := app.Service.SampleSize(planEffect)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "To detect an effect size of %g, you would need %d observations.\n", planEffect, n)

	pct, ok := app.Service.Probability(n, planDays)
	if !ok {
		fmt.Fprintf(out, "The probability of getting this number of observations in %d days cannot be estimated from the dataset.\n", planDays)
		return nil
	}
	fmt.Fprintf(out, "The probability of getting this number of observations in %d days is %g%%\n",
		planDays, math.Round(pct*100)/100)
	return nil
}
