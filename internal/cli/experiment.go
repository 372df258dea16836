package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/apodwikat/abtest/internal/dataset"
	"github.com/apodwikat/abtest/internal/domain"
	"github.com/apodwikat/abtest/internal/util"
)

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Run and review simulated experiments",
	Long:  `Assign applicants to control and treatment groups, test the outcome and review past runs.`,
}

var experimentRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an experiment over the first N days of the dataset",
	Long: `Randomly assign every applicant created within the first N days of the
dataset to the control or treatment group, then test quiz completion by group.
The run is recorded in the run history.

Examples:
  abtest experiment run --days 7
  abtest experiment run --days 7 --seed 42 --output assigned.csv`,
	RunE: runExperimentRun,
}

var experimentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded experiment runs",
	RunE:  runExperimentList,
}

var experimentResultsCmd = &cobra.Command{
	Use:   "results [run-id]",
	Short: "Show the results of a recorded run (latest by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExperimentResults,
}

var experimentResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every recorded experiment run",
	RunE:  runExperimentReset,
}

var (
	experimentDays   int
	experimentOutput string
	experimentLimit  int
)

func init() {
	rootCmd.AddCommand(experimentCmd)
	experimentCmd.AddCommand(experimentRunCmd)
	experimentCmd.AddCommand(experimentListCmd)
	experimentCmd.AddCommand(experimentResultsCmd)
	experimentCmd.AddCommand(experimentResetCmd)

	experimentRunCmd.Flags().IntVarP(&experimentDays, "days", "d", 1, "Experiment duration in days")
	experimentRunCmd.Flags().StringVarP(&experimentOutput, "output", "o", "", "Write the labeled dataset to this CSV file")
	experimentListCmd.Flags().IntVarP(&experimentLimit, "limit", "n", 20, "Maximum runs to show (0 for all)")
}

func runExperimentRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := NewAppContext(ctx, settings, appLog, appOptions{dataset: true, history: true, metrics: true})
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()

	run, err := app.Service.RunExperiment(ctx, experimentDays)
	if err != nil {
		return err
	}
	printRun(cmd.OutOrStdout(), run)

	if experimentOutput != "" {
		if err := writeLabeledDataset(experimentOutput, app.Service.Applicants()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nLabeled dataset written to %s\n", experimentOutput)
	}
	return nil
}

func writeLabeledDataset(path string, applicants []domain.Applicant) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := dataset.WriteCSV(f, applicants); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func runExperimentList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := NewAppContext(ctx, settings, appLog, appOptions{history: true})
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()

	runs, err := app.Service.Runs(ctx, experimentLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No experiment runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tDATASET\tDAYS\tASSIGNED\tP-VALUE")
	for _, r := range runs {
		p := "-"
		if r.ChiSquare != nil {
			p = fmt.Sprintf("%.4f", r.ChiSquare.PValue)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, util.FormatDateTime(r.CreatedAt), r.Dataset, r.Days, r.AssignedCount, p)
	}
	return w.Flush()
}

func runExperimentResults(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := NewAppContext(ctx, settings, appLog, appOptions{history: true})
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()

	var run *domain.ExperimentRun
	if len(args) == 1 {
		run, err = app.Service.Run(ctx, args[0])
	} else {
		var runs []*domain.ExperimentRun
		runs, err = app.Service.Runs(ctx, 1)
		if len(runs) > 0 {
			run = runs[0]
		}
	}
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("no experiment run found")
	}

	printRun(cmd.OutOrStdout(), run)
	return nil
}

func runExperimentReset(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := NewAppContext(ctx, settings, appLog, appOptions{history: true})
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()

	if err := app.Runs.DeleteAll(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Experiment history cleared.")
	return nil
}

func printRun(out io.Writer, run *domain.ExperimentRun) {
	fmt.Fprintf(out, "Run %s\n", run.ID)
	fmt.Fprintf(out, "Window: %s to %s (%d days)\n",
		util.FormatDateTime(run.Window.Start), util.FormatDateTime(run.Window.End), run.Days)
	fmt.Fprintf(out, "Assigned applicants: %d\n\n", run.AssignedCount)

	if run.Table.Empty() {
		fmt.Fprintln(out, "No observations in the experiment window.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprint(w, "GROUP")
		for _, c := range run.Table.Columns {
			fmt.Fprintf(w, "\t%s", c)
		}
		fmt.Fprintln(w)
		for i, g := range run.Table.Rows {
			fmt.Fprint(w, g)
			for j := range run.Table.Columns {
				fmt.Fprintf(w, "\t%d", run.Table.Counts[i][j])
			}
			fmt.Fprintln(w)
		}
		_ = w.Flush()
	}

	fmt.Fprintln(out, "\nChi-Square Test for Independence")
	if run.ChiSquare == nil {
		fmt.Fprintln(out, "Insufficient data for statistical testing")
		return
	}
	fmt.Fprintf(out, "Degrees of Freedom: %d\n", run.ChiSquare.DF)
	fmt.Fprintf(out, "p-value: %.4f\n", run.ChiSquare.PValue)
	fmt.Fprintf(out, "Statistic: %.2f\n", run.ChiSquare.Statistic)
}
