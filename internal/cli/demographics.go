package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/apodwikat/abtest/internal/util"
)

var demographicsCmd = &cobra.Command{
	Use:   "demographics",
	Short: "Summarize applicant nationality, age and education",
	Long: `Print the applicant demographics shown on the dashboard.

Examples:
  abtest demographics
  abtest demographics --chart age --html age.html   # Also render a chart page`,
	RunE: runDemographics,
}

var (
	demoTop   int
	demoChart string
	demoHTML  string
)

func init() {
	rootCmd.AddCommand(demographicsCmd)
	demographicsCmd.Flags().IntVarP(&demoTop, "top", "t", 10, "Number of countries to list")
	demographicsCmd.Flags().StringVar(&demoChart, "chart", "nationality", "Chart to render with --html (nationality, age, education)")
	demographicsCmd.Flags().StringVar(&demoHTML, "html", "", "Write the selected chart as an HTML page")
}

func runDemographics(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := NewAppContext(ctx, settings, appLog, appOptions{dataset: true})
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()

	out := cmd.OutOrStdout()
	repo := app.Applicants
	fmt.Fprintf(out, "Applicants: %s\n\n", util.FormatNumber(int64(repo.Len())))

	// Counts come back in ascending order.
	countries := repo.NationalityCounts(true)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COUNTRY\tISO3\tAPPLICANTS\tSHARE")
	for i := len(countries) - 1; i >= 0 && len(countries)-i <= demoTop; i-- {
		c := countries[i]
		name := c.Name
		if name == "" {
			name = c.ISO2
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", name, c.ISO3, c.Count, util.FormatPercent(c.Percent))
	}
	_ = w.Flush()

	ages := repo.Ages(time.Now())
	if len(ages) > 0 {
		xs := make([]float64, len(ages))
		for i, a := range ages {
			xs[i] = float64(a)
		}
		mean, std := stat.MeanStdDev(xs, nil)
		fmt.Fprintf(out, "\nAge: mean %.1f, std %.1f (%d applicants with a birthday)\n", mean, std, len(ages))
	}

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HIGHEST DEGREE\tSHARE")
	for _, d := range repo.EducationCounts(true) {
		fmt.Fprintf(w, "%s\t%s\n", d.Degree, util.FormatPercent(d.Value))
	}
	_ = w.Flush()

	if demoHTML != "" {
		f, err := os.Create(demoHTML)
		if err != nil {
			return fmt.Errorf("failed to create chart file: %w", err)
		}
		defer f.Close()
		if err := app.Charts.Render(f, demoChart); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nChart written to %s\n", demoHTML)
	}
	return nil
}
