package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/apodwikat/abtest/internal/infrastructure/database"
	"github.com/apodwikat/abtest/internal/migrate"
	"github.com/apodwikat/abtest/internal/util"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run run-history database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  abtest migrate      # Run all pending migrations
  abtest migrate 1    # Migrate to version 1
  abtest migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	target := -1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
		target = v
	}

	if err := util.EnsureParentDir(settings.Database.URL); err != nil {
		return err
	}
	db, err := database.New(ctx, settings.Database.URL, settings.Database.AuthToken)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	m := migrate.New(db.DB, appLog)
	if err := m.To(ctx, target); err != nil {
		return err
	}

	version, _, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d\n", version)
	return nil
}
