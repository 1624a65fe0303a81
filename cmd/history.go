package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/internal/iocache"
	"github.com/huangsam/pagescore/schema"
)

// historySetup validates config and opens only the history store.
func historySetup(args []string) error {
	if err := configSetup(args); err != nil {
		return err
	}
	if cfg.HistoryBackend == schema.NoneBackend {
		return errors.New("no history backend is configured. Set --history-backend or PAGESCORE_HISTORY_BACKEND")
	}

	// Initialize stores with the loaded config (no cache for history commands)
	if err := iocache.InitCaching(rootCtx, "", "", cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, args []string) error {
	return historySetup(args)
}

// historyCmd focused on score history management.
//
// Note: History subcommands open only the history store. The migrate command
// opens nothing so that migrations can run on a fresh database.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the score history",
	Long: `Manage the history of computed reports.

When a history backend is configured, every scored page is recorded with its
overall score, grade and one row per category.

Supported backends: SQLite, MySQL, PostgreSQL, or None (default)

Subcommands:
  status  - Show report counts and time range
  clear   - Remove all recorded reports
  export  - Export reports and category scores to Parquet
  migrate - Run database schema migrations

Examples:
  # Record history in SQLite while scoring
  pagescore score https://example.com --signals page.json --history-backend sqlite

  # Show history status
  pagescore history status --history-backend sqlite`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display score history statistics",
	Long:    `Show the number of recorded reports, distinct URLs, time range and table sizes.`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := cacheManager.GetHistoryStore().GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyClearCmd clears the score history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded reports",
	Long: `Delete the score history from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history and migration tables`,
	PreRunE: configSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := cfg.HistoryDBConnect
		if dbFilePath == "" {
			dbFilePath = contract.GetHistoryDBFilePath()
		}
		if err := iocache.ClearHistory(rootCtx, cfg.HistoryBackend, dbFilePath, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyExportCmd exports the score history to Parquet.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the score history to Parquet files",
	Long: `Write the recorded reports and category scores to two Parquet files named
after --output-file.

Examples:
  # Writes history.reports.parquet and history.category_scores.parquet
  pagescore history export --history-backend sqlite --output-file history`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(rootCtx, os.Stdout, cacheManager.GetHistoryStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs schema migrations.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Apply or roll back the history schema migrations.

Examples:
  # Migrate to the latest version
  pagescore history migrate --history-backend postgresql --history-db-connect "host=localhost dbname=pagescore"

  # Roll back everything
  pagescore history migrate --history-backend sqlite --target-version 0`,
	PreRunE: configSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(rootCtx, os.Stdout, cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to migrate history", err)
		}
	},
}
