// Package cmd defines the command-line interface for pagescore.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(weightsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or redis or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Connection string for the cache backend (e.g., redis://localhost:6379/0)")
	rootCmd.PersistentFlags().String("history-backend", "", "Score history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Connection string for score history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("key-prefix", schema.DefaultKeyPrefix, "Prefix of every cache key")
	rootCmd.PersistentFlags().String("schema-version", schema.DefaultSchemaVersion, "Cache schema version; older entries are treated as stale")
	rootCmd.PersistentFlags().Int("compression-threshold", schema.DefaultCompressionThreshold, "Payload size in bytes above which cache entries are compressed")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scoreCmd to Viper
	scoreCmd.Flags().String("signals", "", "Path to the page signals JSON file ('-' or empty reads stdin)")
	scoreCmd.Flags().String("kind", string(schema.URLAnalysis), "Analysis kind used for the cache key")
	scoreCmd.Flags().String("url", "", "Identifier of the analysis (overrides the positional argument)")
	scoreCmd.Flags().String("content-type", "", "Freshness class of the result (e.g., score_only, crawl_data)")
	scoreCmd.Flags().String("priority", "", "Set to 'high' to cap the cache lifetime at 30 minutes")
	scoreCmd.Flags().String("user-id", "", "User the analysis belongs to")
	scoreCmd.Flags().String("cache-preference", "", "User freshness tier: short or normal or long or extended")
	scoreCmd.Flags().String("batch-id", "", "Batch the analysis belongs to")
	scoreCmd.Flags().String("domain", "", "Domain the analysis belongs to")
	scoreCmd.Flags().String("competitor", "", "Competitor domain for competitor analyses")
	scoreCmd.Flags().Bool("no-cache", false, "Score without reading or writing the cache")
	if err := viper.BindPFlags(scoreCmd.Flags()); err != nil {
		contract.LogFatal("Error binding score flags", err)
	}

	// Invalidation targets are read from the command directly so they do not shadow the score flags
	cacheInvalidateCmd.Flags().String("url", "", "Identifier whose analyses of every kind are dropped")
	cacheInvalidateCmd.Flags().String("domain", "", "Domain whose analyses are dropped")

	// Bind all flags of mcpCmd to Viper
	mcpCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g., :9090)")
	if err := viper.BindPFlags(mcpCmd.Flags()); err != nil {
		contract.LogFatal("Error binding mcp flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
