package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/huangsam/pagescore/schema"
)

// versionCmd prints build details and the rule versions stamped on reports and cache entries.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pagescore.",
	Long: `Display build details together with the scoring version written into
every report and the cache schema version used to detect stale entries.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("pagescore CLI %s (%s, built %s, %s)\n", version, commit, date, runtime.Version())
		cmd.Printf("  Scoring rules: %s\n", schema.DefaultScoringVersion)
		cmd.Printf("  Cache schema:  %s\n", schema.DefaultSchemaVersion)
	},
}
