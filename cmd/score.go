package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/pagescore/core"
	"github.com/huangsam/pagescore/internal/contract"
)

// scoreCmd scores one page from its extracted signals.
var scoreCmd = &cobra.Command{
	Use:   "score [url]",
	Short: "Score the on-page SEO signals of a page",
	Long: `Score a page from the signals extracted by an HTML parser and print the report.

The report has one score per category (title, meta description, headings,
content, images, links, technical, social media, structured data), a weighted
overall score and a letter grade.

Reports are cached under a key built from the analysis kind, the URL and the
context hints. A fresh cached report is returned without rescoring.

Examples:
  # Score a page from a signals file
  pagescore score https://example.com/shoes --signals page.json

  # Read signals from stdin and cache for a high-priority page
  cat page.json | pagescore score https://example.com --priority high

  # Score a domain analysis as JSON without touching the cache
  pagescore score example.com --kind domain_analysis --signals page.json --no-cache --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		signals, err := core.LoadSignals(viper.GetString("signals"), cmd.InOrStdin())
		if err != nil {
			contract.LogFatal("Cannot load page signals", err)
		}
		if err := core.ExecuteScore(rootCtx, cfg, cacheManager, signals); err != nil {
			contract.LogFatal("Cannot score page", err)
		}
	},
}

// weightsCmd displays the active category weights.
var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Display the category weights used for the overall score",
	Long: `Show the weight of every scoring category and what each category rewards.

Weights can be customized in .pagescore.yaml and must sum to 100:

  weights:
    title: 25
    content: 15

No page is scored - this is purely informational.

Examples:
  # Show the default weights
  pagescore weights

  # View custom weights from a config file as CSV
  pagescore weights --config .pagescore.yaml --output csv`,
	PreRunE: configSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteWeights(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot display weights", err)
		}
	},
}
