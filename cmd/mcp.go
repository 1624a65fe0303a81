package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/pagescore/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the PageScore MCP server",
	Long: `Launch an MCP server over stdio that allows AI agents to score pages and query the analysis cache via standard tools.

Tools:
  score_page        - Score page signals and cache the report
  get_cached_report - Look up a fresh cached report
  invalidate_cache  - Drop the analyses of a URL or a domain
  cache_statistics  - Key counts per analysis kind and hit ratio

Examples:
  # Serve tools and expose Prometheus metrics
  pagescore mcp --metrics-addr :9090`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
