// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/huangsam/pagescore/core"
	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/internal/metrics"
)

// kindOptions lists the analysis kinds accepted by the tools.
var kindOptions = []string{
	"url_analysis",
	"domain_analysis",
	"keyword_analysis",
	"batch_analysis",
	"user_analysis",
	"competitor_analysis",
}

// hintOptions declares the optional hint arguments shared by the scoring and lookup tools.
func hintOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("url", mcp.Description("Identifier of the analysis, usually the page URL.")),
		mcp.WithString("kind", mcp.Description("Analysis kind. Defaults to 'url_analysis'."), mcp.Enum(kindOptions...)),
		mcp.WithString("content_type", mcp.Description("Freshness class of the result (e.g., 'score_only', 'crawl_data').")),
		mcp.WithString("priority", mcp.Description("Set to 'high' to cap the cache lifetime at 30 minutes.")),
		mcp.WithString("user_id", mcp.Description("User the analysis belongs to.")),
		mcp.WithString("cache_preference", mcp.Description("User freshness tier (short, normal, long, extended)."), mcp.Enum("short", "normal", "long", "extended")),
		mcp.WithString("batch_id", mcp.Description("Batch the analysis belongs to.")),
		mcp.WithString("domain", mcp.Description("Domain the analysis belongs to.")),
		mcp.WithString("competitor", mcp.Description("Competitor domain for competitor analyses.")),
	}
}

// NewMCPServer initializes and configures the PageScore MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, rec contract.MetricsRecorder) *server.MCPServer {
	s := server.NewMCPServer(
		"PageScore SEO Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		engine:  core.NewEngine(baseCfg.Weights, nil, "").WithRecorder(rec),
		cache:   core.NewCache(baseCfg, mgr, rec),
	}

	// --- 1. Tool: score_page ---
	scoreOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Score the on-page SEO signals of a page and cache the report."),
		mcp.WithString("signals", mcp.Description("Page signals as a JSON object."), mcp.Required()),
	}, hintOptions()...)
	s.AddTool(mcp.NewTool("score_page", scoreOpts...), h.handleScorePage)

	// --- 2. Tool: get_cached_report ---
	cachedOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Look up a fresh cached report without scoring."),
	}, hintOptions()...)
	s.AddTool(mcp.NewTool("get_cached_report", cachedOpts...), h.handleGetCachedReport)

	// --- 3. Tool: invalidate_cache ---
	s.AddTool(mcp.NewTool("invalidate_cache",
		mcp.WithDescription("Drop cached analyses of one identifier or of a whole domain."),
		mcp.WithString("url", mcp.Description("Identifier whose analyses of every kind are dropped.")),
		mcp.WithString("domain", mcp.Description("Domain whose analyses are dropped.")),
	), h.handleInvalidateCache)

	// --- 4. Tool: cache_statistics ---
	s.AddTool(mcp.NewTool("cache_statistics",
		mcp.WithDescription("Report key counts per analysis kind and the hit ratio of this server."),
	), h.handleCacheStatistics)

	return s
}

// StartMCPServer starts the PageScore MCP server over stdio.
// When a metrics address is configured, Prometheus metrics are served alongside it.
func StartMCPServer(ctx context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	rec := metrics.NewRecorder()
	if baseCfg.MetricsAddr != "" {
		go func() {
			if err := rec.Serve(ctx, baseCfg.MetricsAddr); err != nil {
				slog.Error("metrics listener stopped", "addr", baseCfg.MetricsAddr, "error", err)
			}
		}()
	}
	s := NewMCPServer(baseCfg, mgr, rec)
	return server.ServeStdio(s)
}
