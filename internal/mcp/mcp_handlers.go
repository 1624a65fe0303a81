package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/huangsam/pagescore/core"
	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/internal/iocache"
	"github.com/huangsam/pagescore/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	engine  *core.Engine
	cache   *iocache.AnalysisCache // nil when caching is disabled
}

// requestConfig clones the base config and applies the identifier, kind and hints of a request.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	input := &contract.ConfigRawInput{
		URL:             request.GetString("url", ""),
		Kind:            request.GetString("kind", ""),
		ContentType:     request.GetString("content_type", ""),
		Priority:        request.GetString("priority", ""),
		UserID:          request.GetString("user_id", ""),
		CachePreference: request.GetString("cache_preference", ""),
		BatchID:         request.GetString("batch_id", ""),
		Domain:          request.GetString("domain", ""),
		Competitor:      request.GetString("competitor", ""),
	}
	if err := contract.RevalidateScore(cfg, input); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (h *toolHandler) handleScorePage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("signals", "")
	if strings.TrimSpace(raw) == "" {
		return mcp.NewToolResultError("signals is required"), nil
	}
	signals, err := core.DecodeSignals(strings.NewReader(raw))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid signals: %v", err)), nil
	}

	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid scoring parameters: %v", err)), nil
	}

	var history contract.HistoryStore
	if h.mgr != nil {
		history = h.mgr.GetHistoryStore()
	}
	result, err := core.GetScoreResult(ctx, cfg, h.engine, h.cache, history, signals)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetCachedReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.cache == nil {
		return mcp.NewToolResultError("cache is disabled"), nil
	}
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid lookup parameters: %v", err)), nil
	}
	if cfg.Subject == "" {
		return mcp.NewToolResultError("url is required"), nil
	}

	var report schema.Report
	if !h.cache.Fetch(ctx, cfg.Kind, cfg.Subject, cfg.Hints, &report) {
		return mcp.NewToolResultError(fmt.Sprintf("no fresh cached %s for %s", cfg.Kind, cfg.Subject)), nil
	}

	result := schema.ScoreResult{URL: cfg.Subject, Kind: cfg.Kind, Cached: true, Report: &report}
	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleInvalidateCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.cache == nil {
		return mcp.NewToolResultError("cache is disabled"), nil
	}
	url := strings.TrimSpace(request.GetString("url", ""))
	domain := strings.TrimSpace(request.GetString("domain", ""))
	if url == "" && domain == "" {
		return mcp.NewToolResultError("either url or domain is required"), nil
	}

	deleted := 0
	if url != "" {
		deleted += h.cache.InvalidateBySubject(ctx, url)
	}
	if domain != "" {
		deleted += h.cache.InvalidateByDomain(ctx, domain)
	}

	jsonData, _ := json.MarshalIndent(map[string]int{"deleted": deleted}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCacheStatistics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.cache == nil {
		return mcp.NewToolResultError("cache is disabled"), nil
	}
	jsonData, _ := json.MarshalIndent(h.cache.Statistics(ctx), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
