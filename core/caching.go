package core

import (
	"context"
	"fmt"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

// ScoreRequest identifies the page to score and how its report is cached.
type ScoreRequest struct {
	Kind       schema.AnalysisKind
	Identifier string
	Hints      map[string]string
	Signals    *schema.PageSignals
}

// ScoreCached returns the cached report for the request when one is fresh and was
// produced under the engine's weights. Otherwise it scores the signals and stores
// the report under the resolved content type, replacing any outdated entry.
// The boolean result reports whether the report came from the cache.
func ScoreCached(ctx context.Context, engine *Engine, cache contract.AnalysisCache, req ScoreRequest) (*schema.Report, bool, error) {
	if req.Signals == nil {
		return nil, false, fmt.Errorf("%w: nil page signals", ErrInvalidInput)
	}
	kind := req.Kind
	if kind == "" {
		kind = schema.URLAnalysis
	}
	cacheable := cache != nil && req.Identifier != ""

	// Check for cache hit
	if cacheable {
		var cached schema.Report
		if cache.Fetch(ctx, kind, req.Identifier, req.Hints, &cached) && engine.Produced(&cached) {
			return &cached, true, nil
		}
	}

	// Cache miss: compute and store
	report, err := engine.Score(req.Signals)
	if err != nil {
		return nil, false, err
	}
	if cacheable {
		_ = cache.Store(ctx, kind, req.Identifier, report, contentTypeFor(req.Hints), req.Hints)
	}
	return report, false, nil
}

// contentTypeFor picks the content type hint, defaulting to a full analysis.
func contentTypeFor(hints map[string]string) schema.ContentType {
	if ct := hints["content_type"]; ct != "" {
		return schema.ContentType(ct)
	}
	return schema.FullAnalysisContent
}
