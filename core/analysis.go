package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/internal/iocache"
	"github.com/huangsam/pagescore/internal/outwriter"
	"github.com/huangsam/pagescore/schema"
)

// ErrNoSignals is returned when the signals input is empty.
var ErrNoSignals = errors.New("no page signals provided")

// NewCache builds the analysis cache over the cache store of mgr.
// It returns nil when caching is disabled, the backend is none or no store is configured.
func NewCache(cfg *contract.Config, mgr contract.CacheManager, rec contract.MetricsRecorder) *iocache.AnalysisCache {
	if cfg.NoCache || cfg.CacheBackend == schema.NoneBackend || mgr == nil {
		return nil
	}
	store := mgr.GetCacheStore()
	if store == nil {
		return nil
	}
	cache, err := iocache.NewAnalysisCache(store, iocache.FromConfig(cfg), iocache.WithRecorder(rec))
	if err != nil {
		contract.LogWarn("Analysis cache unavailable", err)
		return nil
	}
	return cache
}

// GetScoreResult scores the signals through the cache and records the report in history.
// The identifier is the configured subject, falling back to the canonical URL of the page.
func GetScoreResult(
	ctx context.Context,
	cfg *contract.Config,
	engine *Engine,
	cache *iocache.AnalysisCache,
	history contract.HistoryStore,
	signals *schema.PageSignals,
) (schema.ScoreResult, error) {
	identifier := cfg.Subject
	if identifier == "" && signals != nil {
		identifier = strings.TrimSpace(signals.Meta.Canonical)
	}

	// Keep a nil pointer from becoming a non-nil interface
	var analysisCache contract.AnalysisCache
	if cache != nil {
		analysisCache = cache
	}

	report, cached, err := ScoreCached(ctx, engine, analysisCache, ScoreRequest{
		Kind:       cfg.Kind,
		Identifier: identifier,
		Hints:      cfg.Hints,
		Signals:    signals,
	})
	if err != nil {
		return schema.ScoreResult{}, err
	}

	result := schema.ScoreResult{
		ReportID: uuid.NewString(),
		URL:      identifier,
		Kind:     cfg.Kind,
		Cached:   cached,
		Report:   report,
	}
	if result.Kind == "" {
		result.Kind = schema.URLAnalysis
	}

	if history != nil {
		if err := history.RecordReport(ctx, result.ReportID, identifier, report, cached); err != nil {
			contract.LogWarn("Failed to record score history", err)
		}
	}
	return result, nil
}

// ExecuteScore scores one page and prints the report.
// It serves as the main entry point for the 'score' command.
func ExecuteScore(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, signals *schema.PageSignals) error {
	start := time.Now()
	engine := NewEngine(cfg.Weights, nil, "")

	var history contract.HistoryStore
	if mgr != nil {
		history = mgr.GetHistoryStore()
	}

	result, err := GetScoreResult(ctx, cfg, engine, NewCache(cfg, mgr, nil), history, signals)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteReport(result, cfg, time.Since(start))
}

// ExecuteWeights prints the active category weights.
func ExecuteWeights(_ context.Context, cfg *contract.Config) error {
	weights := cfg.Weights
	if weights == nil {
		weights = schema.GetDefaultWeights()
	}
	return outwriter.NewOutWriter().WriteWeights(weights, cfg)
}

// LoadSignals reads page signals as JSON from path. An empty path or "-" reads stdin.
func LoadSignals(path string, stdin io.Reader) (*schema.PageSignals, error) {
	var r io.Reader = stdin
	if path != "" && path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open signals file: %w", err)
		}
		defer func() { _ = file.Close() }()
		r = file
	}
	if r == nil {
		return nil, ErrNoSignals
	}
	return DecodeSignals(r)
}

// DecodeSignals parses page signals from a JSON stream.
func DecodeSignals(r io.Reader) (*schema.PageSignals, error) {
	var signals schema.PageSignals
	if err := json.NewDecoder(r).Decode(&signals); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoSignals
		}
		return nil, fmt.Errorf("failed to parse page signals: %w", err)
	}
	return &signals, nil
}
