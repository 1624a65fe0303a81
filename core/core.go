// Package core has core logic for scoring pages and serving reports through the analysis cache.
package core

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

// ErrInvalidInput is returned when the engine is called without page signals.
var ErrInvalidInput = errors.New("invalid input")

// defaultWeights is read by standalone scorers. Engine overrides the weight per call.
var defaultWeights = schema.GetDefaultWeights()

// Engine turns page signals into a weighted report.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	weights  map[schema.Category]int
	clock    contract.Clock
	version  string
	recorder contract.MetricsRecorder
}

// NewEngine creates an engine. Nil weights, a nil clock or an empty version fall back to defaults.
func NewEngine(weights map[schema.Category]int, clock contract.Clock, version string) *Engine {
	if weights == nil {
		weights = schema.GetDefaultWeights()
	}
	if clock == nil {
		clock = contract.SystemClock{}
	}
	if version == "" {
		version = schema.DefaultScoringVersion
	}
	return &Engine{
		weights:  maps.Clone(weights),
		clock:    clock,
		version:  version,
		recorder: contract.NopRecorder{},
	}
}

// WithRecorder returns a copy of the engine that reports scoring events to rec.
func (e *Engine) WithRecorder(rec contract.MetricsRecorder) *Engine {
	clone := *e
	if rec == nil {
		rec = contract.NopRecorder{}
	}
	clone.recorder = rec
	return &clone
}

// Weights returns a copy of the category weights in use.
func (e *Engine) Weights() map[schema.Category]int {
	return maps.Clone(e.weights)
}

// Version returns the scoring version stamped on reports.
func (e *Engine) Version() string {
	return e.version
}

// Produced reports whether report carries this engine's scoring version and category weights.
// Reports built under other weights have a different overall score and breakdown.
func (e *Engine) Produced(report *schema.Report) bool {
	if report == nil || report.ScoringVersion != e.version || len(report.Breakdown) != len(e.weights) {
		return false
	}
	for c, w := range e.weights {
		score, ok := report.CategoryScores[c]
		if !ok || score.Weight != w {
			return false
		}
		if _, ok := report.Breakdown[c]; !ok {
			return false
		}
	}
	return true
}

// Score runs every category scorer and aggregates the results.
// Apart from CalculatedAt, the report is a pure function of signals.
func (e *Engine) Score(signals *schema.PageSignals) (*schema.Report, error) {
	if signals == nil {
		return nil, fmt.Errorf("%w: nil page signals", ErrInvalidInput)
	}
	start := time.Now()

	results := ScoreCategories(signals)
	for c, r := range results {
		r.Weight = e.weights[c]
		results[c] = r
	}

	report := Aggregate(results, e.weights)
	report.ScoringVersion = e.version
	report.CalculatedAt = e.clock.Now().UTC()

	e.recorder.ObserveScore(time.Since(start), report.Grade)
	return report, nil
}

// ScoreCategories runs the nine category scorers with their default weights.
func ScoreCategories(s *schema.PageSignals) map[schema.Category]schema.CategoryScore {
	return map[schema.Category]schema.CategoryScore{
		schema.TitleCategory:           ScoreTitle(s.Meta),
		schema.MetaDescriptionCategory: ScoreMetaDescription(s.Meta),
		schema.HeadingsCategory:        ScoreHeadings(s.Headings),
		schema.ContentCategory:         ScoreContent(s.Content),
		schema.ImagesCategory:          ScoreImages(s.Images),
		schema.LinksCategory:           ScoreLinks(s.Links),
		schema.TechnicalCategory:       ScoreTechnical(s.Technical),
		schema.SocialMediaCategory:     ScoreSocialMedia(s.SocialMedia, s.Meta),
		schema.StructuredDataCategory:  ScoreStructuredData(s.StructuredData),
	}
}

func newCategoryScore(c schema.Category) schema.CategoryScore {
	return schema.CategoryScore{
		MaxScore:        schema.MaxScore,
		Weight:          defaultWeights[c],
		Issues:          []string{},
		Recommendations: []string{},
	}
}
