package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// CategoryScore is the result of a single category scorer.
type CategoryScore struct {
	Score           float64  `json:"score"`
	MaxScore        int      `json:"max_score"`
	Weight          int      `json:"weight"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
	Metrics         any      `json:"metrics"` // one of the *Metrics structs below
}

// BreakdownEntry explains how one category contributed to the overall score.
type BreakdownEntry struct {
	Score                 float64 `json:"score"`
	WeightPercentage      float64 `json:"weight_percentage"`
	ContributionToOverall float64 `json:"contribution_to_overall"`
	Status                string  `json:"status"`
}

// Report is the final output of the scoring engine.
type Report struct {
	OverallScore     int                         `json:"overall_score"`
	Grade            Grade                       `json:"grade"`
	CategoryScores   map[Category]CategoryScore  `json:"category_scores"`
	Breakdown        map[Category]BreakdownEntry `json:"breakdown"`
	MaxPossibleScore int                         `json:"max_possible_score"`
	ScoringVersion   string                      `json:"scoring_version"`
	CalculatedAt     time.Time                   `json:"calculated_at"`
}

// TitleMetrics are the measurements behind the title score.
type TitleMetrics struct {
	Length          int     `json:"length"`
	WordCount       int     `json:"word_count"`
	UniqueWordRatio float64 `json:"unique_word_ratio"`
	HasBrand        bool    `json:"has_brand"`
	DuplicateWords  int     `json:"duplicate_words"`
}

// DescriptionMetrics are the measurements behind the meta description score.
type DescriptionMetrics struct {
	Length              int     `json:"length"`
	WordCount           int     `json:"word_count"`
	HasCallToAction     bool    `json:"has_call_to_action"`
	MeaningfulWordRatio float64 `json:"meaningful_word_ratio"`
}

// HeadingMetrics are the measurements behind the headings score.
type HeadingMetrics struct {
	H1Count         int  `json:"h1_count"`
	H2Count         int  `json:"h2_count"`
	H3Count         int  `json:"h3_count"`
	TotalHeadings   int  `json:"total_headings"`
	QualityHeadings int  `json:"quality_headings"`
	HierarchyValid  bool `json:"hierarchy_valid"`
}

// ContentMetrics are the measurements behind the content score.
type ContentMetrics struct {
	WordCount          int     `json:"word_count"`
	TextToHTMLRatio    float64 `json:"text_to_html_ratio"`
	ReadingTimeMinutes float64 `json:"reading_time_minutes"`
	Paragraphs         int     `json:"paragraphs"`
}

// ImageMetrics are the measurements behind the images score.
type ImageMetrics struct {
	TotalImages  int     `json:"total_images"`
	WithoutAlt   int     `json:"without_alt"`
	WithoutTitle int     `json:"without_title"`
	AltCoverage  float64 `json:"alt_coverage"`
}

// LinkMetrics are the measurements behind the links score.
type LinkMetrics struct {
	TotalLinks    int     `json:"total_links"`
	Internal      int     `json:"internal"`
	External      int     `json:"external"`
	Nofollow      int     `json:"nofollow"`
	EmptyAnchors  int     `json:"empty_anchors"`
	InternalRatio float64 `json:"internal_ratio"`
}

// TechnicalMetrics are the measurements behind the technical score.
type TechnicalMetrics struct {
	HasDoctype    bool `json:"has_doctype"`
	HasLang       bool `json:"has_lang"`
	SSL           bool `json:"ssl"`
	SchemaMarkup  bool `json:"schema_markup"`
	OpenGraph     bool `json:"open_graph"`
	InlineStyles  int  `json:"inline_styles"`
	InlineScripts int  `json:"inline_scripts"`
}

// SocialMetrics are the measurements behind the social media score.
type SocialMetrics struct {
	OpenGraphScore float64 `json:"open_graph_score"`
	TwitterScore   float64 `json:"twitter_score"`
	OpenGraphTags  int     `json:"open_graph_tags"`
	TwitterTags    int     `json:"twitter_tags"`
}

// StructuredDataMetrics are the measurements behind the structured data score.
type StructuredDataMetrics struct {
	JSONLDCount    int      `json:"json_ld_count"`
	MicrodataCount int      `json:"microdata_count"`
	RDFaCount      int      `json:"rdfa_count"`
	SchemaTypes    []string `json:"schema_types"`
}

// UnmarshalJSON restores the typed metrics of every category score.
func (r *Report) UnmarshalJSON(data []byte) error {
	type reportAlias Report
	var raw struct {
		reportAlias
		CategoryScores map[Category]json.RawMessage `json:"category_scores"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Report(raw.reportAlias)
	if raw.CategoryScores == nil {
		r.CategoryScores = nil
		return nil
	}
	r.CategoryScores = make(map[Category]CategoryScore, len(raw.CategoryScores))
	for category, body := range raw.CategoryScores {
		cs, err := decodeCategoryScore(category, body)
		if err != nil {
			return fmt.Errorf("category %s: %w", category, err)
		}
		r.CategoryScores[category] = cs
	}
	return nil
}

func decodeCategoryScore(category Category, body []byte) (CategoryScore, error) {
	var raw struct {
		CategoryScore
		Metrics json.RawMessage `json:"metrics"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return CategoryScore{}, err
	}
	cs := raw.CategoryScore
	if cs.Issues == nil {
		cs.Issues = []string{}
	}
	if cs.Recommendations == nil {
		cs.Recommendations = []string{}
	}
	if len(raw.Metrics) == 0 || string(raw.Metrics) == "null" {
		return cs, nil
	}
	metrics, err := decodeMetrics(category, raw.Metrics)
	if err != nil {
		return CategoryScore{}, err
	}
	cs.Metrics = metrics
	return cs, nil
}

func decodeMetrics(category Category, body []byte) (any, error) {
	switch category {
	case TitleCategory:
		return decodeInto[TitleMetrics](body)
	case MetaDescriptionCategory:
		return decodeInto[DescriptionMetrics](body)
	case HeadingsCategory:
		return decodeInto[HeadingMetrics](body)
	case ContentCategory:
		return decodeInto[ContentMetrics](body)
	case ImagesCategory:
		return decodeInto[ImageMetrics](body)
	case LinksCategory:
		return decodeInto[LinkMetrics](body)
	case TechnicalCategory:
		return decodeInto[TechnicalMetrics](body)
	case SocialMediaCategory:
		return decodeInto[SocialMetrics](body)
	case StructuredDataCategory:
		return decodeInto[StructuredDataMetrics](body)
	default:
		var generic map[string]any
		err := json.Unmarshal(body, &generic)
		return generic, err
	}
}

func decodeInto[T any](body []byte) (any, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}
