package core

import (
	"strings"

	"github.com/huangsam/pagescore/schema"
)

// maxInlineAssets is the number of inline styles plus scripts tolerated before flagging.
const maxInlineAssets = 10

// ScoreTechnical scores document-level technical flags.
func ScoreTechnical(t schema.TechnicalSignals) schema.CategoryScore {
	result := newCategoryScore(schema.TechnicalCategory)
	hasDoctype := strings.TrimSpace(t.Doctype) != ""
	hasLang := strings.TrimSpace(t.LangAttribute) != ""
	styles := nonNegative(t.InlineStylesCount)
	scripts := nonNegative(t.InlineScriptsCount)
	score := 15.0 // baseline for a parseable document

	if hasDoctype {
		score += 15
	} else {
		result.Issues = append(result.Issues, "Missing DOCTYPE declaration")
		result.Recommendations = append(result.Recommendations, "Declare <!DOCTYPE html> at the top of the document")
	}
	if hasLang {
		score += 15
	} else {
		result.Issues = append(result.Issues, "Missing lang attribute")
		result.Recommendations = append(result.Recommendations, "Set the lang attribute on the html element")
	}
	if t.SSLRequired {
		score += 20
	} else {
		result.Issues = append(result.Issues, "Page is not served over HTTPS")
		result.Recommendations = append(result.Recommendations, "Serve the page over HTTPS")
	}
	if t.SchemaMarkupPresent {
		score += 20
	} else {
		result.Recommendations = append(result.Recommendations, "Add schema.org markup")
	}
	if t.OpenGraphPresent {
		score += 10
	} else {
		result.Recommendations = append(result.Recommendations, "Add Open Graph tags")
	}

	switch inline := styles + scripts; {
	case inline == 0:
		score += 5
	case inline > maxInlineAssets:
		result.Issues = append(result.Issues, "Too many inline styles or scripts")
		result.Recommendations = append(result.Recommendations, "Move inline styles and scripts to external files")
	}

	result.Score = clampScore(score)
	result.Metrics = schema.TechnicalMetrics{
		HasDoctype:    hasDoctype,
		HasLang:       hasLang,
		SSL:           t.SSLRequired,
		SchemaMarkup:  t.SchemaMarkupPresent,
		OpenGraph:     t.OpenGraphPresent,
		InlineStyles:  styles,
		InlineScripts: scripts,
	}
	return result
}
