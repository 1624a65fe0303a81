package core

import (
	"strings"

	"github.com/huangsam/pagescore/schema"
)

// ScoreMetaDescription scores the meta description.
func ScoreMetaDescription(meta schema.MetaSignals) schema.CategoryScore {
	result := newCategoryScore(schema.MetaDescriptionCategory)
	description := strings.TrimSpace(meta.Description)
	if description == "" {
		result.Issues = append(result.Issues, "Missing meta description")
		result.Recommendations = append(result.Recommendations, "Write a meta description of 120-160 characters summarizing the page")
		result.Metrics = schema.DescriptionMetrics{}
		return result
	}

	length := textLength(meta.DescriptionLength, description)
	score := 50.0

	switch {
	case length >= 120 && length <= 160:
		score += 35
	case length >= 100 && length <= 170:
		score += 25
		result.Recommendations = append(result.Recommendations, "Optimize meta description length to 120-160 characters")
	case length < 100:
		result.Issues = append(result.Issues, "Meta description too short")
		result.Recommendations = append(result.Recommendations, "Expand the meta description to at least 120 characters")
	default:
		result.Issues = append(result.Issues, "Meta description too long")
		result.Recommendations = append(result.Recommendations, "Shorten the meta description to 160 characters or fewer")
	}

	words := tokenize(description)
	cta := hasCallToAction(description, words)
	if cta {
		score += 10
	} else {
		result.Recommendations = append(result.Recommendations, "Add a call to action such as \"Learn more\" or \"Get started\"")
	}

	ratio := meaningfulRatio(words)
	if ratio >= 0.6 {
		score += 5
	}

	result.Score = clampScore(score)
	result.Metrics = schema.DescriptionMetrics{
		Length:              length,
		WordCount:           len(words),
		HasCallToAction:     cta,
		MeaningfulWordRatio: round2(ratio),
	}
	return result
}
