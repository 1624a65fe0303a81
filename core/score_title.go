package core

import (
	"strings"

	"github.com/huangsam/pagescore/schema"
)

// Title length bands in characters.
const (
	titleIdealMin      = 30
	titleIdealMax      = 60
	titleAcceptableMin = 20
	titleAcceptableMax = 70
)

// ScoreTitle scores the page title. The best reachable score is 95.
func ScoreTitle(meta schema.MetaSignals) schema.CategoryScore {
	result := newCategoryScore(schema.TitleCategory)
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		result.Issues = append(result.Issues, "Missing title tag")
		result.Recommendations = append(result.Recommendations, "Add a unique title tag between 30 and 60 characters")
		result.Metrics = schema.TitleMetrics{}
		return result
	}

	length := textLength(meta.TitleLength, title)
	score := 40.0

	switch {
	case length >= titleIdealMin && length <= titleIdealMax:
		score += 30
	case length >= titleAcceptableMin && length <= titleAcceptableMax:
		score += 20
		result.Recommendations = append(result.Recommendations, "Optimize title length to 30-60 characters")
	case length < titleAcceptableMin:
		result.Issues = append(result.Issues, "Title too short")
		result.Recommendations = append(result.Recommendations, "Expand the title to at least 30 characters with descriptive keywords")
	default:
		result.Issues = append(result.Issues, "Title too long")
		result.Recommendations = append(result.Recommendations, "Shorten the title to 60 characters or fewer so it is not truncated")
	}

	words := tokenize(title)
	ratio, repeated := uniqueRatio(words)
	if len(words) >= 3 && ratio >= 0.7 {
		score += 15
	}

	hasBrand := brandPattern.MatchString(title)
	if hasBrand {
		score += 10
	} else {
		result.Recommendations = append(result.Recommendations, "Consider ending the title with your brand name, e.g. \"Page Topic | Brand\"")
	}

	if repeated > 0 {
		score -= 5
		result.Issues = append(result.Issues, "Title contains repeated words")
	}

	result.Score = clampScore(score)
	result.Metrics = schema.TitleMetrics{
		Length:          length,
		WordCount:       len(words),
		UniqueWordRatio: round2(ratio),
		HasBrand:        hasBrand,
		DuplicateWords:  repeated,
	}
	return result
}
