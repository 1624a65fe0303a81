package core

import (
	"strings"
	"unicode/utf8"

	"github.com/huangsam/pagescore/schema"
)

// ScoreHeadings scores the heading outline of the page.
func ScoreHeadings(h schema.HeadingSignals) schema.CategoryScore {
	result := newCategoryScore(schema.HeadingsCategory)
	levels := h.Levels()
	h1, h2, h3 := len(h.H1), len(h.H2), len(h.H3)
	score := 0.0

	switch {
	case h1 == 0:
		result.Issues = append(result.Issues, "Missing H1 heading")
		result.Recommendations = append(result.Recommendations, "Add exactly one H1 heading describing the page topic")
	case h1 == 1:
		score += 40
	default:
		score += 20
		result.Issues = append(result.Issues, "Multiple H1 headings found")
		result.Recommendations = append(result.Recommendations, "Keep a single H1 and demote the others to H2")
	}

	if h2 > 0 {
		score += 25
		if h3 <= 3*h2 {
			score += 15
		} else {
			result.Recommendations = append(result.Recommendations, "Group H3 headings under more H2 sections")
		}
	} else {
		result.Recommendations = append(result.Recommendations, "Add H2 subheadings to structure the content")
	}

	total, quality := 0, 0
	for _, texts := range levels {
		for _, text := range texts {
			total++
			n := utf8.RuneCountInString(strings.TrimSpace(text))
			if n >= 20 && n <= 70 {
				quality++
			}
		}
	}
	score += float64(min(quality*2, 10))

	valid := validHierarchy(levels)
	if valid {
		score += 10
	} else if total > 0 {
		result.Issues = append(result.Issues, "Heading hierarchy skips levels")
		result.Recommendations = append(result.Recommendations, "Nest headings in order (H1, then H2, then H3) without skipping levels")
	}

	result.Score = clampScore(score)
	result.Metrics = schema.HeadingMetrics{
		H1Count:         h1,
		H2Count:         h2,
		H3Count:         h3,
		TotalHeadings:   total,
		QualityHeadings: quality,
		HierarchyValid:  valid,
	}
	return result
}

// validHierarchy walks the present levels from level 0 and fails on any gap.
// A page with no headings has no valid hierarchy.
func validHierarchy(levels [6][]string) bool {
	prev := 0
	for i, texts := range levels {
		if len(texts) == 0 {
			continue
		}
		level := i + 1
		if level-prev > 1 {
			return false
		}
		prev = level
	}
	return prev > 0
}
