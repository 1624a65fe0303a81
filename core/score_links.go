package core

import (
	"fmt"
	"math"

	"github.com/huangsam/pagescore/schema"
)

// ScoreLinks scores internal and external linking.
func ScoreLinks(l schema.LinkSignals) schema.CategoryScore {
	result := newCategoryScore(schema.LinksCategory)
	total := nonNegative(l.TotalCount)
	if total == 0 {
		result.Issues = append(result.Issues, "No links found")
		result.Recommendations = append(result.Recommendations, "Link to related pages on your site and to authoritative sources")
		result.Metrics = schema.LinkMetrics{}
		return result
	}

	internal := nonNegative(l.InternalCount)
	external := nonNegative(l.ExternalCount)
	empty := min(nonNegative(l.EmptyAnchorCount), total)
	score := 0.0

	if internal > 0 {
		score += 40
		if internal >= 3 {
			score += 10
		}
	} else {
		result.Issues = append(result.Issues, "No internal links")
		result.Recommendations = append(result.Recommendations, "Add internal links to related content")
	}

	if external > 0 {
		score += 20
		if external <= internal {
			score += 10
		}
	} else {
		result.Recommendations = append(result.Recommendations, "Add links to authoritative external sources")
	}

	if empty == 0 {
		score += 20
	} else {
		score -= math.Round(float64(empty) / float64(total) * 20)
		result.Issues = append(result.Issues, fmt.Sprintf("%d links have empty anchor text", empty))
		result.Recommendations = append(result.Recommendations, "Give every link descriptive anchor text")
	}

	ratio := float64(internal) / float64(total)
	if ratio >= 0.6 && ratio <= 0.8 {
		score += 10
	}

	result.Score = clampScore(score)
	result.Metrics = schema.LinkMetrics{
		TotalLinks:    total,
		Internal:      internal,
		External:      external,
		Nofollow:      nonNegative(l.NofollowCount),
		EmptyAnchors:  empty,
		InternalRatio: round2(ratio),
	}
	return result
}
