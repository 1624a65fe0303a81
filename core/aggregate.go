package core

import (
	"maps"
	"math"
	"slices"

	"github.com/huangsam/pagescore/schema"
)

// Aggregate combines category results into the weighted overall score, grade and breakdown.
// Every weighted category counts in the denominator; a missing result scores 0.
// The returned report carries no version or timestamp.
func Aggregate(results map[schema.Category]schema.CategoryScore, weights map[schema.Category]int) *schema.Report {
	categories := slices.Sorted(maps.Keys(weights))

	totalWeight := 0
	for _, c := range categories {
		totalWeight += max(weights[c], 0)
	}

	var weighted float64
	breakdown := make(map[schema.Category]schema.BreakdownEntry, len(categories))
	for _, c := range categories {
		weight := max(weights[c], 0)
		score := 0.0
		if r, ok := results[c]; ok {
			score = clampScore(r.Score)
		}
		weighted += score * float64(weight)

		percentage := 0.0
		if totalWeight > 0 {
			percentage = float64(weight) / float64(totalWeight) * 100
		}
		breakdown[c] = schema.BreakdownEntry{
			Score:                 score,
			WeightPercentage:      round1(percentage),
			ContributionToOverall: round1(percentage * score / 100),
			Status:                schema.GetStatus(score),
		}
	}

	overall := 0
	if totalWeight > 0 {
		overall = int(math.Round(weighted / float64(totalWeight)))
	}
	overall = min(max(overall, 0), schema.MaxScore)

	scores := make(map[schema.Category]schema.CategoryScore, len(results))
	maps.Copy(scores, results)

	return &schema.Report{
		OverallScore:     overall,
		Grade:            schema.GetGrade(overall),
		CategoryScores:   scores,
		Breakdown:        breakdown,
		MaxPossibleScore: schema.MaxScore,
	}
}
