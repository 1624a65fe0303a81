package core

import (
	"fmt"
	"math"

	"github.com/huangsam/pagescore/schema"
)

// ScoreImages scores alt and title attribute coverage.
// A page without images scores 100 but is still flagged.
func ScoreImages(img schema.ImageSignals) schema.CategoryScore {
	result := newCategoryScore(schema.ImagesCategory)
	total := nonNegative(img.TotalCount)
	if total == 0 {
		result.Score = 100
		result.Issues = append(result.Issues, "No images found")
		result.Recommendations = append(result.Recommendations, "Add relevant images with descriptive alt text")
		result.Metrics = schema.ImageMetrics{AltCoverage: 1}
		return result
	}

	withoutAlt := min(nonNegative(img.WithoutAltCount), total)
	withoutTitle := min(nonNegative(img.WithoutTitleCount), total)

	score := 100 - math.Round(float64(withoutAlt)/float64(total)*100)
	if withoutAlt > 0 {
		result.Issues = append(result.Issues, fmt.Sprintf("%d of %d images missing alt text", withoutAlt, total))
		result.Recommendations = append(result.Recommendations, "Add descriptive alt text to every image")
	}
	if withoutTitle == total {
		score -= 10
		result.Recommendations = append(result.Recommendations, "Add title attributes to key images")
	}

	result.Score = clampScore(score)
	result.Metrics = schema.ImageMetrics{
		TotalImages:  total,
		WithoutAlt:   withoutAlt,
		WithoutTitle: withoutTitle,
		AltCoverage:  round2(float64(total-withoutAlt) / float64(total)),
	}
	return result
}
