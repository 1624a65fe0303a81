package core

import "github.com/huangsam/pagescore/schema"

// ScoreContent scores body text volume and structure.
// The 300 word threshold only gates the word count points.
func ScoreContent(c schema.ContentSignals) schema.CategoryScore {
	result := newCategoryScore(schema.ContentCategory)
	words := nonNegative(c.WordCount)
	paragraphs := nonNegative(c.Paragraphs)
	ratio := finiteNonNegative(c.TextToHTMLRatio)
	reading := finiteNonNegative(c.ReadingTimeMinutes)
	score := 0.0

	switch {
	case words >= 1000:
		score += 40
	case words >= 600:
		score += 35
	case words >= 300:
		score += 25
	default:
		result.Issues = append(result.Issues, "Thin content: fewer than 300 words")
		result.Recommendations = append(result.Recommendations, "Expand the content to at least 300 words of useful text")
	}

	switch {
	case ratio >= 25:
		score += 25
	case ratio >= 15:
		score += 15
	default:
		result.Issues = append(result.Issues, "Low text-to-HTML ratio")
		result.Recommendations = append(result.Recommendations, "Reduce markup bloat or add more visible text")
	}

	switch {
	case reading >= 2 && reading <= 10:
		score += 20
	case reading > 10:
		score += 15
	default:
		result.Recommendations = append(result.Recommendations, "Aim for at least two minutes of reading time")
	}

	if paragraphs >= 3 {
		score += 10
	} else {
		result.Recommendations = append(result.Recommendations, "Break the content into at least three paragraphs")
	}

	result.Score = clampScore(score)
	result.Metrics = schema.ContentMetrics{
		WordCount:          words,
		TextToHTMLRatio:    ratio,
		ReadingTimeMinutes: reading,
		Paragraphs:         paragraphs,
	}
	return result
}
