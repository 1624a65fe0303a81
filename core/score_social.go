package core

import (
	"fmt"
	"strings"

	"github.com/huangsam/pagescore/schema"
)

// Social sub-score weights. The combined maximum is 0.7*60 + 0.3*40 = 54.
const (
	openGraphTagPoints = 15
	openGraphShare     = 0.7
	twitterShare       = 0.3
)

var requiredOpenGraphTags = []string{"title", "description", "image", "url"}

// ScoreSocialMedia scores Open Graph and Twitter card coverage.
// Open Graph values fall back to the og_* fields of meta.
func ScoreSocialMedia(s schema.SocialMediaSignals, meta schema.MetaSignals) schema.CategoryScore {
	result := newCategoryScore(schema.SocialMediaCategory)
	fallback := map[string]string{
		"title":       meta.OGTitle,
		"description": meta.OGDescription,
		"image":       meta.OGImage,
		"url":         meta.OGURL,
	}

	ogFound := 0
	var missing []string
	for _, tag := range requiredOpenGraphTags {
		if tagValue(s.OpenGraph, "og:", tag) != "" || strings.TrimSpace(fallback[tag]) != "" {
			ogFound++
		} else {
			missing = append(missing, "og:"+tag)
		}
	}
	ogScore := float64(ogFound * openGraphTagPoints)

	switch {
	case ogFound == 0:
		result.Issues = append(result.Issues, "Missing Open Graph tags")
		result.Recommendations = append(result.Recommendations, "Add og:title, og:description, og:image and og:url tags")
	case len(missing) > 0:
		result.Recommendations = append(result.Recommendations, fmt.Sprintf("Add missing Open Graph tags: %s", strings.Join(missing, ", ")))
	}

	twScore := 0.0
	twFound := 0
	if tagValue(s.TwitterCards, "twitter:", "card") != "" {
		twScore += 20
		twFound++
	} else {
		result.Recommendations = append(result.Recommendations, "Add a twitter:card tag")
	}
	hasTwTitle := tagValue(s.TwitterCards, "twitter:", "title") != ""
	hasTwDescription := tagValue(s.TwitterCards, "twitter:", "description") != ""
	if hasTwTitle {
		twFound++
	}
	if hasTwDescription {
		twFound++
	}
	if hasTwTitle && hasTwDescription {
		twScore += 20
	} else {
		result.Recommendations = append(result.Recommendations, "Add twitter:title and twitter:description tags")
	}

	result.Score = clampScore(openGraphShare*ogScore + twitterShare*twScore)
	result.Metrics = schema.SocialMetrics{
		OpenGraphScore: ogScore,
		TwitterScore:   twScore,
		OpenGraphTags:  ogFound,
		TwitterTags:    twFound,
	}
	return result
}

// tagValue looks a tag up with and without its namespace prefix.
func tagValue(tags map[string]string, prefix, name string) string {
	if v := strings.TrimSpace(tags[prefix+name]); v != "" {
		return v
	}
	return strings.TrimSpace(tags[name])
}
