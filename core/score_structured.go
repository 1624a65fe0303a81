package core

import (
	"slices"

	"github.com/huangsam/pagescore/schema"
)

// ScoreStructuredData scores JSON-LD, microdata and RDFa presence.
// Absence only produces a recommendation.
func ScoreStructuredData(sd schema.StructuredDataSignals) schema.CategoryScore {
	result := newCategoryScore(schema.StructuredDataCategory)
	types := schemaTypes(sd.JSONLD)
	score := 0.0

	if len(sd.JSONLD) > 0 {
		score += 60
		if len(types) >= 2 {
			score += 20
		} else {
			result.Recommendations = append(result.Recommendations, "Describe more entities (e.g. Organization, BreadcrumbList) in JSON-LD")
		}
	}
	if len(sd.Microdata) > 0 || len(sd.RDFa) > 0 {
		score += 20
	}
	if len(sd.JSONLD) == 0 && len(sd.Microdata) == 0 && len(sd.RDFa) == 0 {
		result.Recommendations = append(result.Recommendations, "Add JSON-LD structured data describing the page")
	}

	result.Score = clampScore(score)
	result.Metrics = schema.StructuredDataMetrics{
		JSONLDCount:    len(sd.JSONLD),
		MicrodataCount: len(sd.Microdata),
		RDFaCount:      len(sd.RDFa),
		SchemaTypes:    types,
	}
	return result
}

// schemaTypes collects the distinct @type values of the blocks, including @graph members.
func schemaTypes(blocks []map[string]any) []string {
	seen := make(map[string]struct{})
	for _, block := range blocks {
		collectTypes(block, seen, 0)
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

const maxGraphDepth = 8

func collectTypes(node map[string]any, seen map[string]struct{}, depth int) {
	if node == nil || depth > maxGraphDepth {
		return
	}
	switch t := node["@type"].(type) {
	case string:
		if t != "" {
			seen[t] = struct{}{}
		}
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s != "" {
				seen[s] = struct{}{}
			}
		}
	case []string:
		for _, s := range t {
			if s != "" {
				seen[s] = struct{}{}
			}
		}
	}

	switch graph := node["@graph"].(type) {
	case []any:
		for _, member := range graph {
			if m, ok := member.(map[string]any); ok {
				collectTypes(m, seen, depth+1)
			}
		}
	case []map[string]any:
		for _, m := range graph {
			collectTypes(m, seen, depth+1)
		}
	}
}
