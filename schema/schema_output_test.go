package schema_test

import (
	"testing"

	"github.com/huangsam/pagescore/schema"
	"github.com/stretchr/testify/assert"
)

func TestGetGrade(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		expected schema.Grade
	}{
		{"Perfect", 100, schema.GradeA},
		{"A Lower", 90, schema.GradeA},
		{"B Upper", 89, schema.GradeB},
		{"B Lower", 80, schema.GradeB},
		{"C Lower", 70, schema.GradeC},
		{"D Upper", 69, schema.GradeD},
		{"D Lower", 60, schema.GradeD},
		{"F Upper", 59, schema.GradeF},
		{"Zero", 0, schema.GradeF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schema.GetGrade(tt.score))
		})
	}
}

func TestGetStatus(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{95, schema.ExcellentStatus},
		{90, schema.ExcellentStatus},
		{89.9, schema.GoodStatus},
		{80, schema.GoodStatus},
		{75, schema.AverageStatus},
		{60, schema.BelowAverageStatus},
		{59.9, schema.PoorStatus},
		{0, schema.PoorStatus},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, schema.GetStatus(tt.score), "score %v", tt.score)
	}
}

func TestFlattenReport(t *testing.T) {
	t.Run("nil report", func(t *testing.T) {
		assert.Nil(t, schema.FlattenReport(nil))
	})

	t.Run("canonical order and missing categories skipped", func(t *testing.T) {
		report := &schema.Report{
			CategoryScores: map[schema.Category]schema.CategoryScore{
				schema.LinksCategory: {Score: 70, Weight: 8},
				schema.TitleCategory: {Score: 85, Weight: 20, Issues: []string{"x"}},
			},
			Breakdown: map[schema.Category]schema.BreakdownEntry{
				schema.LinksCategory: {Score: 70, ContributionToOverall: 5.6, Status: schema.AverageStatus},
				schema.TitleCategory: {Score: 85, ContributionToOverall: 17, Status: schema.GoodStatus},
			},
		}

		rows := schema.FlattenReport(report)
		assert.Len(t, rows, 2)
		assert.Equal(t, schema.TitleCategory, rows[0].Category)
		assert.Equal(t, []string{"x"}, rows[0].Issues)
		assert.Equal(t, schema.LinksCategory, rows[1].Category)
		assert.Equal(t, 5.6, rows[1].ContributionToOverall)
		assert.Equal(t, schema.AverageStatus, rows[1].Status)
	})
}
