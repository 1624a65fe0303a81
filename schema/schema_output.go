package schema

// GetGrade maps an overall score to its letter grade.
func GetGrade(score int) Grade {
	switch {
	case score >= 90:
		return GradeA
	case score >= 80:
		return GradeB
	case score >= 70:
		return GradeC
	case score >= 60:
		return GradeD
	default:
		return GradeF
	}
}

// GetStatus returns the breakdown status label for a category score.
func GetStatus(score float64) string {
	switch {
	case score >= 90:
		return ExcellentStatus
	case score >= 80:
		return GoodStatus
	case score >= 70:
		return AverageStatus
	case score >= 60:
		return BelowAverageStatus
	default:
		return PoorStatus
	}
}

// CategoryRow is a flattened view of one category used by tabular writers.
type CategoryRow struct {
	Category              Category
	Score                 float64
	Weight                int
	ContributionToOverall float64
	Status                string
	Issues                []string
	Recommendations       []string
}

// FlattenReport lists the categories of a report in canonical order.
// Categories missing from the report are skipped.
func FlattenReport(r *Report) []CategoryRow {
	if r == nil {
		return nil
	}
	rows := make([]CategoryRow, 0, len(r.CategoryScores))
	for _, c := range AllCategories {
		cs, ok := r.CategoryScores[c]
		if !ok {
			continue
		}
		b := r.Breakdown[c]
		rows = append(rows, CategoryRow{
			Category:              c,
			Score:                 cs.Score,
			Weight:                cs.Weight,
			ContributionToOverall: b.ContributionToOverall,
			Status:                b.Status,
			Issues:                cs.Issues,
			Recommendations:       cs.Recommendations,
		})
	}
	return rows
}

// ScoreResult is a report together with how it was produced.
type ScoreResult struct {
	ReportID string       `json:"report_id"`
	URL      string       `json:"url"`
	Kind     AnalysisKind `json:"kind"`
	Cached   bool         `json:"cached"`
	Report   *Report      `json:"report"`
}

// WeightRow describes one category weight for display.
type WeightRow struct {
	Category Category `json:"category"`
	Weight   int      `json:"weight"`
	Rule     string   `json:"rule"`
}
