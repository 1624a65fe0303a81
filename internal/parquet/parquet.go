// Package parquet provides data structures and functions for exporting pagescore
// score history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/huangsam/pagescore/schema"
)

// Report represents one scored page.
// This struct maps to the pagescore_reports database table.
type Report struct {
	// ReportID is the UUID assigned when the report was recorded
	ReportID string `parquet:"report_id,snappy"`

	// URL is the page the report belongs to
	URL string `parquet:"url,snappy,dict"`

	// OverallScore is the weighted score from 0 to 100
	OverallScore int32 `parquet:"overall_score,snappy"`

	// Grade is the letter grade of the overall score
	Grade string `parquet:"grade,snappy,dict"`

	// ScoringVersion identifies the scoring rules that produced the report
	ScoringVersion string `parquet:"scoring_version,snappy,dict"`

	// CalculatedAt is when the report was computed (TIMESTAMP with nanosecond precision)
	CalculatedAt time.Time `parquet:"calculated_at,snappy"`

	// CachedResult is true when the report was served from the analysis cache
	CachedResult bool `parquet:"cached_result,snappy"`
}

// CategoryScore represents the score of one category within a report.
// This struct maps to the pagescore_category_scores database table.
type CategoryScore struct {
	// ReportID references the parent report
	ReportID string `parquet:"report_id,snappy"`

	// URL is the page the report belongs to
	URL string `parquet:"url,snappy,dict"`

	// CalculatedAt is copied from the parent report
	CalculatedAt time.Time `parquet:"calculated_at,snappy"`

	// Category is the scoring dimension, such as title or links
	Category string `parquet:"category,snappy,dict"`

	// Score is the category score from 0 to 100
	Score float64 `parquet:"score,snappy"`

	// Weight is the integer weight of the category
	Weight int32 `parquet:"weight,snappy"`

	// ContributionToOverall is the number of overall points the category earned
	ContributionToOverall float64 `parquet:"contribution_to_overall,snappy"`

	// Status is the status band of the score
	Status string `parquet:"status,snappy,dict"`

	// IssueCount is the number of issues found in the category
	IssueCount int32 `parquet:"issue_count,snappy"`
}

// WriteReportsParquet writes a slice of Report structs to a Parquet file.
func WriteReportsParquet(data []Report, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteCategoryScoresParquet writes a slice of CategoryScore structs to a Parquet file.
func WriteCategoryScoresParquet(data []CategoryScore, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows with a schema inferred from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close writes the footer
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// ConvertReportRecords converts schema.ReportRecord to Report for Parquet export.
func ConvertReportRecords(records []schema.ReportRecord) []Report {
	result := make([]Report, len(records))
	for i, record := range records {
		result[i] = Report{
			ReportID:       record.ReportID,
			URL:            record.URL,
			OverallScore:   record.OverallScore,
			Grade:          record.Grade,
			ScoringVersion: record.ScoringVersion,
			CalculatedAt:   record.CalculatedAt,
			CachedResult:   record.CachedResult,
		}
	}
	return result
}

// ConvertCategoryScoreRecords converts schema.CategoryScoreRecord to CategoryScore for Parquet export.
func ConvertCategoryScoreRecords(records []schema.CategoryScoreRecord) []CategoryScore {
	result := make([]CategoryScore, len(records))
	for i, record := range records {
		result[i] = CategoryScore{
			ReportID:              record.ReportID,
			URL:                   record.URL,
			CalculatedAt:          record.CalculatedAt,
			Category:              record.Category,
			Score:                 record.Score,
			Weight:                record.Weight,
			ContributionToOverall: record.ContributionToOverall,
			Status:                record.Status,
			IssueCount:            record.IssueCount,
		}
	}
	return result
}
