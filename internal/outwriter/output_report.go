package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

// PrintScoreResult outputs a score result, dispatching based on the output format configured.
func PrintScoreResult(result schema.ScoreResult, cfg *contract.Config, duration time.Duration) error {
	if result.Report == nil {
		return fmt.Errorf("no report to write for %q", result.URL)
	}
	fmtFloat := scoreFormat(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := emit(cfg.OutputFile, cfg.Output, func(w io.Writer) error {
			return encodeJSON(w, result.Report)
		}); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := emit(cfg.OutputFile, cfg.Output, func(w io.Writer) error {
			return writeReportCSV(w, result.Report, fmtFloat)
		}); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return emit(cfg.OutputFile, schema.TextOut, func(w io.Writer) error {
			return writeReportTable(w, result, cfg, fmtFloat, duration)
		})
	}
	return nil
}

// writeReportTable generates and writes the human-readable table with a summary.
func writeReportTable(w io.Writer, result schema.ScoreResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Category", "Score", "Weight", "Contribution", "Status", "Top Issue"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := GetMaxTableTextWidth(cfg)
	var data [][]string
	for _, row := range schema.FlattenReport(result.Report) {
		topIssue := "-"
		if len(row.Issues) > 0 {
			topIssue = contract.TruncateText(row.Issues[0], maxWidth)
		}
		data = append(data, []string{
			string(row.Category),
			fmtFloat(row.Score),
			fmt.Sprintf("%d%%", row.Weight),
			fmtFloat(row.ContributionToOverall),
			contract.GetColorStatus(row.Score),
			topIssue,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	report := result.Report
	if _, err := fmt.Fprintf(w, "Overall score: %d/%d (grade %s)\n",
		report.OverallScore, report.MaxPossibleScore, contract.GetColorGrade(report.Grade)); err != nil {
		return err
	}
	if result.URL != "" {
		if _, err := fmt.Fprintf(w, "URL: %s [%s] cached: %t\n", result.URL, result.Kind, result.Cached); err != nil {
			return err
		}
	}
	if result.ReportID != "" {
		if _, err := fmt.Fprintf(w, "Report ID: %s\n", result.ReportID); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Scored in %v with version %s. Cache backend: %s\n",
		duration, report.ScoringVersion, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeReportCSV writes one row per category in report order.
func writeReportCSV(w io.Writer, report *schema.Report, fmtFloat func(float64) string) error {
	header := []string{
		"category",
		"score",
		"weight",
		"contribution_to_overall",
		"status",
		"issues",
		"recommendations",
	}
	var rows [][]string
	for _, row := range schema.FlattenReport(report) {
		rows = append(rows, []string{
			string(row.Category),
			fmtFloat(row.Score),
			strconv.Itoa(row.Weight),
			fmtFloat(row.ContributionToOverall),
			row.Status,
			strings.Join(row.Issues, "; "),
			strings.Join(row.Recommendations, "; "),
		})
	}
	return encodeCSV(w, header, rows)
}
