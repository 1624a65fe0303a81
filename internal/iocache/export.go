package iocache

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/internal/parquet"
)

// ExecuteHistoryExport exports the score history in store to two Parquet files named after outputFile.
func ExecuteHistoryExport(ctx context.Context, w io.Writer, store contract.HistoryStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized")
	}
	reader, ok := store.(contract.HistoryReader)
	if !ok {
		return errors.New("history backend does not support export")
	}

	// Check if there's any data to export
	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalReports == 0 {
		return errors.New("no score history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total reports: %d\n", status.TotalReports)
	_, _ = fmt.Fprintf(w, "Total category records: %d\n", status.TableSizes[categoryScoresTable])

	reports, err := reader.GetAllReports(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve reports: %w", err)
	}
	categories, err := reader.GetAllCategoryScores(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve category scores: %w", err)
	}

	parquetReports := parquet.ConvertReportRecords(reports)
	reportsFile := outputFile + ".reports.parquet"
	if err := parquet.WriteReportsParquet(parquetReports, reportsFile); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d reports to: %s\n", len(parquetReports), reportsFile)

	parquetCategories := parquet.ConvertCategoryScoreRecords(categories)
	categoriesFile := outputFile + ".category_scores.parquet"
	if err := parquet.WriteCategoryScoresParquet(parquetCategories, categoriesFile); err != nil {
		return fmt.Errorf("failed to write category scores: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d category score records to: %s\n", len(parquetCategories), categoriesFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with DuckDB, Pandas (via pyarrow) or Apache Spark.")
	return nil
}
