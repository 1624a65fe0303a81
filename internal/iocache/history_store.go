package iocache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

// Table names for score history.
const (
	reportsTable        = "pagescore_reports"
	categoryScoresTable = "pagescore_category_scores"
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

// Compile-time checks
var (
	_ contract.HistoryStore  = &HistoryStoreImpl{}
	_ contract.HistoryReader = &HistoryStoreImpl{}
)

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(ctx context.Context, backend schema.DatabaseBackend, connStr string) (*HistoryStoreImpl, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(ctx, backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(ctx, db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables applies the up migrations, which only create missing tables.
func createHistoryTables(ctx context.Context, db *sql.DB, backend schema.DatabaseBackend) error {
	statements, err := upStatements(backend)
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// RecordReport stores a report and one row per category in a single transaction.
func (hs *HistoryStoreImpl) RecordReport(ctx context.Context, reportID, url string, report *schema.Report, cached bool) error {
	// Skip for NoneBackend
	if hs.disabled() {
		return nil
	}
	if report == nil {
		return fmt.Errorf("no report to record for %s", url)
	}

	tx, err := hs.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	calculatedAt := formatTime(report.CalculatedAt, hs.backend)
	reportQuery := fmt.Sprintf(`INSERT INTO %s (report_id, url, overall_score, grade, scoring_version, calculated_at, cached_result)
		VALUES (%s)`, quoteTableName(reportsTable, hs.backend), placeholders(hs.backend, 1, 7))
	if _, err := tx.ExecContext(ctx, reportQuery,
		reportID, url, report.OverallScore, string(report.Grade), report.ScoringVersion, calculatedAt, cached,
	); err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	categoryQuery := fmt.Sprintf(`INSERT INTO %s (report_id, url, calculated_at, category, score, weight,
		contribution_to_overall, status, issue_count)
		VALUES (%s)`, quoteTableName(categoryScoresTable, hs.backend), placeholders(hs.backend, 1, 9))
	stmt, err := tx.PrepareContext(ctx, categoryQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare category insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range schema.FlattenReport(report) {
		if _, err := stmt.ExecContext(ctx,
			reportID, url, calculatedAt, string(row.Category), row.Score, row.Weight,
			row.ContributionToOverall, row.Status, len(row.Issues),
		); err != nil {
			return fmt.Errorf("failed to insert %s score: %w", row.Category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history transaction: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus(ctx context.Context) (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.disabled() {
		return status, nil
	}

	quotedReports := quoteTableName(reportsTable, hs.backend)
	row := hs.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT url) FROM %s", quotedReports))
	if err := row.Scan(&status.TotalReports, &status.DistinctURLs); err != nil {
		return status, fmt.Errorf("failed to get total reports: %w", err)
	}

	if status.TotalReports > 0 {
		// Get last report info
		lastQuery := fmt.Sprintf("SELECT report_id, calculated_at FROM %s ORDER BY calculated_at DESC, report_id DESC LIMIT 1", quotedReports)
		lastTime, err := hs.scanIDAndTime(ctx, lastQuery, &status.LastReportID)
		if err != nil {
			return status, fmt.Errorf("failed to get last report info: %w", err)
		}
		status.LastReportTime = lastTime

		// Get oldest report time
		var oldestID string
		oldestQuery := fmt.Sprintf("SELECT report_id, calculated_at FROM %s ORDER BY calculated_at ASC, report_id ASC LIMIT 1", quotedReports)
		oldestTime, err := hs.scanIDAndTime(ctx, oldestQuery, &oldestID)
		if err != nil {
			return status, fmt.Errorf("failed to get oldest report time: %w", err)
		}
		status.OldestReportTime = oldestTime
	}

	// Get table sizes
	for _, table := range []string{reportsTable, categoryScoresTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// scanIDAndTime reads a (report_id, calculated_at) row in the backend's time format.
func (hs *HistoryStoreImpl) scanIDAndTime(ctx context.Context, query string, id *string) (time.Time, error) {
	row := hs.db.QueryRowContext(ctx, query)
	if hs.backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(id, &t)
		return t, err
	}
	var raw string
	if err := row.Scan(id, &raw); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, raw)
}

// GetAllReports retrieves all reports ordered by time.
func (hs *HistoryStoreImpl) GetAllReports(ctx context.Context) ([]schema.ReportRecord, error) {
	// Skip for NoneBackend
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT report_id, url, overall_score, grade, scoring_version, calculated_at, cached_result
		FROM %s ORDER BY calculated_at, report_id`, quoteTableName(reportsTable, hs.backend))
	rows, err := hs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ReportRecord
	for rows.Next() {
		var record schema.ReportRecord
		var calculatedAt any = &record.CalculatedAt
		var raw string
		if hs.backend == schema.SQLiteBackend {
			calculatedAt = &raw
		}
		if err := rows.Scan(&record.ReportID, &record.URL, &record.OverallScore, &record.Grade,
			&record.ScoringVersion, calculatedAt, &record.CachedResult); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		if hs.backend == schema.SQLiteBackend {
			if record.CalculatedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
				return nil, fmt.Errorf("failed to parse calculated_at: %w", err)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return results, nil
}

// GetAllCategoryScores retrieves all category score rows ordered by report.
func (hs *HistoryStoreImpl) GetAllCategoryScores(ctx context.Context) ([]schema.CategoryScoreRecord, error) {
	// Skip for NoneBackend
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT report_id, url, calculated_at, category, score, weight,
		contribution_to_overall, status, issue_count
		FROM %s ORDER BY calculated_at, report_id, category`, quoteTableName(categoryScoresTable, hs.backend))
	rows, err := hs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query category scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CategoryScoreRecord
	for rows.Next() {
		var record schema.CategoryScoreRecord
		var calculatedAt any = &record.CalculatedAt
		var raw string
		if hs.backend == schema.SQLiteBackend {
			calculatedAt = &raw
		}
		if err := rows.Scan(&record.ReportID, &record.URL, calculatedAt, &record.Category, &record.Score,
			&record.Weight, &record.ContributionToOverall, &record.Status, &record.IssueCount); err != nil {
			return nil, fmt.Errorf("failed to scan category score: %w", err)
		}
		if hs.backend == schema.SQLiteBackend {
			if record.CalculatedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
				return nil, fmt.Errorf("failed to parse calculated_at: %w", err)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category scores: %w", err)
	}
	return results, nil
}

// sqliteTimeLayout is fixed width so that text order matches time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(sqliteTimeLayout)
	default:
		return t
	}
}
