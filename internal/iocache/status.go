package iocache

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/huangsam/pagescore/schema"
)

const statusTimeLayout = "2006-01-02 15:04:05"

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	_, _ = fmt.Fprintf(w, "Cache Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Entries: %d\n", status.TotalEntries)
	if status.ExpiredEntries > 0 {
		_, _ = fmt.Fprintf(w, "Expired Entries: %d\n", status.ExpiredEntries)
	}
	if !status.LastEntryTime.IsZero() {
		_, _ = fmt.Fprintf(w, "Last Entry: %s\n", status.LastEntryTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Entry: %s\n", status.OldestEntryTime.Format(statusTimeLayout))
	}
	_, _ = fmt.Fprintf(w, "Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintCacheStatistics prints key counts and hit ratio of the analysis cache.
func PrintCacheStatistics(w io.Writer, stats schema.CacheStatistics) {
	_, _ = fmt.Fprintf(w, "Total Keys: %d\n", stats.TotalKeys)
	_, _ = fmt.Fprintf(w, "Total Size: %d bytes\n", stats.TotalSizeBytes)
	_, _ = fmt.Fprintf(w, "Hits: %d\n", stats.Hits)
	_, _ = fmt.Fprintf(w, "Misses: %d\n", stats.Misses)
	_, _ = fmt.Fprintf(w, "Hit Ratio: %.2f\n", stats.HitRatio)
	if len(stats.KeysByKind) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, "Keys By Kind:")
	for _, kind := range slices.Sorted(maps.Keys(stats.KeysByKind)) {
		_, _ = fmt.Fprintf(w, "  %s: %d\n", kind, stats.KeysByKind[kind])
	}
}

// PrintHistoryStatus prints history status information.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Reports: %d\n", status.TotalReports)
	if status.TotalReports > 0 {
		_, _ = fmt.Fprintf(w, "Last Report ID: %s\n", status.LastReportID)
		_, _ = fmt.Fprintf(w, "Last Report: %s\n", status.LastReportTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Report: %s\n", status.OldestReportTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Distinct URLs: %d\n", status.DistinctURLs)
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}
