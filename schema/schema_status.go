package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	ExpiredEntries  int       `json:"expired_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// CacheStatistics summarizes the analysis cache as seen through its key prefix.
type CacheStatistics struct {
	TotalKeys      int                  `json:"total_keys"`
	TotalSizeBytes int64                `json:"total_size_bytes"`
	KeysByKind     map[AnalysisKind]int `json:"keys_by_kind"`
	Hits           int64                `json:"hits"`
	Misses         int64                `json:"misses"`
	HitRatio       float64              `json:"hit_ratio"`
}

// HistoryStatus represents the status of the score history store.
type HistoryStatus struct {
	Backend          string           `json:"backend"`
	Connected        bool             `json:"connected"`
	TotalReports     int              `json:"total_reports"`
	LastReportID     string           `json:"last_report_id"`
	LastReportTime   time.Time        `json:"last_report_time"`
	OldestReportTime time.Time        `json:"oldest_report_time"`
	DistinctURLs     int              `json:"distinct_urls"`
	TableSizes       map[string]int64 `json:"table_sizes"`
}
