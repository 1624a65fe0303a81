package schema

import (
	"encoding/json"
	"time"
)

// CacheMetadata describes a cached payload.
type CacheMetadata struct {
	Type              AnalysisKind      `json:"type"`
	SubjectIdentifier string            `json:"subject_identifier"`
	CachedAt          time.Time         `json:"cached_at"`
	SchemaVersion     string            `json:"schema_version"`
	Context           map[string]string `json:"context,omitempty"`
}

// CacheEntry is the envelope written to the backing store.
type CacheEntry struct {
	Payload  json.RawMessage `json:"payload"`
	Metadata CacheMetadata   `json:"metadata"`
}

// ReportRecord represents a row from the pagescore_reports table.
type ReportRecord struct {
	ReportID       string
	URL            string
	OverallScore   int32
	Grade          string
	ScoringVersion string
	CalculatedAt   time.Time
	CachedResult   bool
}

// CategoryScoreRecord represents a row from the pagescore_category_scores table.
type CategoryScoreRecord struct {
	ReportID              string
	URL                   string
	CalculatedAt          time.Time
	Category              string
	Score                 float64
	Weight                int32
	ContributionToOverall float64
	Status                string
	IssueCount            int32
}
