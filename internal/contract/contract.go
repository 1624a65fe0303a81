// Package contract provides interfaces and shared utilities for the internal architecture of pagescore.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/pagescore/schema"
)

// NoExpiry is returned by TTLInspector for keys that never expire.
const NoExpiry time.Duration = -1

// Clock supplies the current time. Tests inject a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// CacheManager defines the interface for managing backing stores.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	GetCacheStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// Get returns ErrCacheMiss for absent or expired keys.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) (int, error)
	GetStatus(ctx context.Context) (schema.CacheStatus, error)
	Close() error
}

// KeyScanner is implemented by stores that can enumerate keys.
// The pattern uses '*' as a wildcard for any run of characters.
type KeyScanner interface {
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// TTLInspector is implemented by stores that can report the remaining lifetime of a key.
// It returns NoExpiry when the key has no expiration and ErrCacheMiss when it is gone.
type TTLInspector interface {
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// SizeInspector is implemented by stores that can report the stored size of a key.
type SizeInspector interface {
	Size(ctx context.Context, key string) (int64, error)
}

// ExpiryPurger is implemented by stores that can drop expired entries in bulk.
type ExpiryPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// HistoryStore defines the interface for recording computed reports.
type HistoryStore interface {
	// RecordReport stores a report and its category scores under reportID.
	RecordReport(ctx context.Context, reportID string, url string, report *schema.Report, cached bool) error

	// GetStatus returns status information about the history store
	GetStatus(ctx context.Context) (schema.HistoryStatus, error)

	// Close closes the underlying connection
	Close() error
}

// HistoryReader is implemented by history stores that can list their records for export.
type HistoryReader interface {
	GetAllReports(ctx context.Context) ([]schema.ReportRecord, error)
	GetAllCategoryScores(ctx context.Context) ([]schema.CategoryScoreRecord, error)
}

// AnalysisCache is the read and write surface of the analysis cache used by scoring callers.
type AnalysisCache interface {
	Store(ctx context.Context, kind schema.AnalysisKind, identifier string, payload any, contentType schema.ContentType, hints map[string]string) bool
	Fetch(ctx context.Context, kind schema.AnalysisKind, identifier string, hints map[string]string, dst any) bool
}

// MetricsRecorder receives scoring and cache events.
type MetricsRecorder interface {
	ObserveScore(elapsed time.Duration, grade schema.Grade)
	CacheHit(kind schema.AnalysisKind)
	CacheMiss(kind schema.AnalysisKind)
	CacheStore(kind schema.AnalysisKind, ok bool)
	CacheEviction(reason string, n int)
}

// NopRecorder discards every event.
type NopRecorder struct{}

// ObserveScore implements MetricsRecorder.
func (NopRecorder) ObserveScore(time.Duration, schema.Grade) {}

// CacheHit implements MetricsRecorder.
func (NopRecorder) CacheHit(schema.AnalysisKind) {}

// CacheMiss implements MetricsRecorder.
func (NopRecorder) CacheMiss(schema.AnalysisKind) {}

// CacheStore implements MetricsRecorder.
func (NopRecorder) CacheStore(schema.AnalysisKind, bool) {}

// CacheEviction implements MetricsRecorder.
func (NopRecorder) CacheEviction(string, int) {}
