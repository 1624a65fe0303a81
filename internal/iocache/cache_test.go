package iocache

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

type cachedSummary struct {
	URL   string `json:"url"`
	Score int    `json:"score"`
	Notes string `json:"notes,omitempty"`
}

// eventRecorder counts cache events.
type eventRecorder struct {
	contract.NopRecorder
	mu        sync.Mutex
	hits      int
	misses    int
	evictions map[string]int
}

func (r *eventRecorder) CacheHit(schema.AnalysisKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits++
}

func (r *eventRecorder) CacheMiss(schema.AnalysisKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses++
}

func (r *eventRecorder) CacheEviction(reason string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.evictions == nil {
		r.evictions = make(map[string]int)
	}
	r.evictions[reason] += n
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
}

// newTestStore opens a SQLite cache store in a temporary directory.
func newTestStore(t *testing.T, clock contract.Clock) *CacheStoreImpl {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(context.Background(), analysisTable, schema.SQLiteBackend, path)
	require.NoError(t, err)
	store.clock = clock
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestCache(t *testing.T, store contract.CacheStore, clock contract.Clock, opts ...Option) *AnalysisCache {
	t.Helper()
	opts = append([]Option{WithClock(clock)}, opts...)
	cache, err := NewAnalysisCache(store, opts...)
	require.NoError(t, err)
	return cache
}

func TestNewAnalysisCacheNilStore(t *testing.T) {
	_, err := NewAnalysisCache(nil)
	assert.ErrorIs(t, err, contract.ErrCacheUnavailable)
}

func TestAnalysisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newTestStore(t, clock)
	cache := newTestCache(t, store, clock)

	hints := map[string]string{"priority": "high"}
	in := cachedSummary{URL: "https://a.com", Score: 87}
	require.True(t, cache.Store(ctx, schema.URLAnalysis, "https://a.com", in, schema.FullAnalysisContent, hints))

	var out cachedSummary
	require.True(t, cache.Fetch(ctx, schema.URLAnalysis, "https://a.com", hints, &out))
	assert.Equal(t, in, out)

	// Different hints address a different entry
	assert.False(t, cache.Fetch(ctx, schema.URLAnalysis, "https://a.com", nil, &out))

	key := "seo_analysis:url:4b59642f5a13d013:ctxf54163e2"
	raw, err := store.Get(ctx, key)
	require.NoError(t, err)

	var entry schema.CacheEntry
	require.NoError(t, NewCodec(0).Decode(raw, &entry))
	assert.Equal(t, schema.URLAnalysis, entry.Metadata.Type)
	assert.Equal(t, "https://a.com", entry.Metadata.SubjectIdentifier)
	assert.Equal(t, schema.DefaultSchemaVersion, entry.Metadata.SchemaVersion)
	assert.Equal(t, hints, entry.Metadata.Context)
	assert.True(t, clock.Now().Equal(entry.Metadata.CachedAt))

	ttl, err := store.TTL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, ttl)
}

func TestAnalysisCacheLargePayloadCompressed(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newTestStore(t, clock)
	cache := newTestCache(t, store, clock)

	in := cachedSummary{URL: "https://a.com", Score: 55, Notes: strings.Repeat("missing alt text on hero image. ", 200)}
	require.True(t, cache.Store(ctx, schema.URLAnalysis, "https://a.com", in, schema.FullAnalysisContent, nil))

	raw, err := store.Get(ctx, "seo_analysis:url:4b59642f5a13d013")
	require.NoError(t, err)
	assert.True(t, IsCompressed(raw))

	var out cachedSummary
	require.True(t, cache.Fetch(ctx, schema.URLAnalysis, "https://a.com", nil, &out))
	assert.Equal(t, in, out)
}

func TestAnalysisCacheExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newTestStore(t, clock)
	cache := newTestCache(t, store, clock)

	require.True(t, cache.Store(ctx, schema.URLAnalysis, "https://a.com", cachedSummary{Score: 1}, schema.PerformanceMetricsContent, nil))

	var out cachedSummary
	clock.Advance(14 * time.Minute)
	assert.True(t, cache.Fetch(ctx, schema.URLAnalysis, "https://a.com", nil, &out))

	clock.Advance(2 * time.Minute)
	assert.False(t, cache.Fetch(ctx, schema.URLAnalysis, "https://a.com", nil, &out))
}

func TestAnalysisCacheStaleSchemaEvicted(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newTestStore(t, clock)
	rec := &eventRecorder{}

	old := newTestCache(t, store, clock, WithSchemaVersion("0.9.0"))
	require.True(t, old.Store(ctx, schema.URLAnalysis, "https://a.com", cachedSummary{Score: 70}, schema.FullAnalysisContent, nil))

	current := newTestCache(t, store, clock, WithRecorder(rec))
	var out cachedSummary
	assert.False(t, current.Fetch(ctx, schema.URLAnalysis, "https://a.com", nil, &out))
	assert.Equal(t, 1, rec.evictions[evictStale])
	assert.Equal(t, 1, rec.misses)

	_, err := store.Get(ctx, "seo_analysis:url:4b59642f5a13d013")
	assert.ErrorIs(t, err, contract.ErrCacheMiss)
}

func TestAnalysisCacheNewerSchemaServed(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newTestStore(t, clock)

	newer := newTestCache(t, store, clock, WithSchemaVersion("1.1.0"))
	require.True(t, newer.Store(ctx, schema.URLAnalysis, "https://a.com", cachedSummary{Score: 70}, schema.FullAnalysisContent, nil))

	var out cachedSummary
	assert.True(t, newTestCache(t, store, clock).Fetch(ctx, schema.URLAnalysis, "https://a.com", nil, &out))
	assert.Equal(t, 70, out.Score)
}

func TestAnalysisCacheCorruptEntryEvicted(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newTestStore(t, clock)
	rec := &eventRecorder{}
	cache := newTestCache(t, store, clock, WithRecorder(rec))

	key := "seo_analysis:url:4b59642f5a13d013"
	require.NoError(t, store.Set(ctx, key, []byte("ZS:garbage"), time.Hour))

	var out cachedSummary
	assert.False(t, cache.Fetch(ctx, schema.URLAnalysis, "https://a.com", nil, &out))
	assert.Equal(t, 1, rec.evictions[evictCorrupt])

	_, err := store.Get(ctx, key)
	assert.ErrorIs(t, err, contract.ErrCacheMiss)

	// A valid envelope whose payload does not fit dst is corrupt too
	require.True(t, cache.Store(ctx, schema.URLAnalysis, "https://a.com", []string{"not", "a", "summary"}, schema.FullAnalysisContent, nil))
	assert.False(t, cache.Fetch(ctx, schema.URLAnalysis, "https://a.com", nil, &out))
	assert.Equal(t, 2, rec.evictions[evictCorrupt])
}

func TestAnalysisCacheUnknownKind(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	cache := newTestCache(t, newTestStore(t, clock), clock)

	assert.False(t, cache.Store(ctx, "sitemap_analysis", "https://a.com", cachedSummary{}, schema.FullAnalysisContent, nil))
	var out cachedSummary
	assert.False(t, cache.Fetch(ctx, "sitemap_analysis", "https://a.com", nil, &out))
}

func TestAnalysisCacheInvalidateBySubject(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newTestStore(t, clock)
	cache := newTestCache(t, store, clock)

	subject := "https://example.com/shoes"
	require.True(t, cache.Store(ctx, schema.URLAnalysis, subject, cachedSummary{Score: 1}, schema.FullAnalysisContent, nil))
	require.True(t, cache.Store(ctx, schema.URLAnalysis, subject, cachedSummary{Score: 2}, schema.FullAnalysisContent, map[string]string{"priority": "high"}))
	require.True(t, cache.Store(ctx, schema.DomainAnalysis, subject, cachedSummary{Score: 3}, schema.FullAnalysisContent, nil))
	require.True(t, cache.Store(ctx, schema.URLAnalysis, "https://a.com", cachedSummary{Score: 4}, schema.FullAnalysisContent, nil))

	assert.Equal(t, 3, cache.InvalidateBySubject(ctx, subject))
	assert.Equal(t, 0, cache.InvalidateBySubject(ctx, subject))

	var out cachedSummary
	assert.True(t, cache.Fetch(ctx, schema.URLAnalysis, "https://a.com", nil, &out))
}

func TestAnalysisCacheInvalidateByDomain(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newTestStore(t, clock)
	cache := newTestCache(t, store, clock)

	require.True(t, cache.Store(ctx, schema.DomainAnalysis, "https://example.com/shoes", cachedSummary{}, schema.FullAnalysisContent, nil))
	require.True(t, cache.Store(ctx, schema.CompetitorAnalysis, "https://rival.io", cachedSummary{}, schema.CompetitiveDataContent,
		map[string]string{"domain": "example.com", "competitor": "rival.io"}))
	require.True(t, cache.Store(ctx, schema.DomainAnalysis, "https://other.org", cachedSummary{}, schema.FullAnalysisContent, nil))

	assert.Equal(t, 0, cache.InvalidateByDomain(ctx, "  "))
	assert.Equal(t, 0, cache.InvalidateByDomain(ctx, "*"))
	assert.Equal(t, 2, cache.InvalidateByDomain(ctx, " Example.com "))

	stats := cache.Statistics(ctx)
	assert.Equal(t, 1, stats.TotalKeys)
}

func TestAnalysisCacheInvalidateByDomainSkipsFingerprints(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newTestStore(t, clock)
	cache := newTestCache(t, store, clock)

	// Keys: url:4b59642f5a13d013 and url:4b59642f5a13d013:ctxf54163e2
	require.True(t, cache.Store(ctx, schema.URLAnalysis, "https://a.com", cachedSummary{Score: 4}, schema.FullAnalysisContent, nil))
	require.True(t, cache.Store(ctx, schema.URLAnalysis, "https://a.com", cachedSummary{Score: 5}, schema.FullAnalysisContent,
		map[string]string{"priority": "high"}))

	assert.Equal(t, 0, cache.InvalidateByDomain(ctx, "59642f"))
	assert.Equal(t, 0, cache.InvalidateByDomain(ctx, "f54163e2"))
	assert.Equal(t, 0, cache.InvalidateByDomain(ctx, "a.com"))

	var out cachedSummary
	assert.True(t, cache.Fetch(ctx, schema.URLAnalysis, "https://a.com", nil, &out))
	assert.Equal(t, 4, out.Score)
	assert.Equal(t, 2, cache.Statistics(ctx).TotalKeys)
}

func TestAnalysisCacheStatistics(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newTestStore(t, clock)
	cache := newTestCache(t, store, clock)

	require.True(t, cache.Store(ctx, schema.URLAnalysis, "https://a.com", cachedSummary{Score: 1}, schema.FullAnalysisContent, nil))
	require.True(t, cache.Store(ctx, schema.URLAnalysis, "https://b.com", cachedSummary{Score: 2}, schema.FullAnalysisContent, nil))
	require.True(t, cache.Store(ctx, schema.KeywordAnalysis, "running shoes", cachedSummary{Score: 3}, schema.FullAnalysisContent, nil))
	// Outside the prefix
	require.NoError(t, store.Set(ctx, "other:url:abc", []byte("{}"), 0))

	var out cachedSummary
	assert.True(t, cache.Fetch(ctx, schema.URLAnalysis, "https://a.com", nil, &out))
	assert.True(t, cache.Fetch(ctx, schema.URLAnalysis, "https://b.com", nil, &out))
	assert.False(t, cache.Fetch(ctx, schema.URLAnalysis, "https://c.com", nil, &out))

	stats := cache.Statistics(ctx)
	assert.Equal(t, 3, stats.TotalKeys)
	assert.Equal(t, 2, stats.KeysByKind[schema.URLAnalysis])
	assert.Equal(t, 1, stats.KeysByKind[schema.KeywordAnalysis])
	assert.Positive(t, stats.TotalSizeBytes)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.6667, stats.HitRatio, 1e-9)
}

func TestAnalysisCacheCleanupWithPurger(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newTestStore(t, clock)
	rec := &eventRecorder{}
	cache := newTestCache(t, store, clock, WithRecorder(rec))

	require.True(t, cache.Store(ctx, schema.URLAnalysis, "https://short.com", cachedSummary{}, schema.PerformanceMetricsContent, nil))
	require.True(t, cache.Store(ctx, schema.URLAnalysis, "https://long.com", cachedSummary{}, schema.CompetitiveDataContent, nil))
	require.NoError(t, store.Set(ctx, "seo_analysis:url:forever", []byte("{}"), 0))

	clock.Advance(time.Hour)
	assert.Equal(t, 2, cache.CleanupExpiredEntries(ctx))
	assert.Equal(t, 2, rec.evictions[evictExpiration])

	var out cachedSummary
	assert.True(t, cache.Fetch(ctx, schema.URLAnalysis, "https://long.com", nil, &out))
}

// ttlOnlyStore hides the bulk purge of the SQL store.
type ttlOnlyStore struct {
	inner *CacheStoreImpl
}

func (s ttlOnlyStore) Get(ctx context.Context, key string) ([]byte, error) { return s.inner.Get(ctx, key) }
func (s ttlOnlyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, key, value, ttl)
}
func (s ttlOnlyStore) Delete(ctx context.Context, keys ...string) (int, error) {
	return s.inner.Delete(ctx, keys...)
}
func (s ttlOnlyStore) GetStatus(ctx context.Context) (schema.CacheStatus, error) {
	return s.inner.GetStatus(ctx)
}
func (s ttlOnlyStore) Close() error { return s.inner.Close() }
func (s ttlOnlyStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	return s.inner.Keys(ctx, pattern)
}
func (s ttlOnlyStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	return s.inner.TTL(ctx, key)
}

func TestAnalysisCacheCleanupWithTTLInspector(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	inner := newTestStore(t, clock)
	cache := newTestCache(t, ttlOnlyStore{inner: inner}, clock)

	require.True(t, cache.Store(ctx, schema.URLAnalysis, "https://live.com", cachedSummary{}, schema.FullAnalysisContent, nil))
	require.NoError(t, inner.Set(ctx, "seo_analysis:url:forever", []byte("{}"), 0))

	assert.Equal(t, 1, cache.CleanupExpiredEntries(ctx))
	_, err := inner.Get(ctx, "seo_analysis:url:forever")
	assert.ErrorIs(t, err, contract.ErrCacheMiss)
	assert.Equal(t, 0, cache.CleanupExpiredEntries(ctx))
}

func TestAnalysisCacheWithoutCapabilities(t *testing.T) {
	ctx := context.Background()
	store := &MockCacheStore{}
	cache := newTestCache(t, store, newTestClock())

	assert.Equal(t, 0, cache.InvalidateBySubject(ctx, "https://a.com"))
	assert.Equal(t, 0, cache.InvalidateByDomain(ctx, "a.com"))
	assert.Equal(t, 0, cache.CleanupExpiredEntries(ctx))

	stats := cache.Statistics(ctx)
	assert.Zero(t, stats.TotalKeys)
	assert.Empty(t, stats.KeysByKind)
	store.AssertExpectations(t)
}

func TestAnalysisCacheBackingStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := &MockCacheStore{}
	store.On("Get", mock.Anything, "seo_analysis:url:4b59642f5a13d013").
		Return(nil, errors.Join(contract.ErrCacheUnavailable, errors.New("connection refused")))
	store.On("Set", mock.Anything, "seo_analysis:url:4b59642f5a13d013", mock.Anything, time.Hour).
		Return(contract.ErrCacheUnavailable)

	rec := &eventRecorder{}
	cache := newTestCache(t, store, newTestClock(), WithRecorder(rec))

	var out cachedSummary
	assert.False(t, cache.Fetch(ctx, schema.URLAnalysis, "https://a.com", nil, &out))
	assert.False(t, cache.Store(ctx, schema.URLAnalysis, "https://a.com", cachedSummary{}, schema.FullAnalysisContent, nil))
	assert.Equal(t, 1, rec.misses)
	assert.Empty(t, rec.evictions)
	store.AssertExpectations(t)
}

func TestAnalysisCacheFromConfig(t *testing.T) {
	ctx := context.Background()
	store := &MockCacheStore{}
	store.On("Set", mock.Anything, "custom:url:4b59642f5a13d013", mock.Anything, 5*time.Minute).Return(nil)

	cfg := &contract.Config{
		KeyPrefix:     "custom:",
		SchemaVersion: "2.0.0",
		ContentTTLs:   map[schema.ContentType]time.Duration{schema.FullAnalysisContent: 5 * time.Minute},
	}
	cache := newTestCache(t, store, newTestClock(), FromConfig(cfg))
	assert.Equal(t, "custom:", cache.Keys().Prefix())
	assert.Equal(t, "2.0.0", cache.SchemaVersion())
	assert.True(t, cache.Store(ctx, schema.URLAnalysis, "https://a.com", cachedSummary{}, schema.FullAnalysisContent, nil))
	store.AssertExpectations(t)
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"0.9.0", "1.0.0", -1},
		{"1.10.0", "1.9.0", 1},
		{"1.0", "1.0.0", 0},
		{"1.0.1", "1.0", 1},
		{"", "1.0.0", -1},
		{"1.x.0", "1.0.0", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompareVersions(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}
