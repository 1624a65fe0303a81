package iocache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/pagescore/schema"
)

func TestInitCachingSQLite(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ctx := context.Background()

	require.NoError(t, InitCaching(ctx, schema.SQLiteBackend, "", schema.SQLiteBackend, ""))
	// Subsequent calls are no-ops
	require.NoError(t, InitCaching(ctx, schema.RedisBackend, "redis://unused:1", "", ""))

	cacheStore := Manager.GetCacheStore()
	historyStore := Manager.GetHistoryStore()
	require.NotNil(t, cacheStore)
	require.NotNil(t, historyStore)

	require.NoError(t, cacheStore.Set(ctx, "seo_analysis:url:x", []byte("{}"), time.Minute))
	status, err := cacheStore.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalEntries)

	_, err = os.Stat(GetDBFilePath())
	assert.NoError(t, err)
	_, err = os.Stat(GetHistoryDBFilePath())
	assert.NoError(t, err)

	CloseCaching()
	CloseCaching()

	require.NoError(t, ClearCache(ctx, schema.SQLiteBackend, GetDBFilePath(), "", ""))
	require.NoError(t, ClearHistory(ctx, schema.SQLiteBackend, GetHistoryDBFilePath(), ""))
	_, err = os.Stat(GetDBFilePath())
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(GetHistoryDBFilePath())
	assert.True(t, os.IsNotExist(err))
}

func TestNewBackingStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewBackingStore(ctx, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	assert.IsType(t, &CacheStoreImpl{}, store)
	require.NoError(t, store.Close())

	store, err = NewBackingStore(ctx, schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	store, err = NewBackingStore(ctx, schema.RedisBackend, "not a url")
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestClearCache(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	require.NoError(t, ClearCache(ctx, schema.SQLiteBackend, path, "", ""))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Missing file is fine
	require.NoError(t, ClearCache(ctx, schema.SQLiteBackend, path, "", ""))
	assert.Error(t, ClearCache(ctx, schema.SQLiteBackend, "", "", ""))
	assert.NoError(t, ClearCache(ctx, schema.NoneBackend, "", "", ""))
	assert.Error(t, ClearCache(ctx, "memcached", "", "", ""))
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, ClearHistory(ctx, schema.NoneBackend, "", ""))
	assert.Error(t, ClearHistory(ctx, schema.RedisBackend, "", ""))
	assert.Error(t, ClearHistory(ctx, schema.SQLiteBackend, "", ""))
}

func TestCacheStoreManager(t *testing.T) {
	cache := &MockCacheStore{}
	history := &MockHistoryStore{}
	cache.On("Close").Return(nil).Once()
	history.On("Close").Return(nil).Once()

	mgr := NewCacheStoreManager(cache, history)

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			assert.Same(t, cache, mgr.GetCacheStore())
			assert.Same(t, history, mgr.GetHistoryStore())
		})
	}
	wg.Wait()

	mgr.Close()
	cache.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestCacheStoreManagerEmpty(t *testing.T) {
	mgr := NewCacheStoreManager(nil, nil)
	assert.Nil(t, mgr.GetCacheStore())
	assert.Nil(t, mgr.GetHistoryStore())
	mgr.Close()
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "redis"})
	assert.Equal(t, "Cache Backend: redis\nConnected: false\n", buf.String())

	buf.Reset()
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	PrintCacheStatus(&buf, schema.CacheStatus{
		Backend: "sqlite", Connected: true, TotalEntries: 4, ExpiredEntries: 1,
		LastEntryTime: at, OldestEntryTime: at.Add(-time.Hour), TableSizeBytes: 8192,
	})
	assert.Contains(t, buf.String(), "Total Entries: 4\n")
	assert.Contains(t, buf.String(), "Expired Entries: 1\n")
	assert.Contains(t, buf.String(), "Last Entry: 2026-03-14 09:30:00\n")
	assert.Contains(t, buf.String(), "Oldest Entry: 2026-03-14 08:30:00\n")

	buf.Reset()
	PrintCacheStatistics(&buf, schema.CacheStatistics{
		TotalKeys: 3, Hits: 2, Misses: 1, HitRatio: 0.6667,
		KeysByKind: map[schema.AnalysisKind]int{schema.URLAnalysis: 2, schema.DomainAnalysis: 1},
	})
	assert.Contains(t, buf.String(), "Hit Ratio: 0.67\n")
	assert.Contains(t, buf.String(), "Keys By Kind:\n  domain_analysis: 1\n  url_analysis: 2\n")

	buf.Reset()
	PrintHistoryStatus(&buf, schema.HistoryStatus{
		Backend: "sqlite", Connected: true, TotalReports: 1, LastReportID: "r1",
		LastReportTime: at, OldestReportTime: at, DistinctURLs: 1,
		TableSizes: map[string]int64{reportsTable: 1, categoryScoresTable: 9},
	})
	assert.Contains(t, buf.String(), "Last Report ID: r1\n")
	assert.Contains(t, buf.String(), "Table Sizes:\n  pagescore_category_scores: 9 rows\n  pagescore_reports: 1 rows\n")
}
