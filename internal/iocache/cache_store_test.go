package iocache

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

func TestNewCacheStoreInvalidTableName(t *testing.T) {
	for _, name := range []string{"", "1cache", "cache;DROP TABLE x", "cache-table"} {
		_, err := NewCacheStore(context.Background(), name, schema.SQLiteBackend, "")
		assert.Error(t, err, name)
	}
}

func TestCacheStoreNoneBackend(t *testing.T) {
	ctx := context.Background()
	store, err := NewCacheStore(ctx, analysisTable, schema.NoneBackend, "")
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, contract.ErrCacheMiss)

	n, err := store.Delete(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, n)

	keys, err := store.Keys(ctx, "*")
	require.NoError(t, err)
	assert.Empty(t, keys)

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestCacheStoreSQLiteOperations(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newTestStore(t, clock)

	require.NoError(t, store.Set(ctx, "seo_analysis:url:a", []byte("alpha"), time.Minute))
	require.NoError(t, store.Set(ctx, "seo_analysis:url:b", []byte("bravo!"), 0))

	value, err := store.Get(ctx, "seo_analysis:url:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), value)

	_, err = store.Get(ctx, "seo_analysis:url:missing")
	assert.ErrorIs(t, err, contract.ErrCacheMiss)

	// Upsert replaces value and expiry
	require.NoError(t, store.Set(ctx, "seo_analysis:url:a", []byte("alpha2"), 2*time.Minute))
	value, err = store.Get(ctx, "seo_analysis:url:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha2"), value)

	ttl, err := store.TTL(ctx, "seo_analysis:url:a")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, ttl)

	ttl, err = store.TTL(ctx, "seo_analysis:url:b")
	require.NoError(t, err)
	assert.Equal(t, contract.NoExpiry, ttl)

	_, err = store.TTL(ctx, "seo_analysis:url:missing")
	assert.ErrorIs(t, err, contract.ErrCacheMiss)

	size, err := store.Size(ctx, "seo_analysis:url:b")
	require.NoError(t, err)
	assert.Equal(t, int64(6), size)

	keys, err := store.Keys(ctx, "seo_analysis:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"seo_analysis:url:a", "seo_analysis:url:b"}, keys)

	clock.Advance(3 * time.Minute)
	_, err = store.Get(ctx, "seo_analysis:url:a")
	assert.ErrorIs(t, err, contract.ErrCacheMiss)

	ttl, err = store.TTL(ctx, "seo_analysis:url:a")
	require.NoError(t, err)
	assert.Zero(t, ttl)

	keys, err = store.Keys(ctx, "seo_analysis:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"seo_analysis:url:b"}, keys)

	n, err := store.Delete(ctx, "seo_analysis:url:a", "seo_analysis:url:b", "seo_analysis:url:missing")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCacheStoreKeysEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, newTestClock())

	require.NoError(t, store.Set(ctx, "a_b:1", []byte("x"), 0))
	require.NoError(t, store.Set(ctx, "axb:1", []byte("x"), 0))
	require.NoError(t, store.Set(ctx, "a%b:1", []byte("x"), 0))

	keys, err := store.Keys(ctx, "a_b*")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b:1"}, keys)

	keys, err = store.Keys(ctx, "a%b*")
	require.NoError(t, err)
	assert.Equal(t, []string{"a%b:1"}, keys)
}

func TestCacheStoreDeleteBatches(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, newTestClock())

	keys := make([]string, deleteBatchSize+20)
	for i := range keys {
		keys[i] = fmt.Sprintf("seo_analysis:url:%04d", i)
		require.NoError(t, store.Set(ctx, keys[i], []byte("x"), 0))
	}

	n, err := store.Delete(ctx, keys...)
	require.NoError(t, err)
	assert.Equal(t, len(keys), n)
}

func TestCacheStorePurgeExpired(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newTestStore(t, clock)

	require.NoError(t, store.Set(ctx, "expired", []byte("x"), time.Second))
	require.NoError(t, store.Set(ctx, "forever", []byte("x"), 0))
	require.NoError(t, store.Set(ctx, "live", []byte("x"), time.Hour))

	clock.Advance(time.Minute)
	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := store.Keys(ctx, "*")
	require.NoError(t, err)
	assert.Equal(t, []string{"live"}, keys)
}

func TestCacheStoreGetStatus(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newTestStore(t, clock)

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalEntries)
	assert.True(t, status.LastEntryTime.IsZero())

	first := clock.Now()
	require.NoError(t, store.Set(ctx, "one", []byte("x"), time.Second))
	clock.Advance(time.Minute)
	second := clock.Now()
	require.NoError(t, store.Set(ctx, "two", []byte("x"), time.Hour))

	status, err = store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, 1, status.ExpiredEntries)
	assert.True(t, status.LastEntryTime.Equal(second))
	assert.True(t, status.OldestEntryTime.Equal(first))
	assert.Positive(t, status.TableSizeBytes)
}

func newMockStore(t *testing.T, backend schema.DatabaseBackend, connStr string) (*CacheStoreImpl, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newCacheStoreWithDB(db, analysisTable, backend, connStr, newTestClock()), mock
}

func TestCacheStorePostgresQueries(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t, schema.PostgreSQLBackend, "")
	nowMs := newTestClock().Now().UnixMilli()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT cache_value, expires_at FROM "analysis_cache" WHERE cache_key = $1`)).
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"cache_value", "expires_at"}).AddRow([]byte("v"), 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "analysis_cache" (cache_key, cache_value, expires_at, created_at) VALUES ($1, $2, $3, $4)`)).
		WithArgs("k", []byte("v"), nowMs+60000, nowMs).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "analysis_cache" WHERE cache_key IN ($1, $2)`)).
		WithArgs("k", "j").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT cache_key FROM "analysis_cache" WHERE cache_key LIKE $1 ESCAPE '!' AND (expires_at = 0 OR expires_at > $2)`)).
		WithArgs("seo!_analysis:%", nowMs).
		WillReturnRows(sqlmock.NewRows([]string{"cache_key"}).AddRow("seo_analysis:url:x"))

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	n, err := store.Delete(ctx, "k", "j")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	keys, err := store.Keys(ctx, "seo_analysis:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"seo_analysis:url:x"}, keys)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheStoreMySQLQueries(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t, schema.MySQLBackend, "user:pass@tcp(localhost:3306)/pagescore")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `analysis_cache`") + ".*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `analysis_cache`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `analysis_cache` WHERE expires_at > 0")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(created_at), MIN(created_at)")).
		WillReturnRows(sqlmock.NewRows([]string{"max", "min"}).AddRow(int64(2000), int64(1000)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.tables")).
		WithArgs("pagescore", analysisTable).
		WillReturnRows(sqlmock.NewRows([]string{"size"}).AddRow(int64(16384)))

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalEntries)
	assert.Equal(t, 1, status.ExpiredEntries)
	assert.Equal(t, int64(2000), status.LastEntryTime.UnixMilli())
	assert.Equal(t, int64(1000), status.OldestEntryTime.UnixMilli())
	assert.Equal(t, int64(16384), status.TableSizeBytes)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheStoreMySQLStatusSizeFallback(t *testing.T) {
	store, mock := newMockStore(t, schema.MySQLBackend, "not a dsn")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `analysis_cache`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE expires_at > 0")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(created_at), MIN(created_at)")).
		WillReturnRows(sqlmock.NewRows([]string{"max", "min"}).AddRow(int64(2000), int64(1000)))

	status, err := store.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2000), status.TableSizeBytes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheStoreErrorsWrapUnavailable(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t, schema.PostgreSQLBackend, "")

	mock.ExpectQuery("SELECT cache_value").WillReturnError(errors.New("connection reset"))
	mock.ExpectExec("INSERT INTO").WillReturnError(errors.New("connection reset"))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, contract.ErrCacheUnavailable)
	err = store.Set(ctx, "k", []byte("v"), time.Minute)
	assert.ErrorIs(t, err, contract.ErrCacheUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGlobToLike(t *testing.T) {
	assert.Equal(t, "seo!_analysis:%abc%", globToLike("seo_analysis:*abc*"))
	assert.Equal(t, "100!%!!", globToLike("100%!"))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$3, $4", placeholders(schema.PostgreSQLBackend, 3, 2))
	assert.Equal(t, "?, ?, ?", placeholders(schema.MySQLBackend, 1, 3))
	assert.Equal(t, "?", placeholder(schema.SQLiteBackend, 7))
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `seo_analysis:*\[x\]\?*`, escapeGlob("seo_analysis:*[x]?*"))
}

func TestParseUsedMemory(t *testing.T) {
	info := "# Memory\r\nused_memory:1048576\r\nused_memory_human:1.00M\r\n"
	assert.Equal(t, int64(1048576), parseUsedMemory(info))
	assert.Zero(t, parseUsedMemory("# Memory\r\n"))
}
