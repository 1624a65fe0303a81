// Package iocache is for caching analysis results and recording score history.
package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

// deleteBatchSize bounds the number of bind parameters in one DELETE.
const deleteBatchSize = 500

// CacheStoreImpl handles durable storage operations using various database backends.
// Expiry is stored as unix milliseconds, with 0 meaning the entry never expires.
type CacheStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
	clock     contract.Clock
}

// Compile-time checks
var (
	_ contract.CacheStore    = &CacheStoreImpl{}
	_ contract.KeyScanner    = &CacheStoreImpl{}
	_ contract.TTLInspector  = &CacheStoreImpl{}
	_ contract.SizeInspector = &CacheStoreImpl{}
	_ contract.ExpiryPurger  = &CacheStoreImpl{}
)

// NewCacheStore initializes and returns a new SQL cache store based on the backend type.
func NewCacheStore(ctx context.Context, tableName string, backend schema.DatabaseBackend, connStr string) (*CacheStoreImpl, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	if backend == schema.NoneBackend {
		// Return a no-op store for disabled caching
		return &CacheStoreImpl{tableName: tableName, backend: backend, connStr: connStr, clock: contract.SystemClock{}}, nil
	}

	db, err := openDB(ctx, backend, connStr, GetDBFilePath())
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, getCreateTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return newCacheStoreWithDB(db, tableName, backend, connStr, nil), nil
}

// newCacheStoreWithDB wraps an open connection. A nil clock reads the wall clock.
func newCacheStoreWithDB(db *sql.DB, tableName string, backend schema.DatabaseBackend, connStr string, clock contract.Clock) *CacheStoreImpl {
	if clock == nil {
		clock = contract.SystemClock{}
	}
	return &CacheStoreImpl{
		db:        db,
		tableName: tableName,
		backend:   backend,
		connStr:   connStr,
		clock:     clock,
	}
}

// getCreateTableQuery returns the CREATE TABLE query for the given backend.
func getCreateTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key VARCHAR(255) PRIMARY KEY,
				cache_value LONGBLOB NOT NULL,
				expires_at BIGINT NOT NULL,
				created_at BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				cache_value BYTEA NOT NULL,
				expires_at BIGINT NOT NULL,
				created_at BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				cache_value BLOB NOT NULL,
				expires_at INTEGER NOT NULL,
				created_at INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

func (ps *CacheStoreImpl) disabled() bool {
	return ps.backend == schema.NoneBackend || ps.db == nil
}

func (ps *CacheStoreImpl) now() int64 {
	return ps.clock.Now().UnixMilli()
}

// Get retrieves a value by key from the store. Expired rows read as a miss.
func (ps *CacheStoreImpl) Get(ctx context.Context, key string) ([]byte, error) {
	if ps.disabled() {
		return nil, contract.ErrCacheMiss
	}

	query := fmt.Sprintf(`SELECT cache_value, expires_at FROM %s WHERE cache_key = %s`,
		quoteTableName(ps.tableName, ps.backend), placeholder(ps.backend, 1))

	var value []byte
	var expiresAt int64
	err := ps.db.QueryRowContext(ctx, query, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contract.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrCacheUnavailable, err)
	}
	if expiresAt > 0 && expiresAt <= ps.now() {
		return nil, contract.ErrCacheMiss
	}
	return value, nil
}

// Set inserts or replaces a key/value pair in the store. A non-positive ttl never expires.
func (ps *CacheStoreImpl) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ps.disabled() {
		return nil
	}

	now := ps.now()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now + ttl.Milliseconds()
	}
	if _, err := ps.db.ExecContext(ctx, ps.getUpsertQuery(), key, value, expiresAt, now); err != nil {
		return fmt.Errorf("%w: %v", contract.ErrCacheUnavailable, err)
	}
	return nil
}

// getUpsertQuery returns the UPSERT query for the backend.
func (ps *CacheStoreImpl) getUpsertQuery() string {
	quotedTableName := quoteTableName(ps.tableName, ps.backend)
	switch ps.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, expires_at, created_at) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE cache_value = new.cache_value, expires_at = new.expires_at, created_at = new.created_at`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, expires_at, created_at) VALUES ($1, $2, $3, $4)
			ON CONFLICT (cache_key) DO UPDATE SET cache_value = EXCLUDED.cache_value, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (cache_key, cache_value, expires_at, created_at) VALUES (?, ?, ?, ?)`, quotedTableName)
	}
}

// Delete removes keys and returns how many rows were deleted.
func (ps *CacheStoreImpl) Delete(ctx context.Context, keys ...string) (int, error) {
	if ps.disabled() || len(keys) == 0 {
		return 0, nil
	}

	quotedTableName := quoteTableName(ps.tableName, ps.backend)
	deleted := 0
	for start := 0; start < len(keys); start += deleteBatchSize {
		batch := keys[start:min(start+deleteBatchSize, len(keys))]
		query := fmt.Sprintf(`DELETE FROM %s WHERE cache_key IN (%s)`,
			quotedTableName, placeholders(ps.backend, 1, len(batch)))
		args := make([]any, len(batch))
		for i, k := range batch {
			args[i] = k
		}
		result, err := ps.db.ExecContext(ctx, query, args...)
		if err != nil {
			return deleted, fmt.Errorf("failed to delete cache keys: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return deleted, fmt.Errorf("failed to count deleted cache keys: %w", err)
		}
		deleted += int(n)
	}
	return deleted, nil
}

// Keys lists live keys matching a '*' wildcard pattern.
func (ps *CacheStoreImpl) Keys(ctx context.Context, pattern string) ([]string, error) {
	if ps.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT cache_key FROM %s WHERE cache_key LIKE %s ESCAPE '%s' AND (expires_at = 0 OR expires_at > %s) ORDER BY cache_key`,
		quoteTableName(ps.tableName, ps.backend), placeholder(ps.backend, 1), likeEscape, placeholder(ps.backend, 2))

	rows, err := ps.db.QueryContext(ctx, query, globToLike(pattern), ps.now())
	if err != nil {
		return nil, fmt.Errorf("failed to scan cache keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to read cache key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cache keys: %w", err)
	}
	return keys, nil
}

// TTL returns the remaining lifetime of key. Expired rows that were not purged yet report 0.
func (ps *CacheStoreImpl) TTL(ctx context.Context, key string) (time.Duration, error) {
	if ps.disabled() {
		return 0, contract.ErrCacheMiss
	}

	query := fmt.Sprintf(`SELECT expires_at FROM %s WHERE cache_key = %s`,
		quoteTableName(ps.tableName, ps.backend), placeholder(ps.backend, 1))

	var expiresAt int64
	err := ps.db.QueryRowContext(ctx, query, key).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, contract.ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache ttl: %w", err)
	}
	if expiresAt == 0 {
		return contract.NoExpiry, nil
	}
	return max(time.Duration(expiresAt-ps.now())*time.Millisecond, 0), nil
}

// Size returns the stored byte length of key.
func (ps *CacheStoreImpl) Size(ctx context.Context, key string) (int64, error) {
	if ps.disabled() {
		return 0, contract.ErrCacheMiss
	}

	query := fmt.Sprintf(`SELECT LENGTH(cache_value) FROM %s WHERE cache_key = %s`,
		quoteTableName(ps.tableName, ps.backend), placeholder(ps.backend, 1))

	var size int64
	err := ps.db.QueryRowContext(ctx, query, key).Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, contract.ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache entry size: %w", err)
	}
	return size, nil
}

// PurgeExpired deletes rows that are expired or were written without an expiry.
func (ps *CacheStoreImpl) PurgeExpired(ctx context.Context) (int, error) {
	if ps.disabled() {
		return 0, nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at <= %s`,
		quoteTableName(ps.tableName, ps.backend), placeholder(ps.backend, 1))
	result, err := ps.db.ExecContext(ctx, query, ps.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired cache entries: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged cache entries: %w", err)
	}
	return int(n), nil
}

// Close closes the underlying DB connection.
func (ps *CacheStoreImpl) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

// GetStatus returns status information about the cache store.
func (ps *CacheStoreImpl) GetStatus(ctx context.Context) (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(ps.backend),
		Connected: ps.db != nil,
	}

	if ps.disabled() {
		return status, nil
	}

	quotedTableName := quoteTableName(ps.tableName, ps.backend)

	// Get total entries
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)
	if err := ps.db.QueryRowContext(ctx, countQuery).Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}

	if status.TotalEntries == 0 {
		return status, nil
	}

	// Get expired entries still on disk
	expiredQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE expires_at > 0 AND expires_at <= %s",
		quotedTableName, placeholder(ps.backend, 1))
	if err := ps.db.QueryRowContext(ctx, expiredQuery, ps.now()).Scan(&status.ExpiredEntries); err != nil {
		return status, fmt.Errorf("failed to get expired entries: %w", err)
	}

	// Get last and oldest entry time
	rangeQuery := fmt.Sprintf("SELECT MAX(created_at), MIN(created_at) FROM %s", quotedTableName)
	var lastMs, oldestMs int64
	if err := ps.db.QueryRowContext(ctx, rangeQuery).Scan(&lastMs, &oldestMs); err != nil {
		return status, fmt.Errorf("failed to get entry times: %w", err)
	}
	status.LastEntryTime = time.UnixMilli(lastMs)
	status.OldestEntryTime = time.UnixMilli(oldestMs)

	status.TableSizeBytes = ps.tableSize(ctx, status.TotalEntries)
	return status, nil
}

// tableSize estimates the table size, falling back to a rough per-row estimate.
func (ps *CacheStoreImpl) tableSize(ctx context.Context, entries int) int64 {
	fallback := int64(entries) * 1000
	var size int64

	switch ps.backend {
	case schema.SQLiteBackend:
		// For SQLite, use page_count * page_size
		sizeQuery := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		if err := ps.db.QueryRowContext(ctx, sizeQuery).Scan(&size); err != nil {
			return 0
		}
		return size

	case schema.MySQLBackend:
		// Use information_schema for MySQL
		cfg, err := mysql.ParseDSN(ps.connStr)
		if err != nil || cfg.DBName == "" {
			return fallback
		}
		sizeQuery := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		if err := ps.db.QueryRowContext(ctx, sizeQuery, cfg.DBName, ps.tableName).Scan(&size); err != nil {
			return fallback
		}
		return size

	case schema.PostgreSQLBackend:
		// Use pg_total_relation_size for PostgreSQL
		if err := ps.db.QueryRowContext(ctx, "SELECT pg_total_relation_size($1)", ps.tableName).Scan(&size); err != nil {
			return fallback
		}
		return size

	default:
		return fallback
	}
}
