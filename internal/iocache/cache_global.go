package iocache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

// analysisTable is the name of the table for the analysis cache.
const analysisTable = "analysis_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetDBFilePath returns the path to the SQLite DB file for cache storage.
func GetDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for score history.
func GetHistoryDBFilePath() string {
	return contract.GetHistoryDBFilePath()
}

// NewBackingStore opens the cache backing store for a backend.
func NewBackingStore(ctx context.Context, backend schema.DatabaseBackend, connStr string) (contract.CacheStore, error) {
	if backend == schema.RedisBackend {
		store, err := NewRedisStore(ctx, connStr)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := NewCacheStore(ctx, analysisTable, backend, connStr)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// InitCaching initializes the global manager with separate cache and history stores.
// An empty backend leaves the corresponding store unset.
func InitCaching(ctx context.Context, cacheBackend schema.DatabaseBackend, cacheConnStr string, historyBackend schema.DatabaseBackend, historyConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		var cacheStore contract.CacheStore
		if cacheBackend != "" {
			store, err := NewBackingStore(ctx, cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize analysis cache: %w", err)
				return
			}
			cacheStore = store
		}

		var historyStore contract.HistoryStore
		if historyBackend != "" {
			store, err := NewHistoryStore(ctx, historyBackend, historyConnStr)
			if err != nil {
				if cacheStore != nil {
					_ = cacheStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize history store: %w", err)
				return
			}
			historyStore = store
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.cache = cacheStore
		Manager.history = historyStore
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// CloseCaching should be called on application shutdown.
func CloseCaching() { // called in main defer
	closeOnce.Do(Manager.Close)
}

// ClearCache clears the analysis cache for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For Redis, it deletes every key under keyPrefix.
// For NoneBackend, it does nothing.
func ClearCache(ctx context.Context, backend schema.DatabaseBackend, dbFilePath, connStr, keyPrefix string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(ctx, backend, connStr, analysisTable)

	case schema.RedisBackend:
		if keyPrefix == "" {
			keyPrefix = schema.DefaultKeyPrefix
		}
		store, err := NewRedisStore(ctx, connStr)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		_, err = store.clearPrefix(ctx, keyPrefix)
		return err

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearHistory clears the score history for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the history tables.
// For NoneBackend, it does nothing.
func ClearHistory(ctx context.Context, backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(ctx, backend, connStr, categoryScoresTable, reportsTable, "schema_migrations")

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported history backend for clearing: %s", backend)
	}
}

// removeSQLiteFile removes a SQLite database file; a missing file is not an error.
func removeSQLiteFile(dbFilePath string) error {
	if dbFilePath == "" {
		return errors.New("dbFilePath cannot be empty for SQLite backend")
	}
	if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}
