package iocache

import (
	"sync"

	"github.com/huangsam/pagescore/internal/contract"
)

// CacheStoreManager manages the cache and history stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	cache        contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewCacheStoreManager creates a manager over already opened stores.
func NewCacheStoreManager(cache contract.CacheStore, history contract.HistoryStore) *CacheStoreManager {
	return &CacheStoreManager{cache: cache, history: history}
}

// GetCacheStore returns the analysis cache backing store.
func (mgr *CacheStoreManager) GetCacheStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.cache
}

// GetHistoryStore returns the score history store.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

// Close closes both stores.
func (mgr *CacheStoreManager) Close() {
	mgr.Lock()
	defer mgr.Unlock()
	if mgr.cache != nil {
		_ = mgr.cache.Close()
	}
	if mgr.history != nil {
		_ = mgr.history.Close()
	}
}
