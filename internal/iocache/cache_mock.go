package iocache

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetCacheStore implements the CacheManager interface.
func (m *MockCacheManager) GetCacheStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetHistoryStore implements the CacheManager interface.
func (m *MockCacheManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
// It has none of the optional store capabilities.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Delete implements the CacheStore interface.
func (m *MockCacheStore) Delete(ctx context.Context, keys ...string) (int, error) {
	args := m.Called(ctx, keys)
	return args.Int(0), args.Error(1)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus(ctx context.Context) (schema.CacheStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// RecordReport implements the HistoryStore interface.
func (m *MockHistoryStore) RecordReport(ctx context.Context, reportID, url string, report *schema.Report, cached bool) error {
	args := m.Called(ctx, reportID, url, report, cached)
	return args.Error(0)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus(ctx context.Context) (schema.HistoryStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// MockAnalysisCache is a mock implementation of AnalysisCache for testing.
type MockAnalysisCache struct {
	mock.Mock
}

var _ contract.AnalysisCache = &MockAnalysisCache{} // Compile-time check

// Store implements the AnalysisCache interface.
func (m *MockAnalysisCache) Store(ctx context.Context, kind schema.AnalysisKind, identifier string, payload any, contentType schema.ContentType, hints map[string]string) bool {
	args := m.Called(ctx, kind, identifier, payload, contentType, hints)
	return args.Bool(0)
}

// Fetch implements the AnalysisCache interface.
// Configure the fill with Run, for example to copy a cached report into dst.
func (m *MockAnalysisCache) Fetch(ctx context.Context, kind schema.AnalysisKind, identifier string, hints map[string]string, dst any) bool {
	args := m.Called(ctx, kind, identifier, hints, dst)
	return args.Bool(0)
}
