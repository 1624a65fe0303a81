package contract

import "errors"

// Errors shared by the cache stores and the analysis cache.
var (
	ErrCacheMiss        = errors.New("cache miss")
	ErrCacheUnavailable = errors.New("cache unavailable")
	ErrCorruptEntry     = errors.New("corrupt cache entry")
	ErrStaleSchema      = errors.New("stale cache schema")
)
