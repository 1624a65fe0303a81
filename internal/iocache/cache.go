package iocache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

// Eviction reasons reported to the metrics recorder.
const (
	evictStale      = "stale_schema"
	evictCorrupt    = "corrupt"
	evictSubject    = "invalidate_subject"
	evictDomain     = "invalidate_domain"
	evictExpiration = "cleanup"
)

// AnalysisCache stores analysis payloads in a backing store under versioned envelopes.
// Backing store failures never escape: writes report false and reads report a miss.
type AnalysisCache struct {
	store         contract.CacheStore
	keys          KeyBuilder
	ttl           TTLPolicy
	codec         Codec
	schemaVersion string
	clock         contract.Clock
	logger        *slog.Logger
	recorder      contract.MetricsRecorder

	hits   atomic.Int64
	misses atomic.Int64
}

var _ contract.AnalysisCache = &AnalysisCache{} // Compile-time check

// Option configures an AnalysisCache.
type Option func(*AnalysisCache)

// WithKeyPrefix sets the prefix of every key.
func WithKeyPrefix(prefix string) Option {
	return func(c *AnalysisCache) { c.keys = NewKeyBuilder(prefix) }
}

// WithSchemaVersion sets the version stamped on entries. Older entries are treated as stale.
func WithSchemaVersion(version string) Option {
	return func(c *AnalysisCache) {
		if version != "" {
			c.schemaVersion = version
		}
	}
}

// WithCompressionThreshold sets the payload size above which compression is attempted.
func WithCompressionThreshold(threshold int) Option {
	return func(c *AnalysisCache) { c.codec = NewCodec(threshold) }
}

// WithTTLPolicy sets the freshness policy.
func WithTTLPolicy(policy TTLPolicy) Option {
	return func(c *AnalysisCache) { c.ttl = policy }
}

// WithClock sets the clock used for cached_at timestamps.
func WithClock(clock contract.Clock) Option {
	return func(c *AnalysisCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger for degraded cache operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *AnalysisCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec contract.MetricsRecorder) Option {
	return func(c *AnalysisCache) {
		if rec != nil {
			c.recorder = rec
		}
	}
}

// FromConfig applies the cache settings of a validated config.
func FromConfig(cfg *contract.Config) Option {
	return func(c *AnalysisCache) {
		c.keys = NewKeyBuilder(cfg.KeyPrefix)
		c.codec = NewCodec(cfg.CompressionThreshold)
		c.ttl = NewTTLPolicy(cfg.ContentTTLs, cfg.TierTTLs)
		if cfg.SchemaVersion != "" {
			c.schemaVersion = cfg.SchemaVersion
		}
	}
}

// NewAnalysisCache creates a cache on top of store. A nil store is reported as unavailable.
func NewAnalysisCache(store contract.CacheStore, opts ...Option) (*AnalysisCache, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: no backing store", contract.ErrCacheUnavailable)
	}
	c := &AnalysisCache{
		store:         store,
		keys:          NewKeyBuilder(""),
		ttl:           NewTTLPolicy(nil, nil),
		codec:         NewCodec(0),
		schemaVersion: schema.DefaultSchemaVersion,
		clock:         contract.SystemClock{},
		logger:        slog.Default().With("component", "analysis_cache"),
		recorder:      contract.NopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Keys returns the key builder in use.
func (c *AnalysisCache) Keys() KeyBuilder {
	return c.keys
}

// SchemaVersion returns the version stamped on new entries.
func (c *AnalysisCache) SchemaVersion() string {
	return c.schemaVersion
}

// Store writes payload under the key for (kind, identifier, hints) with the TTL
// resolved for contentType. It returns false when the entry was not written.
func (c *AnalysisCache) Store(ctx context.Context, kind schema.AnalysisKind, identifier string, payload any, contentType schema.ContentType, hints map[string]string) bool {
	ok := c.write(ctx, kind, identifier, payload, contentType, hints)
	c.recorder.CacheStore(kind, ok)
	return ok
}

func (c *AnalysisCache) write(ctx context.Context, kind schema.AnalysisKind, identifier string, payload any, contentType schema.ContentType, hints map[string]string) bool {
	key, err := c.keys.Build(kind, identifier, hints)
	if err != nil {
		c.logger.Warn("cache store skipped", "kind", kind, "error", err)
		return false
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn("cache payload not serializable", "key", key, "error", err)
		return false
	}
	entry := schema.CacheEntry{
		Payload: raw,
		Metadata: schema.CacheMetadata{
			Type:              kind,
			SubjectIdentifier: identifier,
			CachedAt:          c.clock.Now().UTC(),
			SchemaVersion:     c.schemaVersion,
			Context:           maps.Clone(hints),
		},
	}
	data, err := c.codec.Encode(entry)
	if err != nil {
		c.logger.Warn("cache entry not encodable", "key", key, "error", err)
		return false
	}

	ttl := c.ttl.Resolve(contentType, hints)
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warn("cache store failed", "key", key, "error", err)
		return false
	}
	c.logger.Debug("cache stored", "key", key, "bytes", len(data), "ttl", ttl)
	return true
}

// Fetch decodes the payload stored for (kind, identifier, hints) into dst.
// It returns false on a miss, including stale and corrupt entries, which are deleted.
func (c *AnalysisCache) Fetch(ctx context.Context, kind schema.AnalysisKind, identifier string, hints map[string]string, dst any) bool {
	if c.fetch(ctx, kind, identifier, hints, dst) {
		c.hits.Add(1)
		c.recorder.CacheHit(kind)
		return true
	}
	c.misses.Add(1)
	c.recorder.CacheMiss(kind)
	return false
}

func (c *AnalysisCache) fetch(ctx context.Context, kind schema.AnalysisKind, identifier string, hints map[string]string, dst any) bool {
	key, err := c.keys.Build(kind, identifier, hints)
	if err != nil {
		c.logger.Warn("cache fetch skipped", "kind", kind, "error", err)
		return false
	}

	data, err := c.store.Get(ctx, key)
	if errors.Is(err, contract.ErrCacheMiss) {
		return false
	}
	if err != nil {
		c.logger.Warn("cache fetch failed", "key", key, "error", err)
		return false
	}

	var entry schema.CacheEntry
	if err := c.codec.Decode(data, &entry); err != nil {
		c.logger.Warn("corrupt cache entry", "key", key, "error", err)
		c.evict(ctx, evictCorrupt, key)
		return false
	}
	if CompareVersions(entry.Metadata.SchemaVersion, c.schemaVersion) < 0 {
		c.logger.Debug("stale cache entry", "key", key, "version", entry.Metadata.SchemaVersion, "current", c.schemaVersion)
		c.evict(ctx, evictStale, key)
		return false
	}
	if err := json.Unmarshal(entry.Payload, dst); err != nil {
		c.logger.Warn("corrupt cache payload", "key", key, "error", fmt.Errorf("%w: %v", contract.ErrCorruptEntry, err))
		c.evict(ctx, evictCorrupt, key)
		return false
	}
	return true
}

// InvalidateBySubject deletes every entry built for identifier and returns how many were removed.
// Stores that cannot enumerate keys always report 0.
func (c *AnalysisCache) InvalidateBySubject(ctx context.Context, identifier string) int {
	return c.invalidate(ctx, evictSubject, c.keys.SubjectPattern(identifier))
}

// InvalidateByDomain deletes every entry whose key embeds domain and returns how many were removed.
// Stores that cannot enumerate keys always report 0.
func (c *AnalysisCache) InvalidateByDomain(ctx context.Context, domain string) int {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" || strings.ContainsAny(domain, "*?") {
		return 0
	}
	return c.invalidate(ctx, evictDomain, c.keys.DomainPattern(domain))
}

func (c *AnalysisCache) invalidate(ctx context.Context, reason, pattern string) int {
	keys, ok := c.scan(ctx, pattern)
	if !ok || len(keys) == 0 {
		return 0
	}
	return c.evict(ctx, reason, keys...)
}

// Statistics summarizes the entries under the key prefix. Without key enumeration
// only the hit and miss counters of this process are filled in.
func (c *AnalysisCache) Statistics(ctx context.Context) schema.CacheStatistics {
	stats := schema.CacheStatistics{
		KeysByKind: make(map[schema.AnalysisKind]int),
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRatio = math.Round(float64(stats.Hits)/float64(total)*10000) / 10000
	}

	keys, ok := c.scan(ctx, c.keys.AllPattern())
	if !ok {
		return stats
	}
	stats.TotalKeys = len(keys)
	sizer, canSize := c.store.(contract.SizeInspector)
	for _, key := range keys {
		if kind, ok := c.keys.KindOf(key); ok {
			stats.KeysByKind[kind]++
		}
		if !canSize {
			continue
		}
		if size, err := sizer.Size(ctx, key); err == nil {
			stats.TotalSizeBytes += size
		}
	}
	return stats
}

// CleanupExpiredEntries deletes entries the store reports as expired or as never expiring.
func (c *AnalysisCache) CleanupExpiredEntries(ctx context.Context) int {
	if purger, ok := c.store.(contract.ExpiryPurger); ok {
		n, err := purger.PurgeExpired(ctx)
		if err != nil {
			c.logger.Warn("cache cleanup failed", "error", err)
			return 0
		}
		c.recorder.CacheEviction(evictExpiration, n)
		return n
	}

	inspector, ok := c.store.(contract.TTLInspector)
	if !ok {
		return 0
	}
	keys, ok := c.scan(ctx, c.keys.AllPattern())
	if !ok {
		return 0
	}
	var doomed []string
	for _, key := range keys {
		ttl, err := inspector.TTL(ctx, key)
		if errors.Is(err, contract.ErrCacheMiss) {
			continue
		}
		if err != nil {
			c.logger.Warn("cache ttl lookup failed", "key", key, "error", err)
			continue
		}
		if ttl == contract.NoExpiry || ttl <= 0 {
			doomed = append(doomed, key)
		}
	}
	if len(doomed) == 0 {
		return 0
	}
	return c.evict(ctx, evictExpiration, doomed...)
}

func (c *AnalysisCache) scan(ctx context.Context, pattern string) ([]string, bool) {
	scanner, ok := c.store.(contract.KeyScanner)
	if !ok {
		c.logger.Debug("store cannot enumerate keys", "pattern", pattern)
		return nil, false
	}
	keys, err := scanner.Keys(ctx, pattern)
	if err != nil {
		c.logger.Warn("cache key scan failed", "pattern", pattern, "error", err)
		return nil, false
	}
	return keys, true
}

func (c *AnalysisCache) evict(ctx context.Context, reason string, keys ...string) int {
	n, err := c.store.Delete(ctx, keys...)
	if err != nil {
		c.logger.Warn("cache delete failed", "reason", reason, "keys", len(keys), "error", err)
	}
	if n > 0 {
		c.recorder.CacheEviction(reason, n)
	}
	return n
}

// CompareVersions compares dotted numeric versions like "1.0.0".
// Missing components count as zero and non-numeric components compare as zero.
func CompareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := range max(len(as), len(bs)) {
		x, y := versionPart(as, i), versionPart(bs, i)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

func versionPart(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
	if err != nil {
		return 0
	}
	return n
}
