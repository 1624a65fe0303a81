package iocache

import (
	"maps"
	"time"

	"github.com/huangsam/pagescore/schema"
)

// Freshness bounds applied on top of the content type table.
const (
	staticFloor      = 2 * time.Hour
	highPriorityCap  = 30 * time.Minute
	newsContentCap   = 15 * time.Minute
	staticContentTag = "static"
	newsContentTag   = "news"
)

// TTLPolicy resolves how long an entry stays fresh.
type TTLPolicy struct {
	contentTTLs map[schema.ContentType]time.Duration
	tierTTLs    map[schema.PreferenceTier]time.Duration
	fallback    time.Duration
}

// NewTTLPolicy creates a policy from the given tables. Nil tables select the defaults.
func NewTTLPolicy(contentTTLs map[schema.ContentType]time.Duration, tierTTLs map[schema.PreferenceTier]time.Duration) TTLPolicy {
	if contentTTLs == nil {
		contentTTLs = schema.GetDefaultContentTTLs()
	}
	if tierTTLs == nil {
		tierTTLs = schema.GetDefaultTierTTLs()
	}
	return TTLPolicy{
		contentTTLs: maps.Clone(contentTTLs),
		tierTTLs:    maps.Clone(tierTTLs),
		fallback:    schema.DefaultTTL,
	}
}

// Resolve returns the TTL for contentType under the given hints.
//
// A user with a declared cache preference gets the tier TTL outright. Otherwise the
// content type TTL is floored for static content and then capped for high priority
// or news content, so a cap always wins over the floor.
func (p TTLPolicy) Resolve(contentType schema.ContentType, hints map[string]string) time.Duration {
	if hints["user_id"] != "" && hints["cache_preference"] != "" {
		return p.tierTTL(schema.PreferenceTier(hints["cache_preference"]))
	}

	ttl, ok := p.contentTTLs[contentType]
	if !ok {
		ttl = p.fallback
	}

	hinted := hints["content_type"]
	if hinted == staticContentTag {
		ttl = max(ttl, staticFloor)
	}
	if hints["priority"] == "high" {
		ttl = min(ttl, highPriorityCap)
	}
	if hinted == newsContentTag {
		ttl = min(ttl, newsContentCap)
	}
	return ttl
}

func (p TTLPolicy) tierTTL(tier schema.PreferenceTier) time.Duration {
	if ttl, ok := p.tierTTLs[tier]; ok {
		return ttl
	}
	if ttl, ok := p.tierTTLs[schema.NormalTier]; ok {
		return ttl
	}
	return p.fallback
}
