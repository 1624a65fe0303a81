package iocache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/huangsam/pagescore/schema"
)

// unknownPart fills key placeholders that the hints do not provide.
const unknownPart = "unknown"

// keyTemplates maps each analysis kind to the placeholders of its key, in order.
// The fingerprint of the identifier always comes last.
var keyTemplates = map[schema.AnalysisKind][]string{
	schema.URLAnalysis:        {"url"},
	schema.DomainAnalysis:     {"domain", "{domain}"},
	schema.KeywordAnalysis:    {"keyword"},
	schema.BatchAnalysis:      {"batch", "{batch_id}"},
	schema.UserAnalysis:       {"user", "{user_id}"},
	schema.CompetitorAnalysis: {"competitor", "{domain}", "{competitor}"},
}

// KeyBuilder builds fully qualified cache keys under a fixed prefix.
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a KeyBuilder. An empty prefix selects the default one.
func NewKeyBuilder(prefix string) KeyBuilder {
	if prefix == "" {
		prefix = schema.DefaultKeyPrefix
	}
	return KeyBuilder{prefix: prefix}
}

// Prefix returns the prefix every key starts with.
func (kb KeyBuilder) Prefix() string {
	return kb.prefix
}

// Build returns the key for (kind, identifier, hints). Equal inputs always yield equal keys
// and inputs that differ only in hints yield different keys.
func (kb KeyBuilder) Build(kind schema.AnalysisKind, identifier string, hints map[string]string) (string, error) {
	template, ok := keyTemplates[kind]
	if !ok {
		return "", fmt.Errorf("unknown analysis kind %q", kind)
	}

	parts := make([]string, 0, len(template)+1)
	for _, part := range template {
		switch part {
		case "{domain}":
			parts = append(parts, domainOf(identifier, hints))
		case "{batch_id}", "{user_id}", "{competitor}":
			parts = append(parts, hintOr(hints, strings.Trim(part, "{}")))
		default:
			parts = append(parts, part)
		}
	}
	parts = append(parts, Fingerprint(identifier))

	key := kb.prefix + strings.Join(parts, ":")
	if len(hints) > 0 {
		key += ":ctx" + contextFingerprint(hints)
	}
	return key, nil
}

// SubjectPattern matches every key built for identifier, whatever its kind or hints.
func (kb KeyBuilder) SubjectPattern(identifier string) string {
	return kb.prefix + "*" + Fingerprint(identifier) + "*"
}

// DomainPattern matches every key with domain as a whole segment.
// Fingerprints and context suffixes never match, even when domain looks like hex.
func (kb KeyBuilder) DomainPattern(domain string) string {
	return kb.prefix + "*:" + domain + ":*"
}

// AllPattern matches every key under the prefix.
func (kb KeyBuilder) AllPattern() string {
	return kb.prefix + "*"
}

// KindOf reports the analysis kind a key was built for.
func (kb KeyBuilder) KindOf(key string) (schema.AnalysisKind, bool) {
	rest, ok := strings.CutPrefix(key, kb.prefix)
	if !ok {
		return "", false
	}
	head, _, _ := strings.Cut(rest, ":")
	for kind, template := range keyTemplates {
		if template[0] == head {
			return kind, true
		}
	}
	return "", false
}

// Fingerprint returns the first 16 hex characters of the SHA-256 of identifier.
func Fingerprint(identifier string) string {
	sum := sha256.Sum256([]byte(identifier))
	return hex.EncodeToString(sum[:])[:16]
}

// contextFingerprint hashes the hints as canonical JSON. encoding/json sorts map keys.
func contextFingerprint(hints map[string]string) string {
	data, _ := json.Marshal(hints)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:8]
}

func hintOr(hints map[string]string, name string) string {
	if v := hints[name]; v != "" {
		return v
	}
	return unknownPart
}

// domainOf prefers the domain hint, then the identifier's host.
func domainOf(identifier string, hints map[string]string) string {
	if d := hints["domain"]; d != "" {
		return d
	}
	if u, err := url.Parse(identifier); err == nil && u.Hostname() != "" {
		return strings.ToLower(u.Hostname())
	}
	if identifier != "" && !strings.ContainsAny(identifier, "/: ") {
		return strings.ToLower(identifier)
	}
	return unknownPart
}
