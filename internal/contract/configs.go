package contract

import (
	"fmt"
	"maps"
	"regexp"
	"strings"
	"time"

	"github.com/huangsam/pagescore/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 1
	MaxHintLength    = 256
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

var versionPattern = regexp.MustCompile(`^\d+(\.\d+)*$`)

// Config holds the runtime configuration for scoring and caching.
// This struct remains the "final, validated" config.
type Config struct {
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	KeyPrefix            string
	SchemaVersion        string
	CompressionThreshold int

	// Weights is the final category weight table, defaults plus overrides
	Weights map[schema.Category]int

	// ContentTTLs and TierTTLs are the final freshness tables
	ContentTTLs map[schema.ContentType]time.Duration
	TierTTLs    map[schema.PreferenceTier]time.Duration

	Kind    schema.AnalysisKind
	Subject string
	Hints   map[string]string
	NoCache bool

	MetricsAddr string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	SubjectStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Color            string `mapstructure:"color"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	KeyPrefix            string `mapstructure:"key-prefix"`
	SchemaVersion        string `mapstructure:"schema-version"`
	CompressionThreshold int    `mapstructure:"compression-threshold"`

	// --- Fields from scoreCmd.Flags() ---
	Kind            string `mapstructure:"kind"`
	URL             string `mapstructure:"url"`
	ContentType     string `mapstructure:"content-type"`
	Priority        string `mapstructure:"priority"`
	UserID          string `mapstructure:"user-id"`
	CachePreference string `mapstructure:"cache-preference"`
	BatchID         string `mapstructure:"batch-id"`
	Domain          string `mapstructure:"domain"`
	Competitor      string `mapstructure:"competitor"`
	NoCache         bool   `mapstructure:"no-cache"`

	// --- Fields from mcpCmd.Flags() ---
	MetricsAddr string `mapstructure:"metrics-addr"`

	// --- Tables from config file ---
	Weights map[string]int `mapstructure:"weights"`
	TTL     map[string]int `mapstructure:"ttl"`
	TierTTL map[string]int `mapstructure:"tier-ttl"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Weights != nil {
		clone.Weights = maps.Clone(c.Weights)
	}
	if c.ContentTTLs != nil {
		clone.ContentTTLs = maps.Clone(c.ContentTTLs)
	}
	if c.TierTTLs != nil {
		clone.TierTTLs = maps.Clone(c.TierTTLs)
	}
	if c.Hints != nil {
		clone.Hints = maps.Clone(c.Hints)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := validateCacheSettings(cfg, input); err != nil {
		return err
	}
	if err := processWeights(cfg, input); err != nil {
		return err
	}
	if err := processTTLs(cfg, input); err != nil {
		return err
	}
	return processHints(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL, PostgreSQL and Redis backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' with the host:port address")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must start with 'redis://' or 'rediss://'")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.NoCache = input.NoCache
	cfg.MetricsAddr = strings.TrimSpace(input.MetricsAddr)

	color := input.Color
	if color == "" {
		color = "yes"
	}
	colors, err := ParseBoolString(color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.NoneBackend
		return nil
	}
	if _, ok := schema.ValidHistoryBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateCacheSettings validates key prefix, schema version and compression threshold.
func validateCacheSettings(cfg *Config, input *ConfigRawInput) error {
	cfg.KeyPrefix = input.KeyPrefix
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = schema.DefaultKeyPrefix
	}
	if strings.ContainsAny(cfg.KeyPrefix, "*? ") {
		return fmt.Errorf("key prefix %q cannot contain wildcards or spaces", cfg.KeyPrefix)
	}

	cfg.SchemaVersion = strings.TrimSpace(input.SchemaVersion)
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = schema.DefaultSchemaVersion
	}
	if !versionPattern.MatchString(cfg.SchemaVersion) {
		return fmt.Errorf("schema version %q must be dot-separated integers", cfg.SchemaVersion)
	}

	cfg.CompressionThreshold = input.CompressionThreshold
	if cfg.CompressionThreshold == 0 {
		cfg.CompressionThreshold = schema.DefaultCompressionThreshold
	}
	if cfg.CompressionThreshold < 0 {
		return fmt.Errorf("compression threshold must be positive (received %d)", cfg.CompressionThreshold)
	}
	return nil
}

// ProcessWeightsRawInput merges custom category weights over the defaults.
// If validateSum is true, it validates that the final weights sum to 100.
func ProcessWeightsRawInput(raw map[string]int, validateSum bool) (map[schema.Category]int, error) {
	weights := schema.GetDefaultWeights()
	for name, w := range raw {
		category := schema.Category(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := weights[category]; !ok {
			return nil, fmt.Errorf("unknown scoring category %q", name)
		}
		if w < 0 {
			return nil, fmt.Errorf("weight for category %s cannot be negative (received %d)", category, w)
		}
		weights[category] = w
	}

	if validateSum {
		sum := 0
		for _, w := range weights {
			sum += w
		}
		if sum != schema.MaxScore {
			return nil, fmt.Errorf("category weights must sum to %d, got %d", schema.MaxScore, sum)
		}
	}
	return weights, nil
}

// processWeights computes the final weight table.
func processWeights(cfg *Config, input *ConfigRawInput) error {
	weights, err := ProcessWeightsRawInput(input.Weights, true)
	if err != nil {
		return err
	}
	cfg.Weights = weights
	return nil
}

// processTTLs merges custom TTL seconds over the default tables.
func processTTLs(cfg *Config, input *ConfigRawInput) error {
	cfg.ContentTTLs = schema.GetDefaultContentTTLs()
	for name, seconds := range input.TTL {
		if seconds <= 0 {
			return fmt.Errorf("ttl for content type %s must be positive (received %d)", name, seconds)
		}
		cfg.ContentTTLs[schema.ContentType(strings.ToLower(name))] = time.Duration(seconds) * time.Second
	}

	cfg.TierTTLs = schema.GetDefaultTierTTLs()
	for name, seconds := range input.TierTTL {
		tier := schema.PreferenceTier(strings.ToLower(name))
		if _, ok := cfg.TierTTLs[tier]; !ok {
			return fmt.Errorf("unknown cache preference tier %q", name)
		}
		if seconds <= 0 {
			return fmt.Errorf("ttl for tier %s must be positive (received %d)", name, seconds)
		}
		cfg.TierTTLs[tier] = time.Duration(seconds) * time.Second
	}
	return nil
}

// processHints resolves the analysis kind, the subject and the per-call hints.
func processHints(cfg *Config, input *ConfigRawInput) error {
	cfg.Kind = schema.AnalysisKind(strings.ToLower(input.Kind))
	if cfg.Kind == "" {
		cfg.Kind = schema.URLAnalysis
	}
	if _, ok := schema.ValidAnalysisKinds[cfg.Kind]; !ok {
		return fmt.Errorf("invalid analysis kind '%s'", input.Kind)
	}

	cfg.Subject = strings.TrimSpace(input.URL)
	if cfg.Subject == "" {
		cfg.Subject = strings.TrimSpace(input.SubjectStr)
	}

	hints := map[string]string{
		"content_type":     input.ContentType,
		"priority":         input.Priority,
		"user_id":          input.UserID,
		"cache_preference": input.CachePreference,
		"batch_id":         input.BatchID,
		"domain":           input.Domain,
		"competitor":       input.Competitor,
	}
	cfg.Hints = make(map[string]string)
	for k, v := range hints {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if len(v) > MaxHintLength {
			return fmt.Errorf("hint %s exceeds %d characters", k, MaxHintLength)
		}
		cfg.Hints[k] = v
	}

	switch cfg.Kind {
	case schema.BatchAnalysis:
		if cfg.Hints["batch_id"] == "" {
			return fmt.Errorf("--batch-id is required for %s", cfg.Kind)
		}
	case schema.UserAnalysis:
		if cfg.Hints["user_id"] == "" {
			return fmt.Errorf("--user-id is required for %s", cfg.Kind)
		}
	case schema.CompetitorAnalysis:
		if cfg.Hints["competitor"] == "" {
			return fmt.Errorf("--competitor is required for %s", cfg.Kind)
		}
	}
	return nil
}

// RevalidateScore re-resolves the analysis kind, subject and hints of a cloned config
// for a single scoring request, such as one coming from an MCP tool call.
func RevalidateScore(cfg *Config, input *ConfigRawInput) error {
	return processHints(cfg, input)
}
