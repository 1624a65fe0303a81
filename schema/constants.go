package schema

import "time"

// Custom string types for type safety.
type (
	// Category represents one of the independent scoring dimensions.
	Category string

	// Grade represents the letter grade of an overall score.
	Grade string

	// AnalysisKind represents the kind of cached analysis.
	AnalysisKind string

	// ContentType represents the freshness class of cached content.
	ContentType string

	// PreferenceTier represents a user's declared cache freshness preference.
	PreferenceTier string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the backing store for caching and history.
	DatabaseBackend string
)

// All scoring categories.
const (
	TitleCategory           Category = "title"
	MetaDescriptionCategory Category = "meta_description"
	HeadingsCategory        Category = "headings"
	ContentCategory         Category = "content"
	ImagesCategory          Category = "images"
	LinksCategory           Category = "links"
	TechnicalCategory       Category = "technical"
	SocialMediaCategory     Category = "social_media"
	StructuredDataCategory  Category = "structured_data"
)

// All grades, best first.
const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Breakdown status labels.
const (
	ExcellentStatus    = "Excellent"
	GoodStatus         = "Good"
	AverageStatus      = "Average"
	BelowAverageStatus = "Below Average"
	PoorStatus         = "Poor"
)

// All cached analysis kinds.
const (
	URLAnalysis        AnalysisKind = "url_analysis"
	DomainAnalysis     AnalysisKind = "domain_analysis"
	KeywordAnalysis    AnalysisKind = "keyword_analysis"
	BatchAnalysis      AnalysisKind = "batch_analysis"
	UserAnalysis       AnalysisKind = "user_analysis"
	CompetitorAnalysis AnalysisKind = "competitor_analysis"
)

// All content types with a dedicated TTL.
const (
	FullAnalysisContent       ContentType = "full_analysis" // default
	ScoreOnlyContent          ContentType = "score_only"
	MetaDataContent           ContentType = "meta_data"
	TechnicalAuditContent     ContentType = "technical_audit"
	PerformanceMetricsContent ContentType = "performance_metrics"
	CrawlDataContent          ContentType = "crawl_data"
	RecommendationsContent    ContentType = "recommendations"
	CompetitiveDataContent    ContentType = "competitive_data"
)

// All user preference tiers.
const (
	ShortTier    PreferenceTier = "short"
	NormalTier   PreferenceTier = "normal" // default
	LongTier     PreferenceTier = "long"
	ExtendedTier PreferenceTier = "extended"
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis"
	NoneBackend       DatabaseBackend = "none"
)

// Defaults shared by the engine and the cache.
const (
	MaxScore                    = 100
	DefaultScoringVersion       = "2.1.0"
	DefaultSchemaVersion        = "1.0.0"
	DefaultKeyPrefix            = "seo_analysis:"
	DefaultCompressionThreshold = 1024
	DefaultTTL                  = time.Hour
)

// AllCategories lists every category in report order.
var AllCategories = []Category{
	TitleCategory,
	MetaDescriptionCategory,
	HeadingsCategory,
	ContentCategory,
	ImagesCategory,
	LinksCategory,
	TechnicalCategory,
	SocialMediaCategory,
	StructuredDataCategory,
}

// AllAnalysisKinds lists every cached analysis kind.
var AllAnalysisKinds = []AnalysisKind{
	URLAnalysis,
	DomainAnalysis,
	KeywordAnalysis,
	BatchAnalysis,
	UserAnalysis,
	CompetitorAnalysis,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid cache and history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidHistoryBackends lists the backends that can hold score history.
var ValidHistoryBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidAnalysisKinds lists all valid analysis kinds.
var ValidAnalysisKinds = map[AnalysisKind]struct{}{
	URLAnalysis:        {},
	DomainAnalysis:     {},
	KeywordAnalysis:    {},
	BatchAnalysis:      {},
	UserAnalysis:       {},
	CompetitorAnalysis: {},
}

// GetDefaultWeights returns the default category weights. They sum to 100.
func GetDefaultWeights() map[Category]int {
	return map[Category]int{
		TitleCategory:           20,
		MetaDescriptionCategory: 15,
		HeadingsCategory:        15,
		ContentCategory:         20,
		ImagesCategory:          10,
		LinksCategory:           8,
		TechnicalCategory:       7,
		SocialMediaCategory:     3,
		StructuredDataCategory:  2,
	}
}

// GetDefaultContentTTLs returns the default freshness window per content type.
func GetDefaultContentTTLs() map[ContentType]time.Duration {
	return map[ContentType]time.Duration{
		FullAnalysisContent:       3600 * time.Second,
		ScoreOnlyContent:          1800 * time.Second,
		MetaDataContent:           7200 * time.Second,
		TechnicalAuditContent:     14400 * time.Second,
		PerformanceMetricsContent: 900 * time.Second,
		CrawlDataContent:          21600 * time.Second,
		RecommendationsContent:    1800 * time.Second,
		CompetitiveDataContent:    86400 * time.Second,
	}
}

// GetDefaultTierTTLs returns the default freshness window per preference tier.
func GetDefaultTierTTLs() map[PreferenceTier]time.Duration {
	return map[PreferenceTier]time.Duration{
		ShortTier:    900 * time.Second,
		NormalTier:   3600 * time.Second,
		LongTier:     7200 * time.Second,
		ExtendedTier: 21600 * time.Second,
	}
}
