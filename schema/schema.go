// Package schema has the models, constants and defaults shared by all parts of pagescore.
package schema

// PageSignals is the normalized output of the HTML parsing collaborator.
// Every field is optional. Scorers treat a zero value as the worst case.
type PageSignals struct {
	Meta           MetaSignals           `json:"meta"`
	Headings       HeadingSignals        `json:"headings"`
	Images         ImageSignals          `json:"images"`
	Links          LinkSignals           `json:"links"`
	Content        ContentSignals        `json:"content"`
	Technical      TechnicalSignals      `json:"technical"`
	SocialMedia    SocialMediaSignals    `json:"social_media"`
	StructuredData StructuredDataSignals `json:"structured_data"`
}

// MetaSignals holds the extracted meta tags.
type MetaSignals struct {
	Title             string `json:"title,omitempty"`
	TitleLength       int    `json:"title_length,omitempty"`
	Description       string `json:"description,omitempty"`
	DescriptionLength int    `json:"description_length,omitempty"`
	Keywords          string `json:"keywords,omitempty"`
	Canonical         string `json:"canonical,omitempty"`
	OGTitle           string `json:"og_title,omitempty"`
	OGDescription     string `json:"og_description,omitempty"`
	OGImage           string `json:"og_image,omitempty"`
	OGURL             string `json:"og_url,omitempty"`
	OGType            string `json:"og_type,omitempty"`
}

// HeadingSignals holds heading texts per level, in document order.
type HeadingSignals struct {
	H1 []string `json:"h1,omitempty"`
	H2 []string `json:"h2,omitempty"`
	H3 []string `json:"h3,omitempty"`
	H4 []string `json:"h4,omitempty"`
	H5 []string `json:"h5,omitempty"`
	H6 []string `json:"h6,omitempty"`
}

// Levels returns the headings indexed by level, so Levels()[0] is H1.
func (h HeadingSignals) Levels() [6][]string {
	return [6][]string{h.H1, h.H2, h.H3, h.H4, h.H5, h.H6}
}

// ImageSignals holds image counters.
type ImageSignals struct {
	TotalCount        int `json:"total_count"`
	WithoutAltCount   int `json:"without_alt_count"`
	WithoutTitleCount int `json:"without_title_count"`
}

// LinkSignals holds anchor counters.
type LinkSignals struct {
	TotalCount       int `json:"total_count"`
	InternalCount    int `json:"internal_count"`
	ExternalCount    int `json:"external_count"`
	NofollowCount    int `json:"nofollow_count"`
	EmptyAnchorCount int `json:"empty_anchor_count"`
}

// ContentSignals holds body text statistics.
type ContentSignals struct {
	WordCount          int     `json:"word_count"`
	TextToHTMLRatio    float64 `json:"text_to_html_ratio"`
	ReadingTimeMinutes float64 `json:"reading_time_minutes"`
	Paragraphs         int     `json:"paragraphs"`
}

// TechnicalSignals holds document-level technical flags.
type TechnicalSignals struct {
	Doctype             string `json:"doctype,omitempty"`
	LangAttribute       string `json:"lang_attribute,omitempty"`
	SSLRequired         bool   `json:"ssl_required"`
	SchemaMarkupPresent bool   `json:"schema_markup_present"`
	OpenGraphPresent    bool   `json:"open_graph_present"`
	InlineStylesCount   int    `json:"inline_styles_count"`
	InlineScriptsCount  int    `json:"inline_scripts_count"`
}

// SocialMediaSignals holds Open Graph and Twitter card tags keyed by property name.
type SocialMediaSignals struct {
	OpenGraph    map[string]string `json:"open_graph,omitempty"`
	TwitterCards map[string]string `json:"twitter_cards,omitempty"`
}

// StructuredDataSignals holds the structured data blocks found on the page.
type StructuredDataSignals struct {
	JSONLD    []map[string]any `json:"json_ld,omitempty"`
	Microdata []map[string]any `json:"microdata,omitempty"`
	RDFa      []map[string]any `json:"rdfa,omitempty"`
}
