package core

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// wordPattern matches letter/number runs, keeping inner apostrophes.
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

	// brandPattern matches a trailing "separator + capitalized brand", e.g. "... | Acme".
	brandPattern = regexp.MustCompile(`\s[|:\x{2013}\x{2014}-]\s*\p{Lu}[^|:\x{2013}\x{2014}]*$`)
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "how": {}, "i": {}, "if": {},
	"in": {}, "into": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {}, "or": {},
	"our": {}, "so": {}, "that": {}, "the": {}, "their": {}, "this": {}, "to": {}, "was": {},
	"we": {}, "what": {}, "when": {}, "which": {}, "who": {}, "will": {}, "with": {}, "you": {},
	"your": {},
}

// callToActionPhrases are matched against the lowercased text on word boundaries.
var callToActionPhrases = []string{
	"learn more", "read more", "find out", "sign up", "get started", "shop now",
	"buy", "discover", "download", "explore", "try", "order", "book", "subscribe",
	"join", "contact", "call", "start", "save", "get",
}

// tokenize splits text into lowercased words.
func tokenize(text string) []string {
	words := wordPattern.FindAllString(text, -1)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

// uniqueRatio returns the share of distinct words and the number of repeated occurrences.
func uniqueRatio(words []string) (float64, int) {
	if len(words) == 0 {
		return 0, 0
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return float64(len(seen)) / float64(len(words)), len(words) - len(seen)
}

// meaningfulRatio returns the share of words that are not stopwords.
func meaningfulRatio(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	meaningful := 0
	for _, w := range words {
		if _, ok := stopwords[w]; !ok {
			meaningful++
		}
	}
	return float64(meaningful) / float64(len(words))
}

// hasCallToAction reports whether the text contains a call-to-action phrase or ends with "!".
func hasCallToAction(text string, words []string) bool {
	if strings.HasSuffix(strings.TrimSpace(text), "!") {
		return true
	}
	joined := " " + strings.Join(words, " ") + " "
	for _, phrase := range callToActionPhrases {
		if strings.Contains(joined, " "+phrase+" ") {
			return true
		}
	}
	return false
}

// textLength prefers an explicit positive length and falls back to the rune count.
func textLength(explicit int, text string) int {
	if explicit > 0 {
		return explicit
	}
	return utf8.RuneCountInString(text)
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// finiteNonNegative maps negative, NaN and infinite values to zero.
func finiteNonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// clampScore bounds a score to [0, 100] and rounds it to one decimal.
func clampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		v = 100
	}
	return round1(v)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
