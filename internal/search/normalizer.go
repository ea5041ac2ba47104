// file: internal/search/normalizer.go
// version: 1.0.0
// guid: a7b8c9d0-e1f2-3a4b-5c6d-7e8f9a0b1c2d

package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalized is the result of query normalization. Original keeps the
// caller's casing for display/highlighting; Query is the folded form used
// for every comparison.
type Normalized struct {
	Original string
	Query    string
	Tokens   []string
	TooShort bool
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeQuery trims, diacritic-folds, and lowercases a raw query.
// Queries shorter than minLen after trimming are flagged TooShort; callers
// return an empty result set without invoking the matcher.
func NormalizeQuery(raw string, minLen int) Normalized {
	original := strings.TrimSpace(raw)

	folded, _, err := transform.String(foldTransformer, original)
	if err != nil {
		folded = original
	}
	query := strings.ToLower(folded)

	return Normalized{
		Original: original,
		Query:    query,
		Tokens:   strings.Fields(query),
		TooShort: len(query) < minLen,
	}
}

// Intent keywords for tag-based search. A query containing any keyword maps
// to the associated tag, so category words ("gold", "debt") still surface
// relevant funds when no name matches.
var intentKeywords = map[string][]string{
	"gold":          {"gold", "goldbees", "commodity", "precious"},
	"silver":        {"silver", "silverbees"},
	"equity":        {"equity", "stock", "large cap", "mid cap", "small cap", "multicap"},
	"debt":          {"debt", "bond", "fixed income", "liquid"},
	"hybrid":        {"hybrid", "balanced", "aggressive hybrid"},
	"international": {"international", "us", "global", "emerging"},
	"sectoral":      {"banking", "pharma", "tech", "auto", "infrastructure", "energy"},
	"index":         {"index", "nifty", "sensex", "etf"},
}

// commoditySymbolTags get an extra confidence boost in single-word
// suggestions ("gold" almost always means the commodity funds).
var commoditySymbolTags = map[string]struct{}{"gold": {}, "silver": {}}

// DetectIntent returns the tags whose keywords appear in the query.
func DetectIntent(query string) []string {
	lower := strings.ToLower(query)
	var tags []string
	for tag, keywords := range intentKeywords {
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				tags = append(tags, tag)
				break
			}
		}
	}
	return tags
}
