// file: internal/search/suggest.go
// version: 1.3.0
// guid: d0e1f2a3-b4c5-6d7e-8f9a-0b1c2d3e4f5a

package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/jdfalk/fund-discovery/internal/metrics"
	"github.com/jdfalk/fund-discovery/internal/models"
	"github.com/jdfalk/fund-discovery/internal/similarity"
)

// Suggestion is one autocomplete entry. HighlightedName wraps the matched
// name words in <mark> tags for direct rendering.
type Suggestion struct {
	FundID          string   `json:"fund_id"`
	Name            string   `json:"name"`
	FundHouse       string   `json:"fund_house"`
	Category        string   `json:"category"`
	SubCategory     string   `json:"sub_category"`
	CurrentNav      float64  `json:"current_nav"`
	Score           float64  `json:"score"`
	Confidence      float64  `json:"confidence"`
	HighlightedName string   `json:"highlighted_name"`
	MatchedTokens   []string `json:"matched_tokens,omitempty"`
}

// SuggestResult is a full suggestion response body.
type SuggestResult struct {
	Query       string       `json:"query"`
	Suggestions []Suggestion `json:"suggestions"`
	Count       int          `json:"count"`
}

// commodityBoost lifts commodity tag hits ("gold", "silver") above ordinary
// tag matches in suggestions, since those queries almost always mean the
// commodity funds themselves.
const commodityBoost = 1.3

// suggestHit accumulates the best base score and matched tokens for one fund
// while the word-count strategies run.
type suggestHit struct {
	score  float64
	tokens []string
}

// Suggest produces ranked autocomplete entries for a partial query. The
// strategy depends on word count: single words match prefixes, subsequences,
// and tags; two words try brand/strategy permutations; longer queries
// require most tokens to land. Short queries return empty without touching
// the catalog.
func (e *Engine) Suggest(ctx context.Context, raw string, limit int) (*SuggestResult, error) {
	normalized := NormalizeQuery(raw, e.tiers.MinQueryLength)
	out := &SuggestResult{Query: normalized.Original, Suggestions: []Suggestion{}}
	if normalized.TooShort {
		return out, nil
	}

	start := time.Now()
	e.invocations.Add(1)
	metrics.IncMatcherInvocation()
	defer func() { metrics.ObserveSearchDuration("suggest", time.Since(start)) }()

	funds, err := e.store.GetAllActiveFunds(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog read failed: %w", err)
	}

	hits := make(map[string]*suggestHit)
	switch len(normalized.Tokens) {
	case 1:
		e.suggestSingleWord(normalized.Query, funds, hits)
	case 2:
		e.suggestTwoWords(normalized.Tokens, funds, hits)
	default:
		e.suggestMultiWord(normalized.Tokens, funds, hits)
	}

	byID := make(map[string]*models.Fund, len(funds))
	for i := range funds {
		byID[funds[i].FundID] = &funds[i]
	}

	suggestions := make([]Suggestion, 0, len(hits))
	for id, hit := range hits {
		fund := byID[id]
		suggestions = append(suggestions, Suggestion{
			FundID:          fund.FundID,
			Name:            fund.Name,
			FundHouse:       fund.FundHouse,
			Category:        fund.Category,
			SubCategory:     fund.SubCategory,
			CurrentNav:      fund.CurrentNav,
			Score:           Boost(hit.score, fund.AUM, fund.Popularity),
			Confidence:      suggestionConfidence(normalized.Tokens, fund),
			HighlightedName: highlightName(fund.Name, hit.tokens),
			MatchedTokens:   hit.tokens,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		if suggestions[i].Confidence != suggestions[j].Confidence {
			return suggestions[i].Confidence > suggestions[j].Confidence
		}
		return suggestions[i].Name < suggestions[j].Name
	})

	max := clampLimit(limit, 10, 20)
	if len(suggestions) > max {
		suggestions = suggestions[:max]
	}

	out.Suggestions = suggestions
	out.Count = len(suggestions)
	return out, nil
}

func record(hits map[string]*suggestHit, fundID string, score float64, token string) {
	hit, ok := hits[fundID]
	if !ok {
		hits[fundID] = &suggestHit{score: score, tokens: tokensFor(token)}
		return
	}
	if score > hit.score {
		hit.score = score
	}
	if token != "" && !containsString(hit.tokens, token) {
		hit.tokens = append(hit.tokens, token)
	}
}

// suggestSingleWord matches one partial word against name words, search
// terms, and tags. Subsequence hits (fuzzy.MatchNormalizedFold) catch
// mid-word typing like "nfty" for "nifty".
func (e *Engine) suggestSingleWord(query string, funds []models.Fund, hits map[string]*suggestHit) {
	intents := DetectIntent(query)
	for i := range funds {
		fund := &funds[i]
		for _, token := range matchableTokens(fund) {
			lower := strings.ToLower(token)
			switch {
			case lower == query:
				record(hits, fund.FundID, e.tiers.Exact, token)
			case strings.HasPrefix(lower, query):
				record(hits, fund.FundID, e.tiers.PrefixScore(len(lower)-len(query)), token)
			default:
				// Very short partials fuzzy-match too much noise; require
				// four typed characters before spending edit distance.
				if len(query) >= 4 {
					if c, ok := e.fuzzyCandidate(query, lower, i); ok {
						record(hits, fund.FundID, c.score, token)
						continue
					}
				}
				if len(query) >= 3 && fuzzy.MatchNormalizedFold(query, lower) {
					record(hits, fund.FundID, e.tiers.FuzzyFloor, token)
				}
			}
		}
		if score, token, ok := e.tagCandidate(query, intents, fund); ok {
			if _, commodity := commoditySymbolTags[strings.ToLower(token)]; commodity {
				score *= commodityBoost
			}
			record(hits, fund.FundID, score, token)
		}
	}
}

// categoryKeywords maps partial strategy words to the sub-category they
// usually mean, so "hdfc small" suggests HDFC Small Cap funds even before
// the word "cap" is typed.
var categoryKeywords = map[string]string{
	"small":  "Small Cap",
	"mid":    "Mid Cap",
	"large":  "Large Cap",
	"flexi":  "Flexi Cap",
	"multi":  "Multi Cap",
	"index":  "Index",
	"liquid": "Liquid",
	"elss":   "ELSS",
	"tax":    "ELSS",
}

// suggestTwoWords handles the common "brand strategy" pattern: first word a
// fund house, second a strategy keyword, in either order, falling back to
// both words appearing anywhere in the name.
func (e *Engine) suggestTwoWords(tokens []string, funds []models.Fund, hits map[string]*suggestHit) {
	first, second := tokens[0], tokens[1]
	for i := range funds {
		fund := &funds[i]
		name := strings.ToLower(fund.Name)
		house := strings.ToLower(fund.FundHouse)
		words := strings.Fields(name)

		switch {
		case wordPrefix(words, first) && (matchesCategory(fund, second) || wordPrefix(words[1:], second)):
			record(hits, fund.FundID, 0.9, matchedWord(words, first))
			record(hits, fund.FundID, 0.9, matchedWord(words, second))
		case wordPrefix(words, second) && (matchesCategory(fund, first) || wordPrefix(words[1:], first)):
			record(hits, fund.FundID, 0.85, matchedWord(words, second))
			record(hits, fund.FundID, 0.85, matchedWord(words, first))
		case strings.Contains(name, first) && strings.Contains(name, second):
			record(hits, fund.FundID, 0.75, matchedWord(words, first))
			record(hits, fund.FundID, 0.75, matchedWord(words, second))
		case strings.HasPrefix(house, first) && matchesCategory(fund, second):
			record(hits, fund.FundID, 0.7, fund.FundHouse)
		}
	}
}

// suggestMultiWord requires most query tokens to land somewhere on the
// fund; the score is the matched fraction scaled into the prefix tier, with
// character trigram overlap breaking near-ties.
func (e *Engine) suggestMultiWord(tokens []string, funds []models.Fund, hits map[string]*suggestHit) {
	for i := range funds {
		fund := &funds[i]
		haystack := strings.ToLower(fund.Name + " " + strings.Join(fund.SearchTerms, " "))
		words := strings.Fields(haystack)

		matched := make([]string, 0, len(tokens))
		for _, token := range tokens {
			if wordPrefix(words, token) {
				matched = append(matched, matchedWord(words, token))
			}
		}
		fraction := float64(len(matched)) / float64(len(tokens))
		if fraction < 0.5 {
			continue
		}

		score := 0.6 + 0.3*fraction
		if fraction < 1 {
			// Trigram overlap rescues near-misses like a typo in one token.
			grams := similarity.NGrams(strings.Join(tokens, " "), 3, 3)
			overlap := 0
			for _, g := range grams {
				if strings.Contains(haystack, g) {
					overlap++
				}
			}
			if len(grams) > 0 {
				score += 0.05 * float64(overlap) / float64(len(grams))
			}
		}
		for _, m := range matched {
			record(hits, fund.FundID, score, m)
		}
	}
}

func matchesCategory(fund *models.Fund, token string) bool {
	if sub, ok := categoryKeywords[token]; ok {
		return strings.EqualFold(fund.SubCategory, sub)
	}
	return false
}

func wordPrefix(words []string, token string) bool {
	for _, w := range words {
		if strings.HasPrefix(w, token) {
			return true
		}
	}
	return false
}

func matchedWord(words []string, token string) string {
	for _, w := range words {
		if strings.HasPrefix(w, token) {
			return w
		}
	}
	return token
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// suggestionConfidence estimates how likely this suggestion is the fund the
// user means, independent of the match score. Signals: name/house prefix,
// token coverage, token order, popularity, and AUM. Capped at 1.
func suggestionConfidence(tokens []string, fund *models.Fund) float64 {
	name := strings.ToLower(fund.Name)
	house := strings.ToLower(fund.FundHouse)
	confidence := 0.0

	switch {
	case strings.HasPrefix(name, tokens[0]):
		confidence += 0.5
	case strings.HasPrefix(house, tokens[0]):
		confidence += 0.4
	}

	present := 0
	for _, token := range tokens {
		if strings.Contains(name, token) {
			present++
		}
	}
	if present == len(tokens) {
		confidence += 0.3
	} else {
		confidence += 0.2 * float64(present) / float64(len(tokens))
	}

	if tokensInOrder(name, tokens) {
		confidence += 0.1
	}

	switch {
	case fund.Popularity >= 80:
		confidence += 0.05
	case fund.Popularity >= 50:
		confidence += 0.03
	}
	switch {
	case fund.AUM >= 10000:
		confidence += 0.05
	case fund.AUM >= 1000:
		confidence += 0.02
	}

	if confidence > 1 {
		return 1
	}
	return confidence
}

func tokensInOrder(name string, tokens []string) bool {
	pos := 0
	for _, token := range tokens {
		idx := strings.Index(name[pos:], token)
		if idx < 0 {
			return false
		}
		pos += idx + len(token)
	}
	return true
}

// highlightName wraps every name word that starts with a matched token in
// <mark> tags. Working word by word keeps the markup flat even when tokens
// overlap.
func highlightName(name string, tokens []string) string {
	if len(tokens) == 0 {
		return name
	}
	lowered := make([]string, len(tokens))
	for i, t := range tokens {
		lowered[i] = strings.ToLower(t)
	}
	sort.Slice(lowered, func(i, j int) bool { return len(lowered[i]) > len(lowered[j]) })

	words := strings.Fields(name)
	for i, word := range words {
		lw := strings.ToLower(word)
		for _, token := range lowered {
			if token != "" && (strings.HasPrefix(lw, token) || strings.HasPrefix(token, lw)) {
				words[i] = "<mark>" + word + "</mark>"
				break
			}
		}
	}
	return strings.Join(words, " ")
}
