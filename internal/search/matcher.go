// file: internal/search/matcher.go
// version: 1.2.0
// guid: b8c9d0e1-f2a3-4b5c-6d7e-8f9a0b1c2d3e

package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jdfalk/fund-discovery/internal/catalog"
	"github.com/jdfalk/fund-discovery/internal/metrics"
	"github.com/jdfalk/fund-discovery/internal/models"
	"github.com/jdfalk/fund-discovery/internal/similarity"
)

// Options control a single search request.
type Options struct {
	Limit        int
	Category     string
	MinAum       float64
	EnableFuzzy  bool
	BoostPopular bool
}

// ScoredResult is one fund in a search response, carrying the winning layer
// and its score. Scores stay unrounded internally; rounding happens at the
// serialization boundary only.
type ScoredResult struct {
	FundID        string   `json:"fund_id"`
	Name          string   `json:"name"`
	FundHouse     string   `json:"fund_house"`
	Category      string   `json:"category"`
	SubCategory   string   `json:"sub_category"`
	FundType      string   `json:"fund_type"`
	CurrentNav    float64  `json:"current_nav"`
	AUM           float64  `json:"aum"`
	Popularity    float64  `json:"popularity"`
	Tags          []string `json:"tags"`
	Score         float64  `json:"score"`
	MatchType     string   `json:"match_type"`
	MatchedTokens []string `json:"matched_tokens,omitempty"`
}

// LayerStat reports how many final results each layer produced.
type LayerStat struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Result is a full search response body.
type Result struct {
	Query   string         `json:"query"`
	Results []ScoredResult `json:"results"`
	Count   int            `json:"count"`
	Layers  []LayerStat    `json:"layers"`
}

// Engine runs the multi-layer matcher against the fund catalog.
type Engine struct {
	store       catalog.Store
	tiers       Tiers
	invocations atomic.Int64
}

// NewEngine creates a search engine over the given catalog store.
func NewEngine(store catalog.Store, tiers Tiers) (*Engine, error) {
	if err := tiers.Validate(); err != nil {
		return nil, fmt.Errorf("invalid score tiers: %w", err)
	}
	return &Engine{store: store, tiers: tiers}, nil
}

// Invocations reports how many times the matcher has actually run. Queries
// rejected as too short never increment it.
func (e *Engine) Invocations() int64 {
	return e.invocations.Load()
}

// Search runs the layered match for a raw query. Short queries yield an
// empty Result without touching the catalog; an empty catalog yields an
// empty Result; a catalog read failure propagates.
func (e *Engine) Search(ctx context.Context, raw string, opts Options) (*Result, error) {
	normalized := NormalizeQuery(raw, e.tiers.MinQueryLength)
	result := &Result{Query: normalized.Original, Results: []ScoredResult{}, Layers: []LayerStat{}}
	if normalized.TooShort {
		return result, nil
	}

	start := time.Now()
	e.invocations.Add(1)
	metrics.IncMatcherInvocation()
	defer func() { metrics.ObserveSearchDuration("search", time.Since(start)) }()

	funds, err := e.store.GetAllActiveFunds(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog read failed: %w", err)
	}

	// Pre-filter the candidate pool; filters apply before scoring, never
	// after truncation.
	pool := funds[:0:0]
	for _, fund := range funds {
		if opts.Category != "" && !strings.EqualFold(fund.Category, opts.Category) {
			continue
		}
		if opts.MinAum > 0 && fund.AUM < opts.MinAum {
			continue
		}
		pool = append(pool, fund)
	}

	merged := e.matchPool(normalized, pool, opts.EnableFuzzy)

	results := make([]ScoredResult, 0, len(merged))
	for _, c := range merged {
		fund := &pool[c.fundIndex]
		score := c.score
		if opts.BoostPopular {
			score = Boost(score, fund.AUM, fund.Popularity)
		}
		results = append(results, ScoredResult{
			FundID:        fund.FundID,
			Name:          fund.Name,
			FundHouse:     fund.FundHouse,
			Category:      fund.Category,
			SubCategory:   fund.SubCategory,
			FundType:      fund.FundType,
			CurrentNav:    fund.CurrentNav,
			AUM:           fund.AUM,
			Popularity:    fund.Popularity,
			Tags:          fund.Tags,
			Score:         score,
			MatchType:     c.layer.String(),
			MatchedTokens: tokensFor(c.token),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Popularity != results[j].Popularity {
			return results[i].Popularity > results[j].Popularity
		}
		return results[i].Name < results[j].Name
	})

	limit := clampLimit(opts.Limit, 20, 100)
	if len(results) > limit {
		results = results[:limit]
	}

	result.Results = results
	result.Count = len(results)
	result.Layers = layerStats(results)
	return result, nil
}

// matchPool evaluates every layer for every fund in the pool and merges
// candidates by fund, keeping the highest-scoring layer. Scores, not layer
// order, decide precedence: a fuzzy hit beats a tag hit even though the tag
// layer runs later.
func (e *Engine) matchPool(normalized Normalized, pool []models.Fund, enableFuzzy bool) []candidate {
	intents := DetectIntent(normalized.Query)

	best := make(map[string]candidate)
	keep := func(fund *models.Fund, c candidate) {
		metrics.IncLayerMatch(c.layer.String())
		if prev, ok := best[fund.FundID]; !ok || c.score > prev.score {
			best[fund.FundID] = c
		}
	}

	for i := range pool {
		fund := &pool[i]
		for _, token := range matchableTokens(fund) {
			lower := strings.ToLower(token)

			if lower == normalized.Query {
				keep(fund, candidate{fundIndex: i, layer: LayerExact, score: e.tiers.Exact, token: token})
				continue
			}

			if strings.HasPrefix(lower, normalized.Query) {
				score := e.tiers.PrefixScore(len(lower) - len(normalized.Query))
				keep(fund, candidate{fundIndex: i, layer: LayerPrefix, score: score, token: token})
				continue
			}

			if enableFuzzy {
				if c, ok := e.fuzzyCandidate(normalized.Query, lower, i); ok {
					c.token = token
					keep(fund, c)
				}
			}
		}

		if tagScore, token, ok := e.tagCandidate(normalized.Query, intents, fund); ok {
			keep(fund, candidate{fundIndex: i, layer: LayerTag, score: tagScore, token: token})
		}
	}

	merged := make([]candidate, 0, len(best))
	for _, c := range best {
		merged = append(merged, c)
	}
	return merged
}

// fuzzyCandidate scores one token fuzzily. Only tokens within the length
// window are compared at all, and only edit distances within the bound are
// accepted.
func (e *Engine) fuzzyCandidate(query, token string, fundIndex int) (candidate, bool) {
	lenDiff := len(token) - len(query)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > e.tiers.FuzzyLenWindow {
		return candidate{}, false
	}

	dist, ok := similarity.BoundedLevenshtein(query, token, e.tiers.MaxEditDistance)
	if !ok || dist == 0 {
		return candidate{}, false
	}

	maxLen := len(query)
	if len(token) > maxLen {
		maxLen = len(token)
	}
	return candidate{
		fundIndex: fundIndex,
		layer:     LayerFuzzy,
		score:     e.tiers.FuzzyScore(dist, maxLen),
	}, true
}

// tagCandidate checks the tag fallback layer: the query itself, or any of
// its detected intent tags, appears in the fund's tag set.
func (e *Engine) tagCandidate(query string, intents []string, fund *models.Fund) (float64, string, bool) {
	for _, tag := range fund.Tags {
		lower := strings.ToLower(tag)
		if lower == query {
			return e.tiers.Tag, tag, true
		}
		for _, intent := range intents {
			if lower == intent {
				return e.tiers.Tag, tag, true
			}
		}
	}
	return 0, "", false
}

// matchableTokens returns the strings a fund can match on: its full name,
// each word of the name, and its search terms.
func matchableTokens(fund *models.Fund) []string {
	tokens := make([]string, 0, len(fund.SearchTerms)+4)
	tokens = append(tokens, fund.Name)
	tokens = append(tokens, strings.Fields(fund.Name)...)
	tokens = append(tokens, fund.SearchTerms...)
	return tokens
}

func tokensFor(token string) []string {
	if token == "" {
		return nil
	}
	return []string{token}
}

func layerStats(results []ScoredResult) []LayerStat {
	counts := make(map[string]int)
	for _, r := range results {
		counts[r.MatchType]++
	}
	stats := make([]LayerStat, 0, len(counts))
	for _, layer := range Layers {
		if n, ok := counts[layer.String()]; ok {
			stats = append(stats, LayerStat{Type: layer.String(), Count: n})
		}
	}
	return stats
}

// clampLimit bounds a caller-supplied limit to [1,max], applying def when
// unset.
func clampLimit(limit, def, max int) int {
	if limit == 0 {
		limit = def
	}
	if limit < 1 {
		return 1
	}
	if limit > max {
		return max
	}
	return limit
}
