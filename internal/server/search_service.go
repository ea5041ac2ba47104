// file: internal/server/search_service.go
// version: 1.2.0
// guid: 2e3f4a5b-6c7d-8e9f-0a1b-2c3d4e5f6a7b

package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jdfalk/fund-discovery/internal/cache"
	"github.com/jdfalk/fund-discovery/internal/catalog"
	"github.com/jdfalk/fund-discovery/internal/config"
	"github.com/jdfalk/fund-discovery/internal/models"
	"github.com/jdfalk/fund-discovery/internal/search"
)

// SearchService fronts the match engine with caching and per-caller
// debouncing. Cache failures degrade to recomputation and never surface to
// the caller.
type SearchService struct {
	engine    *search.Engine
	store     catalog.Store
	debouncer *search.Debouncer[*search.SuggestResult]

	searchCache  *cache.Adapter
	suggestCache *cache.Adapter

	searchTTL    time.Duration
	suggestTTL   time.Duration
	storeTimeout time.Duration
}

// NewSearchService wires the search engine, debouncer, and caches.
func NewSearchService(store catalog.Store, cfg config.Config, backend cache.Backend) (*SearchService, error) {
	engine, err := search.NewEngine(store, search.DefaultTiers())
	if err != nil {
		return nil, err
	}

	delay := cfg.DebounceDelay
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	timeout := cfg.StoreTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &SearchService{
		engine:       engine,
		store:        store,
		debouncer:    search.NewDebouncer[*search.SuggestResult](delay),
		searchCache:  cache.NewAdapter("search", backend),
		suggestCache: cache.NewAdapter("suggest", backend),
		searchTTL:    cfg.SearchCacheTTL,
		suggestTTL:   cfg.SuggestCacheTTL,
		storeTimeout: timeout,
	}, nil
}

// storeCtx bounds a catalog-facing call: a slow backend times out instead of
// stalling the request.
func (s *SearchService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

// Search runs a cached fund search.
func (s *SearchService) Search(ctx context.Context, raw string, opts search.Options) (*search.Result, error) {
	normalized := search.NormalizeQuery(raw, 1)
	key := cache.SearchKey(normalized.Query, opts.Category, opts.MinAum,
		opts.EnableFuzzy, opts.BoostPopular, opts.Limit)

	var cached search.Result
	if s.searchCache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	sl := serviceLoggerFor(ctx, "search")
	sl.LogOperation("search", map[string]any{"query": normalized.Query, "limit": opts.Limit})

	runCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	result, err := s.engine.Search(runCtx, raw, opts)
	if err != nil {
		sl.LogError("search", err)
		return nil, err
	}
	s.searchCache.SetJSON(ctx, key, result, s.searchTTL)
	return result, nil
}

// Suggest serves autocomplete for one caller. Rapid repeats of the same
// (caller, query) pair collapse into a single engine run via the debouncer;
// distinct callers and distinct queries never wait on each other. A cache
// hit skips the debounce window entirely.
func (s *SearchService) Suggest(ctx context.Context, caller, raw string, limit int) (*search.SuggestResult, error) {
	normalized := search.NormalizeQuery(raw, 2)
	if normalized.TooShort {
		return &search.SuggestResult{Query: normalized.Original, Suggestions: []search.Suggestion{}}, nil
	}

	key := cache.SuggestKey(normalized.Query, limit)
	var cached search.SuggestResult
	if s.suggestCache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	sl := serviceLoggerFor(ctx, "search")
	debounceKey := fmt.Sprintf("%s|%s|%d", caller, normalized.Query, limit)
	sl.LogDebounceWait(debounceKey)
	result, err := s.debouncer.Do(ctx, debounceKey, func() (*search.SuggestResult, error) {
		// Detached context: the computation serves every waiter, not just
		// the caller that happened to trigger it.
		runCtx, cancel := context.WithTimeout(context.Background(), s.storeTimeout)
		defer cancel()
		return s.engine.Suggest(runCtx, raw, limit)
	})
	if err != nil {
		sl.LogError("suggest", err)
		return nil, err
	}
	s.suggestCache.SetJSON(ctx, key, result, s.suggestTTL)
	return result, nil
}

// TagSearchResult is the response body for tag-based discovery.
type TagSearchResult struct {
	Tags    []string             `json:"tags"`
	Results []models.FundSummary `json:"results"`
	Count   int                  `json:"count"`
}

// ByTags lists active funds carrying any of the given tags, most popular
// first.
func (s *SearchService) ByTags(ctx context.Context, tags []string, limit int) (*TagSearchResult, error) {
	key := cache.TagKey(tags, limit)
	var cached TagSearchResult
	if s.searchCache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	sl := serviceLoggerFor(ctx, "search")
	sl.LogOperation("by_tags", map[string]any{"tags": tags, "limit": limit})

	runCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	funds, err := s.store.GetFundsByTags(runCtx, tags, limit)
	if err != nil {
		sl.LogError("by_tags", err)
		return nil, fmt.Errorf("catalog read failed: %w", err)
	}

	result := &TagSearchResult{
		Tags:    tags,
		Results: make([]models.FundSummary, len(funds)),
		Count:   len(funds),
	}
	for i := range funds {
		result.Results[i] = funds[i].Summary()
	}
	s.searchCache.SetJSON(ctx, key, result, s.searchTTL)
	return result, nil
}
