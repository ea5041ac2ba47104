// file: internal/search/matcher_test.go
// version: 1.1.0
// guid: b4c5d6e7-f8a9-0b1c-2d3e-4f5a6b7c8d9e

package search

import (
	"context"
	"errors"
	"testing"

	"github.com/jdfalk/fund-discovery/internal/catalog"
	"github.com/jdfalk/fund-discovery/internal/models"
)

// countingStore tracks catalog reads so tests can assert the matcher never
// touches the store for rejected queries.
type countingStore struct {
	catalog.Store
	reads int
}

func (c *countingStore) GetAllActiveFunds(ctx context.Context) ([]models.Fund, error) {
	c.reads++
	return c.Store.GetAllActiveFunds(ctx)
}

func fixtureStore(t *testing.T) *catalog.MemoryStore {
	t.Helper()
	store := catalog.NewMemoryStore()
	funds := []models.Fund{
		{
			FundID: "F001", Name: "HDFC Small Cap Fund", FundHouse: "HDFC Mutual Fund",
			Category: "Equity", SubCategory: "Small Cap", FundType: "open",
			Tags: []string{"equity", "small cap"}, SearchTerms: []string{"hdfc", "smallcap"},
			CurrentNav: 112.5, AUM: 28000, Popularity: 90, IsActive: true,
		},
		{
			FundID: "F002", Name: "HDFC Mid Cap Opportunities Fund", FundHouse: "HDFC Mutual Fund",
			Category: "Equity", SubCategory: "Mid Cap", FundType: "open",
			Tags: []string{"equity"}, SearchTerms: []string{"hdfc", "midcap"},
			CurrentNav: 140.2, AUM: 52000, Popularity: 85, IsActive: true,
		},
		{
			FundID: "F003", Name: "Nippon India Gold ETF", FundHouse: "Nippon India",
			Category: "Commodity", SubCategory: "Gold", FundType: "etf",
			Tags: []string{"gold", "commodity"}, SearchTerms: []string{"goldbees"},
			CurrentNav: 55.8, AUM: 9000, Popularity: 70, IsActive: true,
		},
		{
			FundID: "F004", Name: "SBI Nifty Index Fund", FundHouse: "SBI Mutual Fund",
			Category: "Equity", SubCategory: "Index", FundType: "open",
			Tags: []string{"index"}, SearchTerms: []string{"sbi", "nifty50"},
			CurrentNav: 180.4, AUM: 6000, Popularity: 60, IsActive: true,
		},
		{
			FundID: "F005", Name: "Axis Bluechip Fund", FundHouse: "Axis Mutual Fund",
			Category: "Equity", SubCategory: "Large Cap", FundType: "open",
			Tags: []string{"equity", "large cap"}, SearchTerms: []string{"axis", "bluechip"},
			CurrentNav: 48.3, AUM: 33000, Popularity: 80, IsActive: true,
		},
		{
			FundID: "F006", Name: "HDFC Closed Legacy Fund", FundHouse: "HDFC Mutual Fund",
			Category: "Equity", SubCategory: "Large Cap", FundType: "closed",
			Tags: []string{"equity"}, SearchTerms: []string{"hdfc"},
			CurrentNav: 10.0, AUM: 100, Popularity: 5, IsActive: false,
		},
	}
	for i := range funds {
		if err := store.UpsertFund(context.Background(), &funds[i]); err != nil {
			t.Fatalf("seed fund %s: %v", funds[i].FundID, err)
		}
	}
	return store
}

func newTestEngine(t *testing.T, store catalog.Store) *Engine {
	t.Helper()
	engine, err := NewEngine(store, DefaultTiers())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func TestSearchShortQuerySkipsMatcher(t *testing.T) {
	counting := &countingStore{Store: fixtureStore(t)}
	engine := newTestEngine(t, counting)

	result, err := engine.Search(context.Background(), "h", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Results) != 0 || result.Count != 0 {
		t.Errorf("short query must return empty, got %d results", len(result.Results))
	}
	if counting.reads != 0 {
		t.Errorf("short query must not touch the catalog, saw %d reads", counting.reads)
	}
	if engine.Invocations() != 0 {
		t.Errorf("short query must not count as a matcher invocation, saw %d", engine.Invocations())
	}
}

func TestSearchExactOnSearchTerm(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))

	result, err := engine.Search(context.Background(), "hdfc", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Results) != 2 {
		t.Fatalf("want the two active HDFC funds, got %d", len(result.Results))
	}
	for _, r := range result.Results {
		if r.MatchType != "exact" || r.Score != 1.0 {
			t.Errorf("fund %s: matchType=%s score=%v, want exact 1.0", r.FundID, r.MatchType, r.Score)
		}
	}
	if engine.Invocations() != 1 {
		t.Errorf("invocations = %d, want 1", engine.Invocations())
	}
}

func TestSearchInactiveExcluded(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))
	result, err := engine.Search(context.Background(), "hdfc", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range result.Results {
		if r.FundID == "F006" {
			t.Error("inactive fund must never appear in results")
		}
	}
}

func TestSearchPrefixPenalty(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))

	result, err := engine.Search(context.Background(), "nif", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Results) != 1 || result.Results[0].FundID != "F004" {
		t.Fatalf("want only the Nifty fund, got %+v", result.Results)
	}
	// "nifty" is 2 chars longer than "nif": 0.95 - 2*0.05
	if got := result.Results[0].Score; got != 0.85 {
		t.Errorf("prefix score = %v, want 0.85", got)
	}
	if result.Results[0].MatchType != "prefix" {
		t.Errorf("matchType = %s, want prefix", result.Results[0].MatchType)
	}
}

func TestSearchFuzzyTypo(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))

	result, err := engine.Search(context.Background(), "axix", Options{EnableFuzzy: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Results) != 1 || result.Results[0].FundID != "F005" {
		t.Fatalf("want the Axis fund via fuzzy, got %+v", result.Results)
	}
	r := result.Results[0]
	if r.MatchType != "fuzzy" {
		t.Errorf("matchType = %s, want fuzzy", r.MatchType)
	}
	// One edit over length 4: 1 - 1/4
	if r.Score != 0.75 {
		t.Errorf("fuzzy score = %v, want 0.75", r.Score)
	}
}

func TestSearchFuzzyDisabled(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))
	result, err := engine.Search(context.Background(), "axix", Options{EnableFuzzy: false})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Results) != 0 {
		t.Errorf("fuzzy disabled must drop typo matches, got %+v", result.Results)
	}
}

func TestSearchTagFallback(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))

	// "precious" maps to the gold intent but matches no name or term.
	result, err := engine.Search(context.Background(), "precious", Options{EnableFuzzy: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Results) != 1 || result.Results[0].FundID != "F003" {
		t.Fatalf("want the gold ETF via tag intent, got %+v", result.Results)
	}
	r := result.Results[0]
	if r.MatchType != "tag" || r.Score != 0.4 {
		t.Errorf("matchType=%s score=%v, want tag 0.4", r.MatchType, r.Score)
	}
}

func TestSearchMergeKeepsHighestLayer(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))

	// "gold" hits F003 both as an exact name word and as a tag; the merged
	// result must carry the exact layer.
	result, err := engine.Search(context.Background(), "gold", Options{EnableFuzzy: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	seen := 0
	for _, r := range result.Results {
		if r.FundID == "F003" {
			seen++
			if r.MatchType != "exact" || r.Score != 1.0 {
				t.Errorf("merged match = %s %v, want exact 1.0", r.MatchType, r.Score)
			}
		}
	}
	if seen != 1 {
		t.Errorf("fund F003 appeared %d times, want exactly once", seen)
	}
}

func TestSearchFiltersBeforeScoring(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))

	result, err := engine.Search(context.Background(), "hdfc", Options{Category: "Commodity"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Results) != 0 {
		t.Errorf("category filter must exclude all HDFC funds, got %+v", result.Results)
	}

	result, err = engine.Search(context.Background(), "hdfc", Options{MinAum: 30000})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Results) != 1 || result.Results[0].FundID != "F002" {
		t.Errorf("minAum filter should leave only F002, got %+v", result.Results)
	}
}

func TestSearchBoostPreservesExactFirst(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))

	result, err := engine.Search(context.Background(), "hdfc", Options{BoostPopular: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Results) != 2 {
		t.Fatalf("want 2 results, got %d", len(result.Results))
	}
	for _, r := range result.Results {
		if r.Score <= 1.0 {
			t.Errorf("boosted exact score for %s = %v, want > 1.0", r.FundID, r.Score)
		}
		if r.Score > 1.0*(1+MaxBoostFactor) {
			t.Errorf("boost for %s exceeds cap: %v", r.FundID, r.Score)
		}
	}
	// F002 has more AUM; F001 has more popularity. Either may lead, but
	// ordering must be by boosted score descending.
	if result.Results[0].Score < result.Results[1].Score {
		t.Error("results not sorted by score descending")
	}
}

func TestSearchLayerStats(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))
	result, err := engine.Search(context.Background(), "hdfc", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Layers) != 1 || result.Layers[0].Type != "exact" || result.Layers[0].Count != 2 {
		t.Errorf("layer stats = %+v, want [{exact 2}]", result.Layers)
	}
}

func TestSearchStoreErrorPropagates(t *testing.T) {
	store := fixtureStore(t)
	store.ReadErr = errors.New("catalog offline")
	engine := newTestEngine(t, store)

	_, err := engine.Search(context.Background(), "hdfc", Options{})
	if err == nil {
		t.Fatal("catalog failure must propagate, got nil error")
	}
}

func TestSearchEmptyCatalog(t *testing.T) {
	engine := newTestEngine(t, catalog.NewMemoryStore())
	result, err := engine.Search(context.Background(), "hdfc", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Count != 0 {
		t.Errorf("empty catalog must return empty result, got %d", result.Count)
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct {
		in, def, max, want int
	}{
		{0, 20, 100, 20},
		{-3, 20, 100, 1},
		{500, 20, 100, 100},
		{7, 20, 100, 7},
		{0, 10, 20, 10},
		{50, 10, 20, 20},
	}
	for _, tc := range cases {
		if got := clampLimit(tc.in, tc.def, tc.max); got != tc.want {
			t.Errorf("clampLimit(%d,%d,%d) = %d, want %d", tc.in, tc.def, tc.max, got, tc.want)
		}
	}
}

func TestNewEngineRejectsBadTiers(t *testing.T) {
	tiers := DefaultTiers()
	tiers.Tag = 0.9
	if _, err := NewEngine(catalog.NewMemoryStore(), tiers); err == nil {
		t.Error("NewEngine must reject invalid tiers")
	}
}
