// file: internal/search/suggest_test.go
// version: 1.1.0
// guid: c5d6e7f8-a9b0-1c2d-3e4f-5a6b7c8d9e0f

package search

import (
	"context"
	"strings"
	"testing"
)

func suggestionIDs(result *SuggestResult) []string {
	ids := make([]string, len(result.Suggestions))
	for i, s := range result.Suggestions {
		ids[i] = s.FundID
	}
	return ids
}

func findSuggestion(result *SuggestResult, fundID string) (Suggestion, bool) {
	for _, s := range result.Suggestions {
		if s.FundID == fundID {
			return s, true
		}
	}
	return Suggestion{}, false
}

func TestSuggestShortQueryEmpty(t *testing.T) {
	counting := &countingStore{Store: fixtureStore(t)}
	engine := newTestEngine(t, counting)

	result, err := engine.Suggest(context.Background(), "g", 10)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if result.Count != 0 {
		t.Errorf("short query must suggest nothing, got %v", suggestionIDs(result))
	}
	if counting.reads != 0 {
		t.Errorf("short query must not touch the catalog, saw %d reads", counting.reads)
	}
}

func TestSuggestSingleWordPrefix(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))

	result, err := engine.Suggest(context.Background(), "hdf", 10)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	ids := suggestionIDs(result)
	if len(ids) != 2 {
		t.Fatalf("want the two HDFC funds, got %v", ids)
	}

	s, _ := findSuggestion(result, "F001")
	if !strings.Contains(s.HighlightedName, "<mark>HDFC</mark>") {
		t.Errorf("highlighted name %q must mark the matched word", s.HighlightedName)
	}
	if s.Confidence <= 0 || s.Confidence > 1 {
		t.Errorf("confidence %v out of range (0,1]", s.Confidence)
	}
}

func TestSuggestSingleWordSubsequence(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))

	// "blchp" is 3 edits from "bluechip", past the fuzzy bound, but still a
	// subsequence of it.
	result, err := engine.Suggest(context.Background(), "blchp", 10)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	s, ok := findSuggestion(result, "F005")
	if !ok {
		t.Fatalf("subsequence match missing, got %v", suggestionIDs(result))
	}
	if s.Score < DefaultTiers().FuzzyFloor {
		t.Errorf("subsequence score %v below floor", s.Score)
	}
}

func TestSuggestCommodityIntentBoost(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))

	// "precious" only reaches the gold ETF through intent detection; the
	// commodity boost lifts it above the plain tag tier.
	result, err := engine.Suggest(context.Background(), "precious", 10)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	s, ok := findSuggestion(result, "F003")
	if !ok {
		t.Fatalf("gold ETF missing, got %v", suggestionIDs(result))
	}
	if s.Score < DefaultTiers().Tag*commodityBoost {
		t.Errorf("commodity tag score %v, want at least %v", s.Score, DefaultTiers().Tag*commodityBoost)
	}
}

func TestSuggestTwoWordsBrandStrategy(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))

	result, err := engine.Suggest(context.Background(), "hdfc small", 10)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(result.Suggestions) == 0 || result.Suggestions[0].FundID != "F001" {
		t.Fatalf("want HDFC Small Cap first, got %v", suggestionIDs(result))
	}
	s := result.Suggestions[0]
	if !containsString(s.MatchedTokens, "hdfc") || !containsString(s.MatchedTokens, "small") {
		t.Errorf("matched tokens %v must carry both query words", s.MatchedTokens)
	}
	if !strings.Contains(s.HighlightedName, "<mark>HDFC</mark>") ||
		!strings.Contains(s.HighlightedName, "<mark>Small</mark>") {
		t.Errorf("highlighted name %q must mark both words", s.HighlightedName)
	}
}

func TestSuggestMultiWordFullCoverage(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))

	result, err := engine.Suggest(context.Background(), "hdfc small cap", 10)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(result.Suggestions) == 0 || result.Suggestions[0].FundID != "F001" {
		t.Fatalf("want full-coverage fund first, got %v", suggestionIDs(result))
	}
	if result.Suggestions[0].Confidence < 0.8 {
		t.Errorf("full in-order name match confidence = %v, want high", result.Suggestions[0].Confidence)
	}
}

func TestSuggestLimitClamp(t *testing.T) {
	engine := newTestEngine(t, fixtureStore(t))

	result, err := engine.Suggest(context.Background(), "hdfc", 1)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if result.Count != 1 || len(result.Suggestions) != 1 {
		t.Errorf("limit 1 must yield one suggestion, got %d", result.Count)
	}
}

func TestSuggestStoreErrorPropagates(t *testing.T) {
	store := fixtureStore(t)
	store.ReadErr = context.DeadlineExceeded
	engine := newTestEngine(t, store)

	if _, err := engine.Suggest(context.Background(), "hdfc", 10); err == nil {
		t.Error("catalog failure must propagate")
	}
}

func TestHighlightNameFlatMarkup(t *testing.T) {
	got := highlightName("HDFC Small Cap Fund", []string{"small", "sm"})
	if strings.Contains(got, "<mark><mark>") {
		t.Errorf("overlapping tokens must not nest marks: %q", got)
	}
	if !strings.Contains(got, "<mark>Small</mark>") {
		t.Errorf("longest token must win: %q", got)
	}
}

func TestSuggestionConfidenceSignals(t *testing.T) {
	store := fixtureStore(t)
	fund, err := store.GetFundByID(context.Background(), "F001")
	if err != nil {
		t.Fatalf("fixture fund: %v", err)
	}

	full := suggestionConfidence([]string{"hdfc", "small", "cap"}, fund)
	partial := suggestionConfidence([]string{"hdfc", "zzz"}, fund)
	if full <= partial {
		t.Errorf("full token coverage %v must beat partial %v", full, partial)
	}
	if full > 1 {
		t.Errorf("confidence %v must cap at 1", full)
	}
}
