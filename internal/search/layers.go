// file: internal/search/layers.go
// version: 1.0.0
// guid: f6a7b8c9-d0e1-2f3a-4b5c-6d7e8f9a0b1c

package search

import "fmt"

// LayerKind identifies one of the four match layers. The set is closed:
// scoring, merging, and serialization all switch over these values.
type LayerKind int

const (
	LayerExact LayerKind = iota
	LayerPrefix
	LayerFuzzy
	LayerTag
)

// String returns the wire name of the layer.
func (k LayerKind) String() string {
	switch k {
	case LayerExact:
		return "exact"
	case LayerPrefix:
		return "prefix"
	case LayerFuzzy:
		return "fuzzy"
	case LayerTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Layers lists all match layers in execution order.
var Layers = []LayerKind{LayerExact, LayerPrefix, LayerFuzzy, LayerTag}

// Tiers holds every scoring constant for the match layers.
//
// Invariant: tiers must stay strictly ordered so that layer scores never
// cross: Tag < FuzzyFloor <= fuzzy scores < PrefixMin <= prefix scores
// <= PrefixMax < Exact. TestTierOrdering asserts this for the defaults.
type Tiers struct {
	Exact      float64 // full-string/token equality
	PrefixMax  float64 // prefix match with no length difference
	PrefixStep float64 // penalty per character of length difference
	PrefixCap  int     // length-difference cap for the penalty
	FuzzyFloor float64 // minimum accepted fuzzy score
	Tag        float64 // tag/intent fallback score

	MaxEditDistance int // Levenshtein acceptance bound
	FuzzyLenWindow  int // only fuzzy-compare tokens within +/- this length
	MinQueryLength  int // shorter queries return empty without matching
}

// DefaultTiers returns the production scoring constants.
func DefaultTiers() Tiers {
	return Tiers{
		Exact:           1.0,
		PrefixMax:       0.95,
		PrefixStep:      0.05,
		PrefixCap:       4,
		FuzzyFloor:      0.5,
		Tag:             0.4,
		MaxEditDistance: 2,
		FuzzyLenWindow:  3,
		MinQueryLength:  2,
	}
}

// Validate checks the tier ordering invariant.
func (t Tiers) Validate() error {
	prefixMin := t.PrefixMax - t.PrefixStep*float64(t.PrefixCap)
	switch {
	case t.Tag >= t.FuzzyFloor:
		return fmt.Errorf("tag tier %v must stay below fuzzy floor %v", t.Tag, t.FuzzyFloor)
	case t.FuzzyFloor >= prefixMin:
		return fmt.Errorf("fuzzy floor %v must stay below lowest prefix score %v", t.FuzzyFloor, prefixMin)
	case t.PrefixMax >= t.Exact:
		return fmt.Errorf("prefix tier %v must stay below exact tier %v", t.PrefixMax, t.Exact)
	case t.MaxEditDistance < 1:
		return fmt.Errorf("max edit distance must be at least 1")
	case t.MinQueryLength < 1:
		return fmt.Errorf("min query length must be at least 1")
	}
	return nil
}

// PrefixScore scores a prefix match: 0.95 - 0.05 * min(cap, lenDiff).
func (t Tiers) PrefixScore(lenDiff int) float64 {
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > t.PrefixCap {
		lenDiff = t.PrefixCap
	}
	return t.PrefixMax - t.PrefixStep*float64(lenDiff)
}

// FuzzyScore scores an accepted fuzzy match from its edit distance and the
// longer of the two string lengths, floor-clamped so fuzzy scores stay in
// their tier.
func (t Tiers) FuzzyScore(distance, maxLen int) float64 {
	if maxLen <= 0 {
		return t.FuzzyFloor
	}
	score := 1 - float64(distance)/float64(maxLen)
	if score < t.FuzzyFloor {
		return t.FuzzyFloor
	}
	return score
}

// candidate is one layer's claim on a fund during matching. Many candidates
// for the same fund are merged into a single result, keeping the
// highest-scoring layer.
type candidate struct {
	fundIndex int
	layer     LayerKind
	score     float64
	token     string
}
