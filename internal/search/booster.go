// file: internal/search/booster.go
// version: 1.0.0
// guid: c9d0e1f2-a3b4-5c6d-7e8f-9a0b1c2d3e4f

package search

import "math"

// MaxBoostFactor caps the combined AUM/popularity boost so relevance still
// dominates ranking: a tag match can never out-rank a prefix match purely on
// fund size.
const MaxBoostFactor = 0.3

// BoostFactor computes the additive boost for a fund from its AUM (in
// crores) and popularity score. Both inputs use log scaling so the factor
// grows slowly and very large funds do not swamp the relevance score.
func BoostFactor(aum, popularity float64) float64 {
	if aum < 0 {
		aum = 0
	}
	if popularity < 0 {
		popularity = 0
	}
	factor := math.Log10(1+aum)/50 + math.Log10(1+popularity)/100
	if factor > MaxBoostFactor {
		return MaxBoostFactor
	}
	return factor
}

// Boost applies the popularity boost to a relevance score.
func Boost(score, aum, popularity float64) float64 {
	return score * (1 + BoostFactor(aum, popularity))
}
