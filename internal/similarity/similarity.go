// file: internal/similarity/similarity.go
// version: 1.2.0
// guid: 7c4d1e9a-2b8f-4a6c-9d3e-0f5b8a1c7e2d

package similarity

import (
	"math"
	"strings"
	"unicode"
)

// LevenshteinDistance computes the edit distance between two strings.
func LevenshteinDistance(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	// Single-row DP
	prev := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr := make([]int, lb+1)
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, min(prev[j]+1, prev[j-1]+cost))
		}
		prev = curr
	}
	return prev[lb]
}

// BoundedLevenshtein computes the edit distance between a and b, giving up
// once the distance is known to exceed maxDist. Returns (distance, true) when
// the distance is <= maxDist, otherwise (0, false). The length pre-check makes
// the common reject case O(1).
func BoundedLevenshtein(a, b string, maxDist int) (int, bool) {
	la, lb := len(a), len(b)
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	if diff > maxDist {
		return 0, false
	}
	d := LevenshteinDistance(a, b)
	if d > maxDist {
		return 0, false
	}
	return d, true
}

// Jaccard returns |A ∩ B| / |A ∪ B| for two string sets. Empty union yields 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Cosine returns the cosine similarity of two weight vectors keyed by
// dimension name. Missing dimensions count as 0. A zero-magnitude vector
// yields 0, never NaN.
func Cosine(a, b map[string]float64) float64 {
	var dot, magA, magB float64
	for k, va := range a {
		magA += va * va
		if vb, ok := b[k]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		magB += vb * vb
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Pearson computes the Pearson correlation coefficient of two equal-length
// series. Returns (0, false) for mismatched/empty input or zero variance.
func Pearson(x, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) == 0 {
		return 0, false
	}
	n := float64(len(x))

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= n
	meanY /= n

	var num, denX, denY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		num += dx * dy
		denX += dx * dx
		denY += dy * dy
	}

	den := math.Sqrt(denX * denY)
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// NGrams returns the distinct n-grams of every word in text for sizes
// minN..maxN. Used for mid-token prefix matching in autocomplete.
func NGrams(text string, minN, maxN int) []string {
	seen := make(map[string]struct{})
	var grams []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		top := maxN
		if len(word) < top {
			top = len(word)
		}
		for n := minN; n <= top; n++ {
			for i := 0; i+n <= len(word); i++ {
				g := word[i : i+n]
				if _, ok := seen[g]; !ok {
					seen[g] = struct{}{}
					grams = append(grams, g)
				}
			}
		}
	}
	return grams
}

// Normalize lowercases and strips non-alphanumeric characters except spaces.
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
