// file: internal/similarity/similarity_test.go
// version: 1.1.0
// guid: 8d5e2f0b-3c9a-4b7d-8e4f-1a6c9b2d8f3e

package similarity

import (
	"math"
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"hdfc", "hdfc", 0},
		{"hdfc", "hdfv", 1},
		{"HDFC", "hdfc", 0}, // case-insensitive
	}
	for _, c := range cases {
		if got := LevenshteinDistance(c.a, c.b); got != c.want {
			t.Errorf("LevenshteinDistance(%q,%q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestBoundedLevenshtein(t *testing.T) {
	if d, ok := BoundedLevenshtein("nifty", "nifti", 2); !ok || d != 1 {
		t.Fatalf("expected (1,true), got (%d,%v)", d, ok)
	}
	if _, ok := BoundedLevenshtein("ab", "abcdef", 2); ok {
		t.Fatal("length diff beyond bound should reject without computing")
	}
	if _, ok := BoundedLevenshtein("kitten", "sitting", 2); ok {
		t.Fatal("distance 3 should reject at bound 2")
	}
}

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, s := range items {
		m[s] = struct{}{}
	}
	return m
}

func TestJaccard(t *testing.T) {
	// {X,Y} vs {X,Z} -> 1 common of 3 distinct = 1/3
	got := Jaccard(set("x", "y"), set("x", "z"))
	if math.Abs(got-1.0/3.0) > 1e-9 {
		t.Fatalf("expected 1/3, got %v", got)
	}
	if Jaccard(set(), set()) != 0 {
		t.Fatal("empty sets should yield 0")
	}
	if Jaccard(set("a"), set("a")) != 1 {
		t.Fatal("identical sets should yield 1")
	}
}

func TestJaccardBounds(t *testing.T) {
	a := set("a", "b", "c")
	b := set("b", "d")
	got := Jaccard(a, b)
	if got < 0 || got > 1 {
		t.Fatalf("jaccard out of [0,1]: %v", got)
	}
}

func TestCosine(t *testing.T) {
	a := map[string]float64{"banking": 30, "tech": 20}
	identical := Cosine(a, a)
	if math.Abs(identical-1) > 1e-9 {
		t.Fatalf("identical vectors should be 1, got %v", identical)
	}

	orthogonal := Cosine(
		map[string]float64{"banking": 30},
		map[string]float64{"pharma": 15},
	)
	if orthogonal != 0 {
		t.Fatalf("disjoint vectors should be 0, got %v", orthogonal)
	}

	if Cosine(map[string]float64{}, a) != 0 {
		t.Fatal("zero magnitude should yield 0, not NaN")
	}
}

func TestCosineBounds(t *testing.T) {
	a := map[string]float64{"banking": 32, "tech": 18, "auto": 5}
	b := map[string]float64{"banking": 25, "pharma": 12, "auto": 9}
	got := Cosine(a, b)
	if got < 0 || got > 1 {
		t.Fatalf("cosine out of [0,1]: %v", got)
	}
}

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	yUp := []float64{2, 4, 6, 8, 10}
	yDown := []float64{10, 8, 6, 4, 2}

	if r, ok := Pearson(x, yUp); !ok || math.Abs(r-1) > 1e-9 {
		t.Fatalf("expected perfect positive correlation, got %v ok=%v", r, ok)
	}
	if r, ok := Pearson(x, yDown); !ok || math.Abs(r+1) > 1e-9 {
		t.Fatalf("expected perfect negative correlation, got %v ok=%v", r, ok)
	}
	if _, ok := Pearson(x, []float64{1, 1, 1, 1, 1}); ok {
		t.Fatal("zero variance must be reported as unavailable, not NaN")
	}
	if _, ok := Pearson(x, []float64{1, 2}); ok {
		t.Fatal("mismatched lengths must be rejected")
	}
}

func TestNGrams(t *testing.T) {
	grams := NGrams("nifty", 3, 3)
	want := []string{"nif", "ift", "fty"}
	if len(grams) != len(want) {
		t.Fatalf("expected %v, got %v", want, grams)
	}
	for i, g := range want {
		if grams[i] != g {
			t.Fatalf("expected %v, got %v", want, grams)
		}
	}

	// words shorter than minN produce nothing
	if got := NGrams("ab", 3, 3); len(got) != 0 {
		t.Fatalf("expected no grams, got %v", got)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  HDFC Top-100 Fund! "); got != "hdfc top100 fund" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}
