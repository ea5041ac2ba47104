// file: internal/cache/keys.go
// version: 1.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Key builders. Keys are deterministic functions of the request: fund ID
// lists are sorted first so comparing {A,B} and {B,A} hits the same entry.

// SearchKey builds the cache key for a fund search request.
func SearchKey(query, category string, minAum float64, fuzzy, boost bool, limit int) string {
	return fmt.Sprintf("search:funds:%s:%s:%g:%t:%t:%d", query, category, minAum, fuzzy, boost, limit)
}

// SuggestKey builds the cache key for an autocomplete request.
func SuggestKey(query string, limit int) string {
	return fmt.Sprintf("suggest:v2:%s:%d", query, limit)
}

// TagKey builds the cache key for a tag search request.
func TagKey(tags []string, limit int) string {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	return fmt.Sprintf("search:tags:%s:%d", strings.Join(sorted, ","), limit)
}

// ComparisonKey builds the cache key for a comparison request. Option values
// are folded into an xxhash fingerprint to keep keys short and collision-safe
// regardless of how many options grow onto the request.
func ComparisonKey(op string, fundIDs []string, options ...any) string {
	sorted := append([]string(nil), fundIDs...)
	sort.Strings(sorted)

	h := xxhash.New()
	for _, id := range sorted {
		h.WriteString(id)
		h.WriteString("\x00")
	}
	for _, opt := range options {
		fmt.Fprintf(h, "%v\x00", opt)
	}
	return fmt.Sprintf("comparison:%s:%016x", op, h.Sum64())
}
