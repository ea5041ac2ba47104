// file: internal/search/normalizer_test.go
// version: 1.0.0
// guid: a3b4c5d6-e7f8-9a0b-1c2d-3e4f5a6b7c8d

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQueryFoldsDiacritics(t *testing.T) {
	n := NormalizeQuery("Crédit Suissé", 2)
	assert.Equal(t, "credit suisse", n.Query)
	assert.Equal(t, "Crédit Suissé", n.Original)
	assert.Equal(t, []string{"credit", "suisse"}, n.Tokens)
	assert.False(t, n.TooShort)
}

func TestNormalizeQueryTrimsAndLowercases(t *testing.T) {
	n := NormalizeQuery("  HDFC Small Cap  ", 2)
	assert.Equal(t, "hdfc small cap", n.Query)
	assert.Equal(t, "HDFC Small Cap", n.Original)
}

func TestNormalizeQueryTooShort(t *testing.T) {
	assert.True(t, NormalizeQuery("h", 2).TooShort)
	assert.True(t, NormalizeQuery("  x  ", 2).TooShort)
	assert.True(t, NormalizeQuery("", 2).TooShort)
	assert.False(t, NormalizeQuery("hd", 2).TooShort)
}

func TestDetectIntent(t *testing.T) {
	assert.Contains(t, DetectIntent("gold"), "gold")
	assert.Contains(t, DetectIntent("precious metals"), "gold")
	assert.Contains(t, DetectIntent("banking fund"), "sectoral")
	assert.Contains(t, DetectIntent("nifty 50"), "index")
	assert.Empty(t, DetectIntent("zzqq"))
}

func TestDetectIntentMultipleTags(t *testing.T) {
	tags := DetectIntent("gold etf")
	assert.Contains(t, tags, "gold")
	assert.Contains(t, tags, "index") // "etf" is an index keyword
}
