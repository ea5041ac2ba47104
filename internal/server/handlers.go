// file: internal/server/handlers.go
// version: 1.4.0
// guid: 4a5b6c7d-8e9f-0a1b-2c3d-4e5f6a7b8c9d

package server

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/fund-discovery/internal/comparison"
	"github.com/jdfalk/fund-discovery/internal/search"
)

// roundScore trims a score for the wire. Internal math keeps full precision;
// rounding happens only here.
func roundScore(s float64) float64 {
	return math.Round(s*100) / 100
}

func roundSearchResult(r *search.Result) {
	for i := range r.Results {
		r.Results[i].Score = roundScore(r.Results[i].Score)
	}
}

func roundSuggestResult(r *search.SuggestResult) {
	for i := range r.Suggestions {
		r.Suggestions[i].Score = roundScore(r.Suggestions[i].Score)
		r.Suggestions[i].Confidence = roundScore(r.Suggestions[i].Confidence)
	}
}

// searchFunds handles GET /api/v1/search/funds
func (s *Server) searchFunds(c *gin.Context) {
	// Only a missing parameter is an error; a present-but-short query (even
	// all whitespace) is an empty success downstream.
	query := c.Query("q")
	if query == "" {
		RespondWithValidationError(c, "q", "query parameter is required")
		return
	}

	opts := search.Options{
		Limit:        ParseQueryInt(c, "limit", 20),
		Category:     c.Query("category"),
		MinAum:       ParseQueryFloat(c, "min_aum", 0),
		EnableFuzzy:  ParseQueryBool(c, "fuzzy", true),
		BoostPopular: ParseQueryBool(c, "boost", true),
	}

	result, err := s.searchSvc.Search(c.Request.Context(), query, opts)
	if err != nil {
		RespondWithInternalError(c, "search failed")
		return
	}
	roundSearchResult(result)
	RespondWithOK(c, result)
}

// suggestFunds handles GET /api/v1/search/suggest
func (s *Server) suggestFunds(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		RespondWithValidationError(c, "q", "query parameter is required")
		return
	}
	limit := ParseQueryInt(c, "limit", 10)

	// Debounce per caller: keystrokes from one client coalesce without
	// delaying anyone else.
	caller := c.ClientIP()
	if caller == "" {
		caller = "unknown"
	}

	result, err := s.searchSvc.Suggest(c.Request.Context(), caller, query, limit)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Client went away while waiting out the debounce window.
			c.Abort()
			return
		}
		RespondWithInternalError(c, "suggestions failed")
		return
	}
	roundSuggestResult(result)
	RespondWithOK(c, result)
}

// searchByTags handles GET /api/v1/search/by-tags
func (s *Server) searchByTags(c *gin.Context) {
	raw := c.Query("tags")
	if strings.TrimSpace(raw) == "" {
		RespondWithValidationError(c, "tags", "comma-separated tags are required")
		return
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		RespondWithValidationError(c, "tags", "no usable tags in list")
		return
	}
	limit := ParseQueryInt(c, "limit", 20)

	result, err := s.searchSvc.ByTags(c.Request.Context(), tags, limit)
	if err != nil {
		RespondWithInternalError(c, "tag search failed")
		return
	}
	RespondWithOK(c, result)
}

// compareRequest is the body for POST /api/v1/comparison/compare.
// include_correlation defaults to true when omitted.
type compareRequest struct {
	FundIDs            []string `json:"fund_ids" binding:"required"`
	TopNHoldings       int      `json:"top_n_holdings"`
	Period             string   `json:"period"`
	IncludeCorrelation *bool    `json:"include_correlation"`
}

// compareFunds handles POST /api/v1/comparison/compare
func (s *Server) compareFunds(c *gin.Context) {
	var req compareRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}
	period, ok := comparison.NormalizePeriod(req.Period)
	if !ok {
		RespondWithValidationError(c, "period", "must be one of 3m, 6m, 1y, 3y")
		return
	}
	includeCorrelation := true
	if req.IncludeCorrelation != nil {
		includeCorrelation = *req.IncludeCorrelation
	}

	result, err := s.comparisonSvc.Compare(c.Request.Context(), req.FundIDs, comparison.Options{
		TopNHoldings:       req.TopNHoldings,
		Period:             period,
		IncludeCorrelation: includeCorrelation,
	})
	if err != nil {
		respondComparisonError(c, err)
		return
	}
	RespondWithOK(c, result)
}

// overlapRequest is the body for POST /api/v1/comparison/overlap.
type overlapRequest struct {
	FundIDs []string `json:"fund_ids" binding:"required"`
}

// overlapFunds handles POST /api/v1/comparison/overlap
func (s *Server) overlapFunds(c *gin.Context) {
	var req overlapRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}
	result, err := s.comparisonSvc.Overlap(c.Request.Context(), req.FundIDs)
	if err != nil {
		respondComparisonError(c, err)
		return
	}
	RespondWithOK(c, result)
}

func respondComparisonError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, comparison.ErrTooFewFunds), errors.Is(err, comparison.ErrTooManyFunds):
		RespondWithValidationError(c, "fund_ids", err.Error())
	case errors.Is(err, comparison.ErrNotEnough):
		RespondWithNotFound(c, "funds", "need at least 2 active funds from the requested set")
	default:
		RespondWithInternalError(c, "comparison failed")
	}
}

// healthCheck handles GET /api/v1/health
func (s *Server) healthCheck(c *gin.Context) {
	count, err := s.store.CountFunds(c.Request.Context())
	if err != nil {
		RespondWithUnavailable(c, "catalog unavailable")
		return
	}
	RespondWithOK(c, gin.H{
		"status": "ok",
		"funds":  count,
	})
}
