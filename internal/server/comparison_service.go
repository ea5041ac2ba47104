// file: internal/server/comparison_service.go
// version: 1.2.0
// guid: 3f4a5b6c-7d8e-9f0a-1b2c-3d4e5f6a7b8c

package server

import (
	"context"
	"time"

	"github.com/jdfalk/fund-discovery/internal/cache"
	"github.com/jdfalk/fund-discovery/internal/catalog"
	"github.com/jdfalk/fund-discovery/internal/comparison"
	"github.com/jdfalk/fund-discovery/internal/config"
)

// ComparisonService fronts the comparison engine with result caching. Keys
// sort the fund IDs first, so comparing {A,B} and {B,A} shares one entry.
type ComparisonService struct {
	engine       *comparison.Engine
	cacheOps     *cache.Adapter
	ttl          time.Duration
	storeTimeout time.Duration
}

// NewComparisonService wires the comparison engine and its cache.
func NewComparisonService(store catalog.Store, cfg config.Config, backend cache.Backend) *ComparisonService {
	timeout := cfg.StoreTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ComparisonService{
		engine:       comparison.NewEngine(store),
		cacheOps:     cache.NewAdapter("comparison", backend),
		ttl:          cfg.ComparisonCacheTTL,
		storeTimeout: timeout,
	}
}

// Compare runs a cached multi-fund comparison.
func (s *ComparisonService) Compare(ctx context.Context, fundIDs []string, opts comparison.Options) (*comparison.CompareResult, error) {
	key := cache.ComparisonKey("compare", fundIDs, opts.Period, opts.IncludeCorrelation, opts.TopNHoldings)

	var cached comparison.CompareResult
	if s.cacheOps.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	sl := serviceLoggerFor(ctx, "comparison")
	sl.LogOperation("compare", map[string]any{"funds": fundIDs, "period": opts.Period})

	runCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	result, err := s.engine.Compare(runCtx, fundIDs, opts)
	if err != nil {
		sl.LogError("compare", err)
		return nil, err
	}
	s.cacheOps.SetJSON(ctx, key, result, s.ttl)
	return result, nil
}

// Overlap runs a cached multi-fund overlap.
func (s *ComparisonService) Overlap(ctx context.Context, fundIDs []string) (*comparison.OverlapResult, error) {
	key := cache.ComparisonKey("overlap", fundIDs)

	var cached comparison.OverlapResult
	if s.cacheOps.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	sl := serviceLoggerFor(ctx, "comparison")
	sl.LogOperation("overlap", map[string]any{"funds": fundIDs})

	runCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	result, err := s.engine.Overlap(runCtx, fundIDs)
	if err != nil {
		sl.LogError("overlap", err)
		return nil, err
	}
	s.cacheOps.SetJSON(ctx, key, result, s.ttl)
	return result, nil
}
