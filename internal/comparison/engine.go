// file: internal/comparison/engine.go
// version: 1.4.0
// guid: e7f8a9b0-c1d2-3e4f-5a6b-7c8d9e0f1a2b

package comparison

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jdfalk/fund-discovery/internal/catalog"
	"github.com/jdfalk/fund-discovery/internal/metrics"
	"github.com/jdfalk/fund-discovery/internal/models"
	"github.com/jdfalk/fund-discovery/internal/similarity"
)

const (
	// MinFunds and MaxFunds bound a comparison request.
	MinFunds = 2
	MaxFunds = 5

	// maxCommonHoldings caps the detailed common-holdings list per pair.
	maxCommonHoldings = 10

	// DefaultTopNHoldings caps how many of a fund's largest positions are
	// considered when no explicit top-N is requested.
	DefaultTopNHoldings = 50

	// maxUniqueNames caps the example names in a unique-holdings summary.
	maxUniqueNames = 5

	// duplicateExposureThreshold flags securities whose combined-portfolio
	// weight exceeds this percentage.
	duplicateExposureThreshold = 10.0

	// sectorConcentrationThreshold flags sectors dominating the combined
	// portfolio.
	sectorConcentrationThreshold = 30.0
)

var (
	ErrTooFewFunds  = errors.New("comparison needs at least 2 funds")
	ErrTooManyFunds = errors.New("comparison supports at most 5 funds")
	ErrNotEnough    = errors.New("fewer than 2 requested funds are available")
)

// Engine computes portfolio overlap and correlation from the fund catalog.
type Engine struct {
	store catalog.Store
}

// NewEngine creates a comparison engine over the given catalog store.
func NewEngine(store catalog.Store) *Engine {
	return &Engine{store: store}
}

// CommonHolding is one security held by both funds of a pair.
type CommonHolding struct {
	Name      string  `json:"name"`
	Sector    string  `json:"sector,omitempty"`
	WeightA   float64 `json:"weight_a"`
	WeightB   float64 `json:"weight_b"`
	MinWeight float64 `json:"min_weight"`
}

// HoldingsOverlap quantifies portfolio overlap between two funds.
type HoldingsOverlap struct {
	Jaccard         float64         `json:"jaccard"`
	WeightedOverlap float64         `json:"weighted_overlap"`
	CommonCount     int             `json:"common_count"`
	UniqueCountA    int             `json:"unique_count_a"`
	UniqueCountB    int             `json:"unique_count_b"`
	CommonHoldings  []CommonHolding `json:"common_holdings"`
}

// SectorDetail is one sector present in both funds' allocations.
type SectorDetail struct {
	Sector     string  `json:"sector"`
	WeightA    float64 `json:"weight_a"`
	WeightB    float64 `json:"weight_b"`
	Difference float64 `json:"difference"`
}

// SectorOverlap quantifies sector-allocation similarity between two funds.
type SectorOverlap struct {
	Cosine         float64        `json:"cosine"`
	PercentOverlap float64        `json:"percent_overlap"`
	CommonSectors  []SectorDetail `json:"common_sectors"`
}

// PairResult is the full overlap picture for one fund pair.
type PairResult struct {
	FundA       string           `json:"fund_a"`
	FundB       string           `json:"fund_b"`
	Holdings    HoldingsOverlap  `json:"holdings"`
	Sectors     SectorOverlap    `json:"sectors"`
	Correlation *CorrelationInfo `json:"correlation,omitempty"`
}

// SharedHolding is a security held by two or more funds in a multi-fund
// comparison, with the combined-portfolio exposure.
type SharedHolding struct {
	Name             string             `json:"name"`
	Sector           string             `json:"sector,omitempty"`
	HeldBy           []string           `json:"held_by"`
	Weights          map[string]float64 `json:"weights"`
	CombinedExposure float64            `json:"combined_exposure"`
}

// UniqueSummary describes the holdings a fund does not share with any other
// fund in the comparison.
type UniqueSummary struct {
	Count       int      `json:"count"`
	Percentage  float64  `json:"percentage"`
	TopHoldings []string `json:"top_holdings,omitempty"`
}

// PairInsight names one pair together with its weighted overlap.
type PairInsight struct {
	FundA           string  `json:"fund_a"`
	FundB           string  `json:"fund_b"`
	WeightedOverlap float64 `json:"weighted_overlap"`
}

// OverallMetrics aggregate the pairwise numbers of a multi-fund comparison.
type OverallMetrics struct {
	AvgJaccard         float64      `json:"avg_jaccard"`
	AvgWeightedOverlap float64      `json:"avg_weighted_overlap"`
	AvgSectorCosine    float64      `json:"avg_sector_cosine"`
	AvgCorrelation     *float64     `json:"avg_correlation,omitempty"`
	MostSimilar        *PairInsight `json:"most_similar,omitempty"`
	LeastSimilar       *PairInsight `json:"least_similar,omitempty"`
}

// CompareResult is the response body for a multi-fund comparison.
type CompareResult struct {
	Funds          []models.FundSummary     `json:"funds"`
	Pairs          []PairResult             `json:"pairs"`
	CommonHoldings []SharedHolding          `json:"common_holdings"`
	Unique         map[string]UniqueSummary `json:"unique"`
	Overall        OverallMetrics           `json:"overall"`
	Warnings       []string                 `json:"warnings"`
}

// OverlapResult is the response body for an overlap-only comparison. Same
// shape as CompareResult minus correlation and aggregate averages.
type OverlapResult struct {
	Funds          []models.FundSummary     `json:"funds"`
	Pairs          []PairResult             `json:"pairs"`
	CommonHoldings []SharedHolding          `json:"common_holdings"`
	Unique         map[string]UniqueSummary `json:"unique"`
	Warnings       []string                 `json:"warnings"`
}

// Options select the holdings depth and correlation window for a comparison.
type Options struct {
	TopNHoldings       int
	Period             string
	IncludeCorrelation bool
}

func normalizeTopN(n int) int {
	if n <= 0 {
		return DefaultTopNHoldings
	}
	return n
}

// holdingKey normalizes a security identity so the same stock matches across
// funds despite naming differences. Ticker wins when present.
func holdingKey(h *models.Holding) string {
	if h.Ticker != "" {
		return "t:" + strings.ToLower(strings.TrimSpace(h.Ticker))
	}
	return "n:" + similarity.Normalize(h.Name)
}

// topHoldings returns the fund's n largest positions by weight.
func topHoldings(fund *models.Fund, n int) []models.Holding {
	holdings := append([]models.Holding(nil), fund.Holdings...)
	sort.Slice(holdings, func(i, j int) bool {
		if holdings[i].Percentage != holdings[j].Percentage {
			return holdings[i].Percentage > holdings[j].Percentage
		}
		return holdings[i].Name < holdings[j].Name
	})
	if len(holdings) > n {
		holdings = holdings[:n]
	}
	return holdings
}

func holdingSet(fund *models.Fund, topN int) map[string]*models.Holding {
	holdings := topHoldings(fund, topN)
	set := make(map[string]*models.Holding, len(holdings))
	for i := range holdings {
		h := &holdings[i]
		set[holdingKey(h)] = h
	}
	return set
}

func sectorVector(fund *models.Fund) map[string]float64 {
	vec := make(map[string]float64, len(fund.SectorAllocation))
	for _, sa := range fund.SectorAllocation {
		vec[strings.ToLower(strings.TrimSpace(sa.Sector))] += sa.Percentage
	}
	return vec
}

// overlapPair computes holdings and sector overlap for one ordered pair,
// considering only each fund's topN largest positions.
func overlapPair(a, b *models.Fund, topN int) (HoldingsOverlap, SectorOverlap) {
	setA := holdingSet(a, topN)
	setB := holdingSet(b, topN)

	keysA := make(map[string]struct{}, len(setA))
	for k := range setA {
		keysA[k] = struct{}{}
	}
	keysB := make(map[string]struct{}, len(setB))
	for k := range setB {
		keysB[k] = struct{}{}
	}

	var common []CommonHolding
	var weighted float64
	for key, ha := range setA {
		hb, ok := setB[key]
		if !ok {
			continue
		}
		minW := ha.Percentage
		if hb.Percentage < minW {
			minW = hb.Percentage
		}
		weighted += minW
		common = append(common, CommonHolding{
			Name:      ha.Name,
			Sector:    ha.Sector,
			WeightA:   ha.Percentage,
			WeightB:   hb.Percentage,
			MinWeight: minW,
		})
	}
	sort.Slice(common, func(i, j int) bool {
		if common[i].MinWeight != common[j].MinWeight {
			return common[i].MinWeight > common[j].MinWeight
		}
		return common[i].Name < common[j].Name
	})
	commonCount := len(common)
	if len(common) > maxCommonHoldings {
		common = common[:maxCommonHoldings]
	}

	// Weights are only bounded per holding, so their sum can pass 100.
	weightedOverlap := weighted / 100
	if weightedOverlap > 1 {
		weightedOverlap = 1
	}

	holdings := HoldingsOverlap{
		Jaccard:         similarity.Jaccard(keysA, keysB),
		WeightedOverlap: weightedOverlap,
		CommonCount:     commonCount,
		UniqueCountA:    len(setA) - commonCount,
		UniqueCountB:    len(setB) - commonCount,
		CommonHoldings:  common,
	}

	vecA := sectorVector(a)
	vecB := sectorVector(b)
	var sectors []SectorDetail
	var percentOverlap float64
	for sector, wa := range vecA {
		wb, ok := vecB[sector]
		if !ok {
			continue
		}
		minW := wa
		if wb < minW {
			minW = wb
		}
		percentOverlap += minW
		diff := wa - wb
		if diff < 0 {
			diff = -diff
		}
		sectors = append(sectors, SectorDetail{Sector: sector, WeightA: wa, WeightB: wb, Difference: diff})
	}
	sort.Slice(sectors, func(i, j int) bool {
		wi, wj := sectors[i].WeightA+sectors[i].WeightB, sectors[j].WeightA+sectors[j].WeightB
		if wi != wj {
			return wi > wj
		}
		return sectors[i].Sector < sectors[j].Sector
	})

	return holdings, SectorOverlap{
		Cosine:         similarity.Cosine(vecA, vecB),
		PercentOverlap: percentOverlap,
		CommonSectors:  sectors,
	}
}

// fetchFunds resolves and validates the requested fund set. Requests outside
// [2,5] funds fail fast; fewer than 2 resolvable active funds is ErrNotEnough.
func (e *Engine) fetchFunds(ctx context.Context, fundIDs []string) ([]models.Fund, error) {
	unique := dedupeIDs(fundIDs)
	if len(unique) < MinFunds {
		return nil, ErrTooFewFunds
	}
	if len(unique) > MaxFunds {
		return nil, ErrTooManyFunds
	}
	funds, err := e.store.GetFundsByIDs(ctx, unique, true)
	if err != nil {
		return nil, fmt.Errorf("catalog read failed: %w", err)
	}
	if len(funds) < MinFunds {
		return nil, ErrNotEnough
	}
	return funds, nil
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Overlap computes pairwise holdings/sector overlap for 2-5 funds, without
// correlation or aggregate averages.
func (e *Engine) Overlap(ctx context.Context, fundIDs []string) (*OverlapResult, error) {
	start := time.Now()
	defer func() { metrics.ObserveSearchDuration("overlap", time.Since(start)) }()

	funds, err := e.fetchFunds(ctx, fundIDs)
	if err != nil {
		return nil, err
	}

	result := &OverlapResult{
		Funds:    make([]models.FundSummary, len(funds)),
		Warnings: []string{},
	}
	for i := range funds {
		result.Funds[i] = funds[i].Summary()
	}
	for i := 0; i < len(funds); i++ {
		for j := i + 1; j < len(funds); j++ {
			holdings, sectors := overlapPair(&funds[i], &funds[j], DefaultTopNHoldings)
			result.Pairs = append(result.Pairs, PairResult{
				FundA:    funds[i].FundID,
				FundB:    funds[j].FundID,
				Holdings: holdings,
				Sectors:  sectors,
			})
		}
	}

	result.CommonHoldings = sharedHoldings(funds, DefaultTopNHoldings)
	result.Unique = uniqueSummaries(funds, DefaultTopNHoldings)
	result.Warnings = append(result.Warnings, exposureWarnings(funds, result.CommonHoldings)...)
	return result, nil
}

// Compare runs the full multi-fund comparison: pairwise overlap, holdings
// shared across funds, unique counts, aggregate metrics, and duplicate
// exposure warnings. Correlation failures for a pair degrade that pair, not
// the whole comparison.
func (e *Engine) Compare(ctx context.Context, fundIDs []string, opts Options) (*CompareResult, error) {
	start := time.Now()
	defer func() { metrics.ObserveSearchDuration("compare", time.Since(start)) }()

	funds, err := e.fetchFunds(ctx, fundIDs)
	if err != nil {
		return nil, err
	}

	topN := normalizeTopN(opts.TopNHoldings)
	result := &CompareResult{
		Funds:    make([]models.FundSummary, len(funds)),
		Warnings: []string{},
	}
	for i := range funds {
		result.Funds[i] = funds[i].Summary()
	}

	var sumJaccard, sumWeighted, sumCosine float64
	var sumCorr float64
	corrPairs := 0
	var most, least *PairInsight
	for i := 0; i < len(funds); i++ {
		for j := i + 1; j < len(funds); j++ {
			holdings, sectors := overlapPair(&funds[i], &funds[j], topN)
			pair := PairResult{
				FundA:    funds[i].FundID,
				FundB:    funds[j].FundID,
				Holdings: holdings,
				Sectors:  sectors,
			}
			if opts.IncludeCorrelation {
				pair.Correlation = e.correlate(ctx, funds[i].FundID, funds[j].FundID, opts.Period)
				if pair.Correlation.Coefficient != nil {
					sumCorr += *pair.Correlation.Coefficient
					corrPairs++
				}
			}
			sumJaccard += holdings.Jaccard
			sumWeighted += holdings.WeightedOverlap
			sumCosine += sectors.Cosine
			insight := &PairInsight{FundA: pair.FundA, FundB: pair.FundB, WeightedOverlap: holdings.WeightedOverlap}
			if most == nil || insight.WeightedOverlap > most.WeightedOverlap {
				most = insight
			}
			if least == nil || insight.WeightedOverlap < least.WeightedOverlap {
				least = insight
			}
			result.Pairs = append(result.Pairs, pair)
		}
	}

	pairs := float64(len(result.Pairs))
	result.Overall = OverallMetrics{
		AvgJaccard:         sumJaccard / pairs,
		AvgWeightedOverlap: sumWeighted / pairs,
		AvgSectorCosine:    sumCosine / pairs,
	}
	if corrPairs > 0 {
		avg := sumCorr / float64(corrPairs)
		result.Overall.AvgCorrelation = &avg
	}
	if len(result.Pairs) > 1 {
		result.Overall.MostSimilar = most
		result.Overall.LeastSimilar = least
	}

	result.CommonHoldings = sharedHoldings(funds, topN)
	result.Unique = uniqueSummaries(funds, topN)
	result.Warnings = append(result.Warnings, exposureWarnings(funds, result.CommonHoldings)...)

	return result, nil
}

// sharedHoldings lists securities held by two or more funds, with the
// combined exposure assuming equal allocation across the compared funds.
func sharedHoldings(funds []models.Fund, topN int) []SharedHolding {
	type tally struct {
		name    string
		sector  string
		heldBy  []string
		weights map[string]float64
		total   float64
	}
	tallies := make(map[string]*tally)
	for i := range funds {
		fund := &funds[i]
		holdings := topHoldings(fund, topN)
		for j := range holdings {
			h := &holdings[j]
			key := holdingKey(h)
			tl, ok := tallies[key]
			if !ok {
				tl = &tally{name: h.Name, sector: h.Sector, weights: make(map[string]float64)}
				tallies[key] = tl
			}
			tl.heldBy = append(tl.heldBy, fund.FundID)
			tl.weights[fund.FundID] = h.Percentage
			tl.total += h.Percentage
		}
	}

	n := float64(len(funds))
	var shared []SharedHolding
	for _, tl := range tallies {
		if len(tl.heldBy) < 2 {
			continue
		}
		shared = append(shared, SharedHolding{
			Name:             tl.name,
			Sector:           tl.sector,
			HeldBy:           tl.heldBy,
			Weights:          tl.weights,
			CombinedExposure: tl.total / n,
		})
	}
	sort.Slice(shared, func(i, j int) bool {
		if shared[i].CombinedExposure != shared[j].CombinedExposure {
			return shared[i].CombinedExposure > shared[j].CombinedExposure
		}
		return shared[i].Name < shared[j].Name
	})
	return shared
}

// uniqueSummaries describes, per fund, the positions no other compared fund
// holds: count, share of the fund's considered holdings, and the largest
// unique names.
func uniqueSummaries(funds []models.Fund, topN int) map[string]UniqueSummary {
	summaries := make(map[string]UniqueSummary, len(funds))
	for i := range funds {
		others := make(map[string]struct{})
		for j := range funds {
			if i == j {
				continue
			}
			other := topHoldings(&funds[j], topN)
			for k := range other {
				others[holdingKey(&other[k])] = struct{}{}
			}
		}

		holdings := topHoldings(&funds[i], topN)
		var unique []models.Holding
		for j := range holdings {
			if _, ok := others[holdingKey(&holdings[j])]; !ok {
				unique = append(unique, holdings[j])
			}
		}

		summary := UniqueSummary{Count: len(unique)}
		if len(holdings) > 0 {
			summary.Percentage = float64(len(unique)) / float64(len(holdings)) * 100
		}
		// topHoldings already sorted by weight descending.
		for j := 0; j < len(unique) && j < maxUniqueNames; j++ {
			summary.TopHoldings = append(summary.TopHoldings, unique[j].Name)
		}
		summaries[funds[i].FundID] = summary
	}
	return summaries
}

// exposureWarnings flags duplicate securities and sector concentration in
// the combined portfolio.
func exposureWarnings(funds []models.Fund, shared []SharedHolding) []string {
	var warnings []string
	for _, sh := range shared {
		if sh.CombinedExposure > duplicateExposureThreshold {
			warnings = append(warnings, fmt.Sprintf(
				"duplicate exposure: %s held by %d funds (%.1f%% of combined portfolio)",
				sh.Name, len(sh.HeldBy), sh.CombinedExposure))
		}
	}

	combined := make(map[string]float64)
	for i := range funds {
		for sector, w := range sectorVector(&funds[i]) {
			combined[sector] += w
		}
	}
	n := float64(len(funds))
	sectors := make([]string, 0, len(combined))
	for sector := range combined {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)
	for _, sector := range sectors {
		avg := combined[sector] / n
		if avg > sectorConcentrationThreshold {
			warnings = append(warnings, fmt.Sprintf(
				"heavy concentration in %s sector (%.0f%% of combined portfolio)", sector, avg))
		}
	}
	return warnings
}
