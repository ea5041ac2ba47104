// file: internal/comparison/correlation.go
// version: 1.2.0
// guid: f8a9b0c1-d2e3-4f5a-6b7c-8d9e0f1a2b3c

package comparison

import (
	"context"
	"log"
	"time"

	"github.com/jdfalk/fund-discovery/internal/models"
	"github.com/jdfalk/fund-discovery/internal/similarity"
)

// minAlignedPoints is the smallest overlapping return series that yields a
// meaningful correlation. Shorter series report unavailable, never a number
// from noise and never NaN.
const minAlignedPoints = 20

// CorrelationInfo carries the NAV return correlation of one pair.
// Coefficient is nil when the data cannot support it, with Reason set.
type CorrelationInfo struct {
	Period        string   `json:"period"`
	StartDate     string   `json:"start_date,omitempty"`
	EndDate       string   `json:"end_date,omitempty"`
	Coefficient   *float64 `json:"coefficient"`
	AlignedPoints int      `json:"aligned_points"`
	Reason        string   `json:"reason,omitempty"`
}

var periodDays = map[string]int{
	"3m": 90,
	"6m": 180,
	"1y": 365,
	"3y": 1095,
}

// NormalizePeriod validates a correlation window, defaulting to one year.
func NormalizePeriod(period string) (string, bool) {
	if period == "" {
		return "1y", true
	}
	if _, ok := periodDays[period]; ok {
		return period, true
	}
	return "", false
}

// correlate computes the daily-return correlation of two funds over the
// period. Failures never abort the comparison: the pair degrades to an
// unavailable correlation with a reason.
func (e *Engine) correlate(ctx context.Context, fundA, fundB, period string) *CorrelationInfo {
	normalized, ok := NormalizePeriod(period)
	if !ok {
		return &CorrelationInfo{Period: period, Reason: "unknown period"}
	}
	info := &CorrelationInfo{Period: normalized}

	to := time.Now()
	from := to.AddDate(0, 0, -periodDays[normalized])
	info.StartDate = from.Format("2006-01-02")
	info.EndDate = to.Format("2006-01-02")

	histA, err := e.store.GetNavHistory(ctx, fundA, from, to)
	if err != nil {
		log.Printf("[WARN] nav history for %s unavailable: %v", fundA, err)
		info.Reason = "nav history unavailable"
		return info
	}
	histB, err := e.store.GetNavHistory(ctx, fundB, from, to)
	if err != nil {
		log.Printf("[WARN] nav history for %s unavailable: %v", fundB, err)
		info.Reason = "nav history unavailable"
		return info
	}

	returnsA, returnsB := alignedReturns(histA, histB)
	info.AlignedPoints = len(returnsA)
	if len(returnsA) < minAlignedPoints {
		info.Reason = "insufficient overlapping nav history"
		return info
	}

	coeff, ok := similarity.Pearson(returnsA, returnsB)
	if !ok {
		info.Reason = "zero variance in returns"
		return info
	}
	info.Coefficient = &coeff
	return info
}

// alignedReturns inner-joins two NAV series by calendar date and converts
// the joined series to day-over-day returns. Dates present in only one
// series are dropped, so holidays and missing days never misalign the pair.
func alignedReturns(histA, histB []models.NavPoint) ([]float64, []float64) {
	byDate := make(map[string]float64, len(histB))
	for _, p := range histB {
		byDate[p.Date.Format("2006-01-02")] = p.Nav
	}

	type joined struct {
		a, b float64
	}
	var rows []joined
	for _, p := range histA {
		if b, ok := byDate[p.Date.Format("2006-01-02")]; ok {
			rows = append(rows, joined{a: p.Nav, b: b})
		}
	}
	// histA is date-ordered from the store, so rows stay ordered too.

	var returnsA, returnsB []float64
	for i := 1; i < len(rows); i++ {
		if rows[i-1].a == 0 || rows[i-1].b == 0 {
			continue
		}
		returnsA = append(returnsA, (rows[i].a-rows[i-1].a)/rows[i-1].a)
		returnsB = append(returnsB, (rows[i].b-rows[i-1].b)/rows[i-1].b)
	}
	return returnsA, returnsB
}
