// file: internal/comparison/correlation_test.go
// version: 1.0.0
// guid: b0c1d2e3-f4a5-6b7c-8d9e-0f1a2b3c4d5e

package comparison

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/jdfalk/fund-discovery/internal/catalog"
	"github.com/jdfalk/fund-discovery/internal/models"
)

// seedNav writes n daily NAV points ending yesterday, generated by fn from
// the day index.
func seedNav(t *testing.T, store *catalog.MemoryStore, fundID string, n int, fn func(day int) float64) {
	t.Helper()
	points := make([]models.NavPoint, n)
	end := time.Now().AddDate(0, 0, -1)
	for i := 0; i < n; i++ {
		points[i] = models.NavPoint{
			Date: end.AddDate(0, 0, -(n - 1 - i)),
			Nav:  fn(i),
		}
	}
	if err := store.PutNavHistory(context.Background(), fundID, points); err != nil {
		t.Fatalf("seed nav for %s: %v", fundID, err)
	}
}

func TestNormalizePeriod(t *testing.T) {
	for _, period := range []string{"3m", "6m", "1y", "3y"} {
		got, ok := NormalizePeriod(period)
		if !ok || got != period {
			t.Errorf("NormalizePeriod(%q) = (%q, %v)", period, got, ok)
		}
	}
	if got, ok := NormalizePeriod(""); !ok || got != "1y" {
		t.Errorf("empty period = (%q, %v), want default 1y", got, ok)
	}
	if _, ok := NormalizePeriod("10y"); ok {
		t.Error("unknown period must be rejected")
	}
}

func TestCorrelationPerfectlyCorrelated(t *testing.T) {
	store := overlapFixture(t)
	// Same varying return series scaled by a constant: correlation must be 1.
	base := func(day int) float64 { return 100 + float64(day) + 5*math.Sin(float64(day)) }
	seedNav(t, store, "P1", 60, base)
	seedNav(t, store, "P2", 60, func(day int) float64 { return 0.5 * base(day) })
	engine := NewEngine(store)

	result, err := engine.Compare(context.Background(), []string{"P1", "P2"},
		Options{Period: "1y", IncludeCorrelation: true})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	corr := result.Pairs[0].Correlation
	if corr == nil || corr.Coefficient == nil {
		t.Fatalf("correlation unavailable: %+v", corr)
	}
	if math.Abs(*corr.Coefficient-1) > 1e-9 {
		t.Errorf("coefficient = %v, want 1", *corr.Coefficient)
	}
	if corr.AlignedPoints != 59 {
		t.Errorf("aligned points = %d, want 59 returns from 60 navs", corr.AlignedPoints)
	}
	if result.Overall.AvgCorrelation == nil {
		t.Error("overall avg correlation missing")
	}
}

func TestCorrelationInsufficientHistory(t *testing.T) {
	store := overlapFixture(t)
	seedNav(t, store, "P1", 10, func(day int) float64 { return 100 + float64(day) })
	seedNav(t, store, "P2", 10, func(day int) float64 { return 50 + float64(day) })
	engine := NewEngine(store)

	result, err := engine.Compare(context.Background(), []string{"P1", "P2"},
		Options{Period: "3m", IncludeCorrelation: true})
	if err != nil {
		t.Fatalf("short history must degrade, not fail: %v", err)
	}

	corr := result.Pairs[0].Correlation
	if corr == nil {
		t.Fatal("correlation block missing")
	}
	if corr.Coefficient != nil {
		t.Errorf("coefficient = %v, want nil for %d aligned points", *corr.Coefficient, corr.AlignedPoints)
	}
	if corr.Reason == "" {
		t.Error("unavailable correlation must carry a reason")
	}
	if result.Overall.AvgCorrelation != nil {
		t.Error("no usable pairs must leave overall correlation unset")
	}
}

func TestCorrelationMisalignedDatesInnerJoin(t *testing.T) {
	store := overlapFixture(t)
	// P1 has 60 days; P2 only every other day. The join keeps shared dates
	// only, and 30 shared navs give 29 returns.
	seedNav(t, store, "P1", 60, func(day int) float64 { return 100 + float64(day) })
	points := make([]models.NavPoint, 0, 30)
	end := time.Now().AddDate(0, 0, -1)
	for i := 0; i < 60; i += 2 {
		points = append(points, models.NavPoint{
			Date: end.AddDate(0, 0, -(59 - i)),
			Nav:  200 + float64(i),
		})
	}
	if err := store.PutNavHistory(context.Background(), "P2", points); err != nil {
		t.Fatalf("seed nav: %v", err)
	}
	engine := NewEngine(store)

	result, err := engine.Compare(context.Background(), []string{"P1", "P2"},
		Options{Period: "3m", IncludeCorrelation: true})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	corr := result.Pairs[0].Correlation
	if corr == nil {
		t.Fatal("correlation block missing")
	}
	if corr.AlignedPoints != 29 {
		t.Errorf("aligned points = %d, want 29", corr.AlignedPoints)
	}
	if corr.Coefficient == nil {
		t.Errorf("29 aligned linear returns should correlate, got reason %q", corr.Reason)
	}
}

func TestCorrelationZeroVariance(t *testing.T) {
	store := overlapFixture(t)
	seedNav(t, store, "P1", 40, func(int) float64 { return 100 })
	seedNav(t, store, "P2", 40, func(day int) float64 { return 50 + float64(day) })
	engine := NewEngine(store)

	result, err := engine.Compare(context.Background(), []string{"P1", "P2"},
		Options{Period: "3m", IncludeCorrelation: true})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	corr := result.Pairs[0].Correlation
	if corr.Coefficient != nil {
		t.Errorf("flat nav series must be unavailable, got %v", *corr.Coefficient)
	}
	if corr.Reason != "zero variance in returns" {
		t.Errorf("reason = %q", corr.Reason)
	}
}

func TestCorrelationUnknownPeriod(t *testing.T) {
	engine := NewEngine(overlapFixture(t))
	info := engine.correlate(context.Background(), "P1", "P2", "10y")
	if info.Coefficient != nil || info.Reason != "unknown period" {
		t.Errorf("unknown period info = %+v", info)
	}
}
