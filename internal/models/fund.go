// file: internal/models/fund.go
// version: 1.1.0
// guid: 3f8b2c1d-9a4e-4b7f-8c2d-5e1a6f9b0c3d

package models

import "time"

// Holding represents a single security position inside a fund portfolio.
// Weights are percentages in [0,100] and are not required to sum to 100
// (funds may omit minor holdings).
type Holding struct {
	Name       string  `json:"name" db:"name"`
	Ticker     string  `json:"ticker,omitempty" db:"ticker"`
	Percentage float64 `json:"percentage" db:"percentage"`
	Sector     string  `json:"sector,omitempty" db:"sector"`
}

// SectorAllocation represents a fund's exposure to one sector.
type SectorAllocation struct {
	Sector     string  `json:"sector" db:"sector"`
	Percentage float64 `json:"percentage" db:"percentage"`
}

// Fund is a catalog fund record. The catalog owns these; the search and
// comparison engines only read them.
type Fund struct {
	FundID      string   `json:"fund_id" db:"fund_id"`
	Name        string   `json:"name" db:"name"`
	FundHouse   string   `json:"fund_house" db:"fund_house"`
	Category    string   `json:"category" db:"category"`
	SubCategory string   `json:"sub_category" db:"sub_category"`
	FundType    string   `json:"fund_type" db:"fund_type"`
	Tags        []string `json:"tags" db:"tags"`
	SearchTerms []string `json:"search_terms" db:"search_terms"`
	CurrentNav  float64  `json:"current_nav" db:"current_nav"`
	AUM         float64  `json:"aum" db:"aum"`
	Popularity  float64  `json:"popularity" db:"popularity"`
	IsActive    bool     `json:"is_active" db:"is_active"`

	Holdings         []Holding          `json:"holdings,omitempty"`
	SectorAllocation []SectorAllocation `json:"sector_allocation,omitempty"`
}

// NavPoint is one (date, NAV) sample of a fund's price history. Series are
// stored in date order.
type NavPoint struct {
	Date time.Time `json:"date" db:"date"`
	Nav  float64   `json:"nav" db:"nav"`
}

// FundSummary is the slim projection returned alongside comparison results.
type FundSummary struct {
	FundID      string  `json:"fund_id"`
	Name        string  `json:"name"`
	FundHouse   string  `json:"fund_house"`
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category"`
	CurrentNav  float64 `json:"current_nav"`
	AUM         float64 `json:"aum"`
}

// Summary returns the slim projection of a fund.
func (f *Fund) Summary() FundSummary {
	return FundSummary{
		FundID:      f.FundID,
		Name:        f.Name,
		FundHouse:   f.FundHouse,
		Category:    f.Category,
		SubCategory: f.SubCategory,
		CurrentNav:  f.CurrentNav,
		AUM:         f.AUM,
	}
}
