package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus is the competitor's availability as read off their page.
type StockStatus string

const (
	StockIn  StockStatus = "in_stock"
	StockOut StockStatus = "out_of_stock"
	StockLow StockStatus = "low_stock"
)

// Competitor is the mutable "latest" pointer for one monitored competitor
// product page. Every poll overwrites it; history rows are appended
// separately and never touched again.
type Competitor struct {
	ID             string
	Name           string
	URL            string
	CurrentPrice   float64
	PreviousPrice  float64
	PriceChangePct float64
	ProductName    string
	StockStatus    StockStatus
	PromoText      string
	ObservedAt     time.Time
}

// PriceChange computes the percent move from prev to curr. Zero when there
// is no prior observation, never a division by zero.
func PriceChange(prev, curr float64) float64 {
	if prev == 0 {
		return 0
	}
	return (curr - prev) / prev * 100
}

// PriceObservation is one append-only history row, keyed by
// (CompetitorID, DetectedAt).
type PriceObservation struct {
	CompetitorID string
	OldPrice     float64
	NewPrice     float64
	ChangePct    float64
	DetectedAt   time.Time
}

// PageSnapshot is what the scraper extracted from one rendered page.
type PageSnapshot struct {
	Price        float64
	ProductTitle string
	StockStatus  StockStatus
	PromoText    string
}

// Product is our own sellable tracked against a competitor.
type Product struct {
	ID           string
	Name         string
	Price        float64
	Cost         float64
	CompetitorID string
}

// CounterOffer is a derived price recommendation. Recomputed per evaluation,
// never stored on its own.
type CounterOffer struct {
	SuggestedPrice   decimal.Decimal
	DiscountPct      decimal.Decimal
	Urgency          Urgency
	Reasoning        string
	MarketingMessage string
}
