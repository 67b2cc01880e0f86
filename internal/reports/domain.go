package reports

import (
	"errors"
	"time"
)

// SalesSummaryRow aggregates POS sales per day.
type SalesSummaryRow struct {
	Day       time.Time `json:"day"`
	Orders    int64     `json:"orders"`
	UnitsSold float64   `json:"units_sold"`
	Gross     float64   `json:"gross"`
	Discounts float64   `json:"discounts"`
	Net       float64   `json:"net"`
}

// SalesSummary is the POS sales report for a window.
type SalesSummary struct {
	BranchID int64             `json:"branch_id"`
	From     time.Time         `json:"from"`
	To       time.Time         `json:"to"`
	Rows     []SalesSummaryRow `json:"rows"`
	Total    SalesSummaryRow   `json:"total"`
}

// CollectionLine is one payment method bucket in the daily collection.
type CollectionLine struct {
	Method   string  `json:"method"`
	Count    int64   `json:"count"`
	Amount   float64 `json:"amount"`
	Advances float64 `json:"advances"`
}

// DailyCollection summarises money collected on one day.
type DailyCollection struct {
	BranchID int64            `json:"branch_id"`
	Day      time.Time        `json:"day"`
	Lines    []CollectionLine `json:"lines"`
	Total    float64          `json:"total"`
}

// ErrInvalidRange indicates a bad report window.
var ErrInvalidRange = errors.New("reports: invalid date range")
