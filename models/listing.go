package models

import "time"

// RawListing holds the field texts lifted straight from one listing card
// on a search-result page. Values are untouched markup text; fields other
// than Name/Price/URL may be empty when the card lacks the matching label.
// This is written to CSV (the "lake" stage) before any normalization.
type RawListing struct {
	Name         string
	Price        string
	Address      string
	Access       string
	Area         string
	Layout       string
	Construction string // 築年月 text, e.g. "2005年3月"
	URL          string
	ScrapedAt    time.Time
}

// Listing is the normalized, validated record produced by the formatter.
// Price is an integer in 万円 units, Area is in m2, Age in years.
// ID is the numeric token from the detail-page URL; it is empty when the
// URL carries no such token (the record is still kept).
type Listing struct {
	ID          string
	Name        string
	Price       int
	Age         int
	Line        string
	StationName string
	Minutes     int
	Layout      string
	Area        float64
	Address     string
	URL         string

	// Set by the geocoding step; Geocoded reports whether Lat/Lon hold
	// a resolved coordinate pair.
	Lat      float64
	Lon      float64
	Geocoded bool
}

// MarketReport holds the computed analytics over the canonical dataset.
type MarketReport struct {
	TotalListings     int
	AveragePrice      float64 // 万円
	MinPrice          int     // 万円
	MaxPrice          int     // 万円
	MostExpensive     *Listing
	AveragePerSqm     float64 // 万円 per m2
	Newest            []*Listing
	ListingsByStation map[string]int
}
