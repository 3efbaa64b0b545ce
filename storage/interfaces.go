package storage

import "suumo-scraper/models"

// ListingWriter is the interface any canonical-listing sink must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}
