package suumo

import (
	"fmt"

	"suumo-scraper/config"
	"suumo-scraper/models"
	"suumo-scraper/utils"
)

// Scraper walks the paginated search results of one configured case and
// accumulates every raw listing it finds.
type Scraper struct {
	fetcher   *Fetcher
	extractor *Extractor
	visited   *utils.URLSet
	logger    *utils.Logger
}

// New creates a ready-to-use Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		fetcher:   NewFetcher(cfg, logger),
		extractor: NewExtractor(logger),
		visited:   utils.NewURLSet(),
		logger:    logger,
	}
}

// WalkAll fetches pages 1..maxPages of baseURL, appending "&page=N" for
// each index, and stops as soon as a page yields zero listings. A fetch
// failure on the first page is fatal (it almost always means a broken
// base URL); on later pages the walk stops and returns what it has.
func (s *Scraper) WalkAll(baseURL string, maxPages int) ([]*models.RawListing, error) {
	var all []*models.RawListing

	for page := 1; page <= maxPages; page++ {
		url := fmt.Sprintf("%s&page=%d", baseURL, page)
		s.logger.Info("[suumo] Page %d — %s", page, url)

		markup, err := s.fetcher.Fetch(url)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			s.logger.Error("[suumo] Page %d failed, stopping walk: %v", page, err)
			break
		}

		listings, err := s.extractor.Extract(markup)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			s.logger.Error("[suumo] Page %d unparsable, stopping walk: %v", page, err)
			break
		}

		if len(listings) == 0 {
			s.logger.Info("[suumo] Page %d returned 0 listings — end of results", page)
			break
		}

		kept := 0
		for _, l := range listings {
			if l.URL != "" && !s.visited.Add(l.URL) {
				s.logger.Debug("[suumo] Skipping duplicate URL: %s", l.URL)
				continue
			}
			all = append(all, l)
			kept++
		}

		s.logger.Info("[suumo] Page %d done — %d listings (%d total)", page, kept, len(all))
	}

	s.logger.Info("[suumo] Walk complete — total raw listings: %d", len(all))
	return all, nil
}
