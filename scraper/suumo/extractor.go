package suumo

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"suumo-scraper/models"
	"suumo-scraper/utils"
)

const siteOrigin = "https://suumo.jp"

// Extractor turns one search-result page of SUUMO markup into raw
// listings. Selectors are fixed to the used-property (中古) card layout:
// one div.property_unit-content per listing, with name/price carried by
// class markers and the remaining fields by labeled dt/dd pairs.
type Extractor struct {
	logger *utils.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(logger *utils.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract parses markup and returns the raw listings found on the page.
// A card missing its name or price node is skipped with a warning; the
// rest of the page is still processed.
func (e *Extractor) Extract(markup []byte) ([]*models.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	var listings []*models.RawListing

	doc.Find("div.property_unit-content").Each(func(i int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find("dd.dottable-vm").First().Text())
		price := strings.TrimSpace(card.Find("span.dottable-value").First().Text())
		if name == "" || price == "" {
			e.logger.Warn("[extract] Card %d is missing name or price — skipping", i)
			return
		}

		raw := &models.RawListing{
			Name:         name,
			Price:        price,
			Address:      labeledValue(card, "所在地"),
			Access:       labeledValue(card, "沿線・駅"),
			Area:         labeledValue(card, "専有面積"),
			Layout:       labeledValue(card, "間取り"),
			Construction: labeledValue(card, "築年月"),
			URL:          detailURL(card),
			ScrapedAt:    time.Now(),
		}

		listings = append(listings, raw)
	})

	return listings, nil
}

// labeledValue finds the dt node whose text equals label and returns the
// text of its next dd sibling. An absent label yields an empty string.
func labeledValue(card *goquery.Selection, label string) string {
	var value string
	card.Find("dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		if strings.TrimSpace(dt.Text()) != label {
			return true
		}
		value = strings.TrimSpace(dt.NextAllFiltered("dd").First().Text())
		return false
	})
	return value
}

// detailURL extracts the href of the first anchor in the card, prefixing
// the site origin when the link is relative.
func detailURL(card *goquery.Selection) string {
	href, ok := card.Find("a").First().Attr("href")
	if !ok || href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return siteOrigin + href
}
