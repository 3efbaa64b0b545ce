package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"suumo-scraper/models"
	"suumo-scraper/utils"
)

var (
	// okuRegexp captures the 億 (hundred-million) price component
	okuRegexp = regexp.MustCompile(`(\d+(?:\.\d+)?)億`)
	// manRegexp captures the 万 (ten-thousand) price component
	manRegexp = regexp.MustCompile(`(\d+(?:\.\d+)?)万`)
	// stationRegexp captures the station name inside corner brackets
	stationRegexp = regexp.MustCompile(`「(.*?)」`)
	// minutesRegexp captures walking minutes between 徒歩 and 分
	minutesRegexp = regexp.MustCompile(`徒歩(\d+)分`)
	// areaRegexp captures the floor area preceding the m2 token
	areaRegexp = regexp.MustCompile(`(\d+(?:\.\d+)?)m2`)
	// constructionRegexp captures year and month from 築年月 text
	constructionRegexp = regexp.MustCompile(`(\d{4})年(\d{1,2})月`)
	// idRegexp captures the listing id token embedded in the detail URL
	idRegexp = regexp.MustCompile(`nc_(\d+)/`)
)

// Formatter transforms RawListings into typed, validated Listings.
type Formatter struct {
	logger *utils.Logger
	now    func() time.Time
}

// NewFormatter creates a Formatter with the given logger.
func NewFormatter(logger *utils.Logger) *Formatter {
	return &Formatter{logger: logger, now: time.Now}
}

// Format processes raw listings and returns normalized records. A record
// missing any of price/minutes/area/age is dropped; a missing id is
// tolerated and left empty.
func (f *Formatter) Format(raw []*models.RawListing) []*models.Listing {
	result := make([]*models.Listing, 0, len(raw))

	for _, r := range raw {
		if r.Price == "" {
			f.logger.Debug("[formatter] Dropping %q: no price text", r.Name)
			continue
		}

		minutes, ok := parseMinutes(r.Access)
		if !ok {
			f.logger.Debug("[formatter] Dropping %q: no 徒歩 token in access %q", r.Name, r.Access)
			continue
		}

		area, ok := parseArea(r.Area)
		if !ok {
			f.logger.Debug("[formatter] Dropping %q: no m2 token in area %q", r.Name, r.Area)
			continue
		}

		age, ok := f.parseAge(r.Construction)
		if !ok {
			f.logger.Debug("[formatter] Dropping %q: unparsable 築年月 %q", r.Name, r.Construction)
			continue
		}

		listing := &models.Listing{
			ID:          extractID(r.URL),
			Name:        r.Name,
			Price:       parsePrice(r.Price),
			Age:         age,
			Line:        parseLine(r.Access),
			StationName: parseStation(r.Access),
			Minutes:     minutes,
			Layout:      r.Layout,
			Area:        area,
			Address:     r.Address,
			URL:         r.URL,
		}

		result = append(result, listing)
	}

	f.logger.Info("[formatter] Formatted %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// parsePrice converts a price string into an integer in 万円 units.
// The 億 component counts as 10000×, combined additively with the 万
// component. A string with neither component yields 0.
// Examples:
//
//	"3500万円"     → 3500
//	"1億2000万円"  → 22000
//	"2億円"        → 20000
func parsePrice(raw string) int {
	s := strings.ReplaceAll(raw, "円", "")

	var oku, man float64
	if m := okuRegexp.FindStringSubmatch(s); m != nil {
		oku, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := manRegexp.FindStringSubmatch(s); m != nil {
		man, _ = strconv.ParseFloat(m[1], 64)
	}
	return int(oku*10000 + man)
}

// parseStation returns the substring inside the first 「」 pair.
func parseStation(access string) string {
	if m := stationRegexp.FindStringSubmatch(access); m != nil {
		return m[1]
	}
	return ""
}

// parseLine returns the access text up to the first 「.
func parseLine(access string) string {
	if idx := strings.Index(access, "「"); idx >= 0 {
		return access[:idx]
	}
	return access
}

func parseMinutes(access string) (int, bool) {
	m := minutesRegexp.FindStringSubmatch(access)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseArea(raw string) (float64, bool) {
	m := areaRegexp.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseAge computes the building age as current year minus the year in
// the 築年月 text.
func (f *Formatter) parseAge(construction string) (int, bool) {
	m := constructionRegexp.FindStringSubmatch(construction)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	age := f.now().Year() - year
	if age < 0 {
		return 0, false
	}
	return age, true
}

// extractID pulls the numeric token out of a detail URL like
// ".../nc_12345678/". No token means no id; the record is kept anyway.
func extractID(url string) string {
	if m := idRegexp.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}
