package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"suumo-scraper/models"
)

var jst = time.FixedZone("JST", 9*60*60)

// CSVWriter dumps each pipeline stage to data/<case>/<stage>/<date>.csv.
// Stage files are truncated on every run; the date in the filename (JST)
// keeps one snapshot per day.
type CSVWriter struct {
	baseDir  string
	caseName string
	now      func() time.Time
}

// NewCSVWriter creates a CSVWriter rooted at baseDir for the given case.
func NewCSVWriter(baseDir, caseName string) *CSVWriter {
	return &CSVWriter{baseDir: baseDir, caseName: caseName, now: time.Now}
}

// WriteRaw writes the lake stage: raw listings exactly as extracted.
func (w *CSVWriter) WriteRaw(listings []*models.RawListing) (string, error) {
	header := []string{
		"name", "price", "address", "access", "area", "layout", "yyyymm_construction", "url", "scraped_at",
	}
	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, []string{
			l.Name, l.Price, l.Address, l.Access, l.Area, l.Layout, l.Construction,
			l.URL, l.ScrapedAt.Format(time.RFC3339),
		})
	}
	return w.writeStage("lake", header, rows)
}

// WriteFormatted writes the formatted stage: normalized listings.
func (w *CSVWriter) WriteFormatted(listings []*models.Listing) (string, error) {
	return w.writeStage("formatted", listingHeader(false), listingRows(listings, false))
}

// WriteGrouped writes the grouped stage: canonical listings with any
// resolved coordinates appended.
func (w *CSVWriter) WriteGrouped(listings []*models.Listing) (string, error) {
	return w.writeStage("grouped", listingHeader(true), listingRows(listings, true))
}

func (w *CSVWriter) writeStage(stage string, header []string, rows [][]string) (string, error) {
	dir := filepath.Join(w.baseDir, w.caseName, stage)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("csv: create %s dir: %w", stage, err)
	}

	path := filepath.Join(dir, w.now().In(jst).Format("20060102")+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("csv: write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("csv: write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("csv: flush: %w", err)
	}
	return path, nil
}

func listingHeader(withCoords bool) []string {
	header := []string{
		"id", "name", "price", "age", "line", "station_name", "minutes", "layout", "area", "address", "url",
	}
	if withCoords {
		header = append(header, "lat", "lon")
	}
	return header
}

func listingRows(listings []*models.Listing, withCoords bool) [][]string {
	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		row := []string{
			l.ID,
			l.Name,
			strconv.Itoa(l.Price),
			strconv.Itoa(l.Age),
			l.Line,
			l.StationName,
			strconv.Itoa(l.Minutes),
			l.Layout,
			strconv.FormatFloat(l.Area, 'f', -1, 64),
			l.Address,
			l.URL,
		}
		if withCoords {
			lat, lon := "", ""
			if l.Geocoded {
				lat = strconv.FormatFloat(l.Lat, 'f', -1, 64)
				lon = strconv.FormatFloat(l.Lon, 'f', -1, 64)
			}
			row = append(row, lat, lon)
		}
		rows = append(rows, row)
	}
	return rows
}
