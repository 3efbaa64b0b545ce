package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"suumo-scraper/config"
	"suumo-scraper/geo"
	"suumo-scraper/models"
	"suumo-scraper/scraper/suumo"
	"suumo-scraper/services"
	"suumo-scraper/storage"
	"suumo-scraper/utils"
)

// options holds the command-line flags. Everything else comes from the
// environment (config.Load) and the YAML case settings.
type options struct {
	MaxPages    int  `long:"max-pages" env:"MAX_PAGES" default:"1000" description:"Page ceiling for the walk"`
	DryRun      bool `long:"dry-run" description:"Skip geocoding provider calls, leave coordinates empty"`
	SkipGeocode bool `long:"skip-geocode" description:"Skip the geocoding step entirely"`
	SkipDB      bool `long:"skip-db" description:"Skip the PostgreSQL export"`

	Args struct {
		CaseName string `positional-arg-name:"case" description:"Case name from setting.yml"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== SUUMO Scraping System starting ===")
	logger.Info("Case: %s | max pages: %d | dry-run: %v", opts.Args.CaseName, opts.MaxPages, opts.DryRun)

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		logger.Error("Failed to load case settings: %v", err)
		os.Exit(1)
	}
	caseCfg, err := settings.Case(opts.Args.CaseName)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	csvWriter := storage.NewCSVWriter(cfg.DataDir, opts.Args.CaseName)

	// Walk the search-result pages
	scraper := suumo.New(cfg, logger)
	rawListings, err := scraper.WalkAll(caseCfg.BaseURL, opts.MaxPages)
	if err != nil {
		logger.Error("Scrape failed: %v", err)
		os.Exit(1)
	}
	if len(rawListings) == 0 {
		logger.Error("No listings were scraped. Exiting.")
		os.Exit(1)
	}

	if path, err := csvWriter.WriteRaw(rawListings); err != nil {
		logger.Error("Lake CSV write failed: %v", err)
	} else {
		logger.Info("Raw listings saved to %s", path)
	}

	// Normalize
	formatter := services.NewFormatter(logger)
	formatted := formatter.Format(rawListings)
	if len(formatted) == 0 {
		logger.Error("All listings were dropped during formatting. Exiting.")
		os.Exit(1)
	}
	services.SortByID(formatted)

	if path, err := csvWriter.WriteFormatted(formatted); err != nil {
		logger.Error("Formatted CSV write failed: %v", err)
	} else {
		logger.Info("Formatted listings saved to %s", path)
	}

	// Collapse duplicate postings
	grouper := services.NewGrouper(logger)
	grouped, err := grouper.Dedup(formatted, caseCfg.GroupCols)
	if err != nil {
		logger.Error("Grouping failed: %v", err)
		os.Exit(1)
	}

	// Enrich with coordinates
	if !opts.SkipGeocode {
		addCoordinates(grouped, cfg, opts.DryRun, logger)
	}

	if path, err := csvWriter.WriteGrouped(grouped); err != nil {
		logger.Error("Grouped CSV write failed: %v", err)
	} else {
		logger.Info("Canonical listings saved to %s", path)
	}

	insightInput := grouped

	if !opts.SkipDB {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure Docker is running: docker compose up -d")
			os.Exit(1)
		}
		defer pgWriter.Close()

		var sink storage.ListingWriter = pgWriter
		if err := sink.Write(grouped); err != nil {
			logger.Error("PostgreSQL write failed: %v", err)
		} else {
			logger.Info("Canonical listings stored in PostgreSQL (table: listings)")
		}

		if dbListings, err := pgWriter.FetchAll(); err != nil {
			logger.Error("Failed to fetch listings from DB for insights: %v", err)
		} else if len(dbListings) > 0 {
			insightInput = dbListings
		}
	}

	insightSvc := services.NewInsightService(logger)
	report := insightSvc.Generate(insightInput)
	insightSvc.Print(report)

	fmt.Printf("  Done. %d raw → %d formatted → %d canonical listings (case: %s)\n\n",
		len(rawListings), len(formatted), len(grouped), opts.Args.CaseName)
}

// addCoordinates resolves coordinates for each canonical listing through
// the cached geocoder. Per-record failures are logged and skipped; the
// batch continues.
func addCoordinates(listings []*models.Listing, cfg *config.Config, dryRun bool, logger *utils.Logger) {
	if dryRun {
		logger.Info("[geocoder] Dry run — skipping provider calls")
		return
	}
	if cfg.GoogleMapsAPIKey == "" {
		logger.Warn("[geocoder] GOOGLE_MAPS_API_KEY not set — skipping geocoding")
		return
	}

	geocoder := geo.NewGeocoder(cfg.GoogleMapsAPIKey, cfg.GeocodeCachePath, logger)

	resolved := 0
	for _, l := range listings {
		coords, err := geocoder.Resolve(l.Address, l.ID)
		if err != nil {
			logger.Warn("[geocoder] id=%s address=%q: %v", l.ID, l.Address, err)
			continue
		}
		l.Lat = coords.Lat
		l.Lon = coords.Lon
		l.Geocoded = true
		resolved++
	}
	logger.Info("[geocoder] Resolved %d/%d listings", resolved, len(listings))
}
