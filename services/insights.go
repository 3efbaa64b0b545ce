package services

import (
	"fmt"
	"sort"
	"strings"

	"suumo-scraper/models"
	"suumo-scraper/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes market statistics over the canonical listing set.
func (s *InsightService) Generate(listings []*models.Listing) *models.MarketReport {
	report := &models.MarketReport{
		ListingsByStation: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var priced []*models.Listing
	var perSqmTotal float64
	perSqmCount := 0

	for _, l := range listings {
		if l.Price > 0 {
			priced = append(priced, l)
			if l.Area > 0 {
				perSqmTotal += float64(l.Price) / l.Area
				perSqmCount++
			}
		}
		if l.StationName != "" {
			report.ListingsByStation[l.StationName]++
		}
	}

	if len(priced) > 0 {
		report.MinPrice = priced[0].Price
		report.MaxPrice = priced[0].Price
		var total int
		for _, l := range priced {
			total += l.Price
			if l.Price < report.MinPrice {
				report.MinPrice = l.Price
			}
			if l.Price >= report.MaxPrice {
				report.MaxPrice = l.Price
				report.MostExpensive = l
			}
		}
		report.AveragePrice = round2(float64(total) / float64(len(priced)))
	}

	if perSqmCount > 0 {
		report.AveragePerSqm = round2(perSqmTotal / float64(perSqmCount))
	}

	// Top 5 newest buildings
	byAge := make([]*models.Listing, len(listings))
	copy(byAge, listings)
	sort.SliceStable(byAge, func(i, j int) bool {
		return byAge[i].Age < byAge[j].Age
	})
	if len(byAge) > 5 {
		report.Newest = byAge[:5]
	} else {
		report.Newest = byAge
	}

	return report
}

func (s *InsightService) Print(r *models.MarketReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 SUUMO MARKET INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Canonical listings : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Println()

	// Price Stats
	fmt.Printf("\033[1;33m  Price Statistics (万円)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.AveragePrice > 0 {
		fmt.Printf("  Average price : \033[1;32m%.1f\033[0m\n", r.AveragePrice)
		fmt.Printf("  Minimum price : \033[1;32m%d\033[0m\n", r.MinPrice)
		fmt.Printf("  Maximum price : \033[1;32m%d\033[0m\n", r.MaxPrice)
		fmt.Printf("  Average 万円/m2 : \033[1;32m%.2f\033[0m\n", r.AveragePerSqm)
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	// Most Expensive
	if r.MostExpensive != nil {
		fmt.Printf("\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostExpensive.Name, 50))
		fmt.Printf("  Station : %s「%s」徒歩%d分\n",
			r.MostExpensive.Line, r.MostExpensive.StationName, r.MostExpensive.Minutes)
		fmt.Printf("  Price   : \033[1;31m%d万円\033[0m (%s / %.1fm2)\n",
			r.MostExpensive.Price, r.MostExpensive.Layout, r.MostExpensive.Area)
		fmt.Println()
	}

	// Newest buildings
	fmt.Printf("\033[1;33m  Top 5 Newest Buildings\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.Newest) == 0 {
		fmt.Printf("  No listings found\n")
	} else {
		for i, l := range r.Newest {
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m築%d年\033[0m\n",
				i+1, truncate(l.Name, 38), l.Age)
		}
	}
	fmt.Println()

	// Listings by Station
	fmt.Printf("\033[1;33m  Listings by Station\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.ListingsByStation) == 0 {
		fmt.Printf("  No station data\n")
	} else {
		type stationCount struct {
			station string
			count   int
		}
		var stations []stationCount
		for st, cnt := range r.ListingsByStation {
			stations = append(stations, stationCount{st, cnt})
		}
		sort.Slice(stations, func(i, j int) bool {
			if stations[i].count != stations[j].count {
				return stations[i].count > stations[j].count
			}
			return stations[i].station < stations[j].station
		})
		for _, sc := range stations {
			bar := strings.Repeat("█", sc.count)
			fmt.Printf("  %-20s %s (%d)\n", truncate(sc.station, 18), bar, sc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
