package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"suumo-scraper/models"
	"suumo-scraper/utils"
)

// Grouper collapses duplicate postings of the same physical unit. The
// same property is regularly re-listed under a fresh id, so records are
// partitioned by the configured columns and only the member with the
// smallest id survives.
type Grouper struct {
	logger *utils.Logger
}

// NewGrouper creates a Grouper with the given logger.
func NewGrouper(logger *utils.Logger) *Grouper {
	return &Grouper{logger: logger}
}

// Dedup partitions listings by equality of the groupCols tuple and keeps
// the minimum-id member of each partition. The result is sorted by id.
// Running Dedup on its own output yields the identical set.
func (g *Grouper) Dedup(listings []*models.Listing, groupCols []string) ([]*models.Listing, error) {
	if len(groupCols) == 0 {
		return nil, fmt.Errorf("grouping: no group columns given")
	}

	winners := make(map[string]*models.Listing)
	for _, l := range listings {
		key, err := groupKey(l, groupCols)
		if err != nil {
			return nil, err
		}
		best, ok := winners[key]
		if !ok || lessID(l.ID, best.ID) {
			winners[key] = l
		}
	}

	result := make([]*models.Listing, 0, len(winners))
	for _, l := range winners {
		result = append(result, l)
	}
	SortByID(result)

	g.logger.Info("[grouping] Collapsed %d → %d listings (group by %s)",
		len(listings), len(result), strings.Join(groupCols, ", "))
	return result, nil
}

// SortByID orders listings by id, numerically when possible.
func SortByID(listings []*models.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return lessID(listings[i].ID, listings[j].ID)
	})
}

// lessID compares two listing ids. Ids are decimal tokens, so they are
// compared numerically when both parse; anything else (including the
// empty id) falls back to lexicographic order. The order is total.
func lessID(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

// groupKey builds the partition key from the named columns. The unit
// separator keeps distinct tuples from colliding after joining.
func groupKey(l *models.Listing, cols []string) (string, error) {
	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		v, err := columnValue(l, col)
		if err != nil {
			return "", err
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, "\x1f"), nil
}

func columnValue(l *models.Listing, col string) (string, error) {
	switch col {
	case "name":
		return l.Name, nil
	case "price":
		return strconv.Itoa(l.Price), nil
	case "age":
		return strconv.Itoa(l.Age), nil
	case "line":
		return l.Line, nil
	case "station_name":
		return l.StationName, nil
	case "minutes":
		return strconv.Itoa(l.Minutes), nil
	case "layout":
		return l.Layout, nil
	case "area":
		return strconv.FormatFloat(l.Area, 'f', -1, 64), nil
	case "address":
		return l.Address, nil
	}
	return "", fmt.Errorf("grouping: unknown column %q", col)
}
