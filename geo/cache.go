package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"suumo-scraper/utils"
)

// Coordinates is a resolved latitude/longitude pair. The JSON tags match
// the on-disk cache format.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Cache is the file-backed geocoding history, a JSON object mapping
// listing id → {lat, lon}. A corrupt file degrades to an empty cache and
// malformed entries are dropped; loading never fails the run.
type Cache struct {
	path   string
	logger *utils.Logger
}

// NewCache creates a Cache backed by the file at path. The file is read
// and rewritten on demand; nothing is held open between calls.
func NewCache(path string, logger *utils.Logger) *Cache {
	return &Cache{path: path, logger: logger}
}

// Load reads the cache file and returns every well-typed entry. The
// second return reports whether malformed content was encountered and
// dropped, so the caller can rewrite the pruned file.
func (c *Cache) Load() (map[string]Coordinates, bool) {
	entries := make(map[string]Coordinates)

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("[geocache] Cannot read %s, starting empty: %v", c.path, err)
		}
		return entries, false
	}

	var rawEntries map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawEntries); err != nil {
		c.logger.Warn("[geocache] %s is not a valid JSON object, starting empty: %v", c.path, err)
		return entries, true
	}

	pruned := false
	for id, raw := range rawEntries {
		var entry struct {
			Lat *float64 `json:"lat"`
			Lon *float64 `json:"lon"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil || entry.Lat == nil || entry.Lon == nil {
			c.logger.Warn("[geocache] Dropping malformed entry for id %s", id)
			pruned = true
			continue
		}
		entries[id] = Coordinates{Lat: *entry.Lat, Lon: *entry.Lon}
	}

	return entries, pruned
}

// Save writes all entries back to the cache file as indented UTF-8 JSON.
func (c *Cache) Save(entries map[string]Coordinates) error {
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("geocache: marshal: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("geocache: create dir: %w", err)
		}
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("geocache: write %s: %w", c.path, err)
	}
	return nil
}
