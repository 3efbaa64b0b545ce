package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"suumo-scraper/utils"
)

const googleGeocodeEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// ErrInvalidArgument is returned when the address or API key is blank.
// It is raised before any cache or network access.
var ErrInvalidArgument = errors.New("geo: address or API key is blank")

// geocodeResponse mirrors the fields of the Google Maps Geocoding API
// response that this client consumes.
type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// Geocoder resolves street addresses to coordinates through the Google
// Maps Geocoding API, with a file-backed cache keyed by listing id.
// Provider failures are returned as-is and never retried here; retrying
// is the caller's call. The cache file is not safe for concurrent
// writers from multiple processes.
type Geocoder struct {
	apiKey   string
	cache    *Cache
	client   *http.Client
	endpoint string
	logger   *utils.Logger
}

// NewGeocoder creates a Geocoder using the given API key and cache file.
func NewGeocoder(apiKey, cachePath string, logger *utils.Logger) *Geocoder {
	return &Geocoder{
		apiKey:   apiKey,
		cache:    NewCache(cachePath, logger),
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: googleGeocodeEndpoint,
		logger:   logger,
	}
}

// Resolve returns the coordinates for address. When id is non-empty the
// cache is consulted first and a fresh result is persisted under it, so
// a second Resolve for the same id never reaches the provider.
func (g *Geocoder) Resolve(address, id string) (Coordinates, error) {
	if strings.TrimSpace(address) == "" || strings.TrimSpace(g.apiKey) == "" {
		return Coordinates{}, ErrInvalidArgument
	}

	entries, pruned := g.cache.Load()
	if pruned {
		// Evict malformed content from disk right away so the next run
		// starts from a clean file even if this one stops early.
		if err := g.cache.Save(entries); err != nil {
			g.logger.Warn("[geocoder] Failed to rewrite pruned cache: %v", err)
		}
	}

	if id != "" {
		if coords, ok := entries[id]; ok {
			return coords, nil
		}
	}

	coords, err := g.geocode(address)
	if err != nil {
		return Coordinates{}, err
	}

	if id != "" {
		entries[id] = coords
		if err := g.cache.Save(entries); err != nil {
			g.logger.Warn("[geocoder] Failed to persist cache entry for id %s: %v", id, err)
		} else {
			g.logger.Info("[geocoder] Cached coordinates for id %s", id)
		}
	}

	return coords, nil
}

// geocode performs one provider call for address.
func (g *Geocoder) geocode(address string) (Coordinates, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.apiKey)

	resp, err := g.client.Get(g.endpoint + "?" + q.Encode())
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocoder: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("geocoder: unexpected status %d", resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Coordinates{}, fmt.Errorf("geocoder: decode response: %w", err)
	}

	switch {
	case body.Status == "ZERO_RESULTS" || (body.Status == "OK" && len(body.Results) == 0):
		return Coordinates{}, fmt.Errorf("geocoder: no result for address")
	case body.Status != "OK":
		return Coordinates{}, fmt.Errorf("geocoder: provider status %s: %s", body.Status, body.ErrorMessage)
	}

	loc := body.Results[0].Geometry.Location
	return Coordinates{Lat: loc.Lat, Lon: loc.Lng}, nil
}
