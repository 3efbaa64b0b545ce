package geo

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"suumo-scraper/utils"
)

func providerServer(t *testing.T, calls *int32, lat, lng float64) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Query().Get("address") == "" {
			t.Error("provider called without an address")
		}
		fmt.Fprintf(w, `{"status":"OK","results":[{"geometry":{"location":{"lat":%v,"lng":%v}}}]}`, lat, lng)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestGeocoder(t *testing.T, endpoint, cachePath string) *Geocoder {
	t.Helper()
	g := NewGeocoder("test-key", cachePath, utils.NewLogger())
	g.endpoint = endpoint
	return g
}

func TestResolveUsesCacheOnSecondCall(t *testing.T) {
	var calls int32
	ts := providerServer(t, &calls, 35.658, 139.701)
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	g := newTestGeocoder(t, ts.URL, cachePath)

	first, err := g.Resolve("東京都渋谷区渋谷1-1-1", "12345678")
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	second, err := g.Resolve("東京都渋谷区渋谷1-1-1", "12345678")
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}

	if first != second {
		t.Errorf("cache inconsistency: %+v vs %+v", first, second)
	}
	if first.Lat != 35.658 || first.Lon != 139.701 {
		t.Errorf("coordinates: got %+v", first)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected exactly 1 provider call, got %d", n)
	}
}

func TestResolveWithoutIDSkipsCache(t *testing.T) {
	var calls int32
	ts := providerServer(t, &calls, 35.0, 139.0)
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	g := newTestGeocoder(t, ts.URL, cachePath)

	for i := 0; i < 2; i++ {
		if _, err := g.Resolve("東京都中野区中野2-2-2", ""); err != nil {
			t.Fatalf("Resolve without id: %v", err)
		}
	}

	// Without an id there is no cache key, so every call hits the provider.
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected 2 provider calls, got %d", n)
	}
}

func TestResolveBlankArguments(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")

	g := newTestGeocoder(t, "http://invalid.localhost", cachePath)
	if _, err := g.Resolve("   ", "1"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("blank address: got %v, want ErrInvalidArgument", err)
	}

	g = NewGeocoder("", cachePath, utils.NewLogger())
	if _, err := g.Resolve("東京都渋谷区", "1"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("blank API key: got %v, want ErrInvalidArgument", err)
	}
}

func TestResolveProviderFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero results", `{"status":"ZERO_RESULTS","results":[]}`},
		{"denied", `{"status":"REQUEST_DENIED","error_message":"bad key"}`},
		{"malformed body", `{{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			g := newTestGeocoder(t, ts.URL, filepath.Join(t.TempDir(), "cache.json"))
			if _, err := g.Resolve("東京都渋谷区", "1"); err == nil {
				t.Error("expected a failure result")
			}
		})
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	c := NewCache(cachePath, utils.NewLogger())

	entries := map[string]Coordinates{
		"1": {Lat: 35.658, Lon: 139.701},
		"2": {Lat: 34.702, Lon: 135.495},
	}
	if err := c.Save(entries); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, pruned := c.Load()
	if pruned {
		t.Error("round-trip should not prune anything")
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(loaded))
	}
	if loaded["1"] != entries["1"] || loaded["2"] != entries["2"] {
		t.Errorf("entries differ after round-trip: %+v", loaded)
	}
}

func TestCacheToleratesCorruptFile(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(cachePath, []byte("this is not json"), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewCache(cachePath, utils.NewLogger())
	entries, pruned := c.Load()
	if len(entries) != 0 {
		t.Errorf("corrupt file should load as empty, got %d entries", len(entries))
	}
	if !pruned {
		t.Error("corrupt file should be reported as pruned")
	}
}

func TestCacheSkipsMalformedEntries(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	content := `{
		"1": {"lat": "not-a-number", "lon": 139.7},
		"2": {"lat": 35.658},
		"3": {"lat": 35.658, "lon": 139.701}
	}`
	if err := os.WriteFile(cachePath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewCache(cachePath, utils.NewLogger())
	entries, pruned := c.Load()
	if !pruned {
		t.Error("malformed entries should be reported as pruned")
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the well-typed entry, got %d", len(entries))
	}
	if entries["3"].Lat != 35.658 || entries["3"].Lon != 139.701 {
		t.Errorf("entry 3: got %+v", entries["3"])
	}
}

func TestResolveEvictsMalformedEntryAndReResolves(t *testing.T) {
	var calls int32
	ts := providerServer(t, &calls, 35.1, 139.1)
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(cachePath, []byte(`{"9": {"lat": "broken", "lon": "broken"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	g := newTestGeocoder(t, ts.URL, cachePath)
	coords, err := g.Resolve("東京都渋谷区", "9")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if coords.Lat != 35.1 || coords.Lon != 139.1 {
		t.Errorf("coordinates: got %+v", coords)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("malformed entry must be re-resolved via the provider, got %d calls", n)
	}

	// The bad entry is gone from disk and replaced by the fresh pair.
	entries, pruned := NewCache(cachePath, utils.NewLogger()).Load()
	if pruned {
		t.Error("cache file should be clean after eviction")
	}
	if entries["9"] != (Coordinates{Lat: 35.1, Lon: 139.1}) {
		t.Errorf("persisted entry: got %+v", entries["9"])
	}
}
