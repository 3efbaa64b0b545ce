package suumo

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"suumo-scraper/config"
	"suumo-scraper/utils"
)

// FetchError is the terminal failure returned after the retry budget for
// one URL is exhausted. It wraps the last underlying cause.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher performs HTTP GETs with browser-like headers and bounded
// exponential-backoff retries. Any transport failure or non-2xx status
// counts as a retryable failure; an empty 200 body does not.
type Fetcher struct {
	client    *http.Client
	retry     *utils.RetryConfig
	userAgent string
	logger    *utils.Logger
}

// NewFetcher creates a Fetcher with timeouts and retry policy from cfg.
func NewFetcher(cfg *config.Config, logger *utils.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: time.Duration(cfg.FetchTimeoutSec) * time.Second,
		},
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Duration(cfg.RetryBaseDelaySec) * time.Second,
			Logger:      logger,
		},
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// Fetch retrieves the markup at url, retrying on failure.
func (f *Fetcher) Fetch(url string) ([]byte, error) {
	var body []byte

	err := f.retry.Do("fetch", func() error {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "ja-JP,ja;q=0.9,en-US;q=0.8,en;q=0.7")

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return body, nil
}
