// Package filings integrates the SEC EDGAR filing source: symbol
// resolution, latest-filing metadata, and full-text retrieval.
// API Documentation: https://www.sec.gov/developer
package filings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"quartercache/pkg/core/store"
	"quartercache/pkg/models"
)

const (
	// SEC EDGAR API endpoints
	submissionsURL = "https://data.sec.gov/submissions/CIK%s.json"
	archiveURL     = "https://www.sec.gov/Archives/edgar/data/%s/%s/%s"
	tickerMapURL   = "https://www.sec.gov/files/company_tickers.json"

	// Required User-Agent per SEC guidelines
	defaultUserAgent = "QuarterCache/1.0 (contact@example.com)"
)

// ErrNoFilings is returned when the source responds but carries no filing
// of the requested form type for the symbol. The engine treats it as
// terminal: no filing identity can be established at all.
var ErrNoFilings = errors.New("no matching filings for symbol")

// submissionsResponse mirrors the SEC company submissions payload.
// Filing attributes arrive as parallel arrays.
type submissionsResponse struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent struct {
			AccessionNumber []string `json:"accessionNumber"` // e.g., "0000320193-25-000057"
			FilingDate      []string `json:"filingDate"`      // e.g., "2025-08-07"
			Form            []string `json:"form"`            // "10-Q", "10-K", "8-K"
			PrimaryDocument []string `json:"primaryDocument"` // filename
		} `json:"recent"`
	} `json:"filings"`
}

// Client fetches filing metadata and documents from SEC EDGAR. The
// submissions index is cached in the ephemeral KV class so that
// metadata-only pre-checks stay cheap; document bodies are never cached
// here (the quarter store holds the extraction results instead).
type Client struct {
	httpClient *http.Client
	userAgent  string
	cache      store.KV

	mu   sync.RWMutex
	ciks map[string]string // symbol -> zero-padded CIK
}

// NewClient creates a filing source client. cache may be nil to disable
// index caching; userAgent falls back to the package default.
func NewClient(userAgent string, cache store.KV) *Client {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  userAgent,
		cache:      cache,
		ciks:       make(map[string]string),
	}
}

// GetLatestFiling returns the identity of the most recent filing of the
// given form type. With metadataOnly set, the (potentially large) document
// body is not retrieved; fullText is empty. The change detector's
// pre-check always runs metadata-only so unchanged filings cost one cached
// index read.
func (c *Client) GetLatestFiling(ctx context.Context, symbol, formType string, metadataOnly bool) (ref *models.FilingRef, fullText string, err error) {
	cik, err := c.lookupCIK(ctx, symbol)
	if err != nil {
		return nil, "", err
	}

	subs, err := c.fetchSubmissions(ctx, cik)
	if err != nil {
		return nil, "", err
	}

	recent := subs.Filings.Recent
	for i := range recent.AccessionNumber {
		if recent.Form[i] != formType {
			continue
		}

		filingDate, parseErr := time.Parse("2006-01-02", recent.FilingDate[i])
		if parseErr != nil {
			return nil, "", fmt.Errorf("unusable filing date %q: %w", recent.FilingDate[i], parseErr)
		}

		ref = &models.FilingRef{
			Symbol:          symbol,
			FormType:        formType,
			AccessionNumber: recent.AccessionNumber[i],
			FilingDate:      filingDate,
		}

		if metadataOnly {
			return ref, "", nil
		}

		fullText, err = c.fetchDocumentText(ctx, cik, recent.AccessionNumber[i], recent.PrimaryDocument[i])
		if err != nil {
			return nil, "", err
		}
		return ref, fullText, nil
	}

	return nil, "", fmt.Errorf("%w: %s %s", ErrNoFilings, symbol, formType)
}

// lookupCIK resolves a ticker symbol to its zero-padded CIK using the SEC
// ticker mapping file. Results are memoized per process.
func (c *Client) lookupCIK(ctx context.Context, symbol string) (string, error) {
	symbol = strings.ToUpper(symbol)

	c.mu.RLock()
	cik, ok := c.ciks[symbol]
	c.mu.RUnlock()
	if ok {
		return cik, nil
	}

	body, err := c.get(ctx, tickerMapURL, "application/json")
	if err != nil {
		return "", fmt.Errorf("failed to fetch ticker mapping: %w", err)
	}

	// Response structure: { "0": {"cik_str": 320193, "ticker": "AAPL", "title": "..."}, ... }
	var mapping map[string]struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(body, &mapping); err != nil {
		return "", fmt.Errorf("failed to parse ticker mapping: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range mapping {
		c.ciks[strings.ToUpper(entry.Ticker)] = fmt.Sprintf("%010d", entry.CIK)
	}
	cik, ok = c.ciks[symbol]
	if !ok {
		return "", fmt.Errorf("%w: ticker %s not in SEC database", ErrNoFilings, symbol)
	}
	return cik, nil
}

// fetchSubmissions retrieves the submissions index for a CIK, via the
// ephemeral KV cache when one is configured.
func (c *Client) fetchSubmissions(ctx context.Context, cik string) (*submissionsResponse, error) {
	cacheKey := "filingindex:" + cik

	if c.cache != nil {
		if data, found, _ := c.cache.Get(ctx, cacheKey); found {
			var subs submissionsResponse
			if err := json.Unmarshal(data, &subs); err == nil {
				return &subs, nil
			}
			// Corrupt cache entry: fall through and refetch.
		}
	}

	body, err := c.get(ctx, fmt.Sprintf(submissionsURL, cik), "application/json")
	if err != nil {
		return nil, fmt.Errorf("SEC submissions request failed: %w", err)
	}

	var subs submissionsResponse
	if err := json.Unmarshal(body, &subs); err != nil {
		return nil, fmt.Errorf("failed to parse SEC submissions: %w", err)
	}

	if c.cache != nil {
		c.cache.Set(ctx, cacheKey, body, store.TTLFilingIndex)
	}
	return &subs, nil
}

// get performs a GET with the SEC-required headers.
func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SEC returned status %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}
