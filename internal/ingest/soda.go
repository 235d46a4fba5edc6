package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/signalsfoundry/contact-graph-router/model"
)

const (
	defaultSODABaseURL = "https://data.nasa.gov/resource"
	defaultSODALimit   = 50000
	sodaUserAgent      = "contact-graph-router/1.0"
)

// SODAConfig describes a remote SODA dataset holding contact rows in the
// standard nine-column shape.
type SODAConfig struct {
	DatasetID string
	// AppToken, when set, is sent as the X-App-Token header to raise the
	// API rate limits.
	AppToken string
	// Limit caps the number of rows requested; defaults to 50000.
	Limit int
	// BaseURL overrides the SODA endpoint, mainly for tests.
	BaseURL string
	// HTTPClient overrides the default client (10s timeout).
	HTTPClient *http.Client
}

// FetchSODA downloads a contact plan from a SODA dataset as CSV and
// parses it with the standard lenient row parser (the CSV header row is
// simply skipped as a malformed row). An empty result is not an error;
// callers typically fall back to a local plan file when no contacts
// arrive.
func FetchSODA(ctx context.Context, cfg SODAConfig) ([]model.Contact, int, error) {
	if cfg.DatasetID == "" {
		return nil, 0, fmt.Errorf("soda: dataset id is required")
	}

	base := cfg.BaseURL
	if base == "" {
		base = defaultSODABaseURL
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultSODALimit
	}

	query := url.Values{}
	query.Set("$select", "id,from,to,t_start,t_end,owlt,rate_bps,setup_s,residual_bytes")
	query.Set("$limit", fmt.Sprintf("%d", limit))
	endpoint := fmt.Sprintf("%s/%s.csv?%s", base, url.PathEscape(cfg.DatasetID), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("soda: build request: %w", err)
	}
	req.Header.Set("User-Agent", sodaUserAgent)
	if cfg.AppToken != "" {
		req.Header.Set("X-App-Token", cfg.AppToken)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("soda: fetch dataset %s: %w", cfg.DatasetID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, 0, fmt.Errorf("soda: dataset %s: unexpected status %d", cfg.DatasetID, resp.StatusCode)
	}

	contacts, skipped, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, skipped, fmt.Errorf("soda: dataset %s: %w", cfg.DatasetID, err)
	}
	return contacts, skipped, nil
}
