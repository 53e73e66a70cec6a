package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"ForexSentinel/internal/model"
)

// FeedFetcher implements Fetcher against a REST bar feed serving
// GET /api/v1/bars?symbol=&timeframe=&limit= as a JSON array of bars with
// millisecond timestamps.
type FeedFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewFeedFetcher creates a new fetcher with optional proxy support.
func NewFeedFetcher(baseURL, apiKey, proxyURL string) *FeedFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &FeedFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *FeedFetcher) Name() string { return "feed" }

// FetchBars tries the timeframe endpoint first; if the feed cannot serve it,
// one-minute bars are fetched and aggregated.
func (f *FeedFetcher) FetchBars(ctx context.Context, symbol, timeframe string, count int) ([]model.Bar, error) {
	tf, err := TimeframeDuration(timeframe)
	if err != nil {
		return nil, err
	}

	bars, err := f.fetchBars(ctx, symbol, timeframe, count)
	if err == nil || tf == time.Minute {
		return bars, err
	}

	perBar := int(tf / time.Minute)
	minute, minuteErr := f.fetchBars(ctx, symbol, "M1", count*perBar)
	if minuteErr != nil {
		return nil, fmt.Errorf("%s fetch failed: %w; M1 fallback also failed: %w", timeframe, err, minuteErr)
	}
	return tail(aggregateBars(minute, tf), count), nil
}

func (f *FeedFetcher) fetchBars(ctx context.Context, symbol, timeframe string, limit int) ([]model.Bar, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("timeframe", timeframe)
	q.Set("limit", fmt.Sprint(limit))
	endpoint := fmt.Sprintf("%s/api/v1/bars?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}

	var bars []model.Bar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	return bars, nil
}
