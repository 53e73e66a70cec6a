package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"ForexSentinel/internal/model"
)

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	Client  *http.Client
	BaseURL string
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL: "https://query1.finance.yahoo.com",
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooSymbol maps a six-letter pair to its Yahoo ticker (EURUSD -> EURUSD=X).
func yahooSymbol(symbol string) string {
	s := strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
	if len(s) == 6 && !strings.HasSuffix(s, "=X") {
		return s + "=X"
	}
	return s
}

// yahooInterval is the chart interval fetched for a timeframe and the
// duration its bars are aggregated into afterwards (0 when native).
type yahooInterval struct {
	interval  string
	aggregate time.Duration
	maxRange  time.Duration
}

var yahooIntervals = map[string]yahooInterval{
	"M1":  {"1m", 0, 7 * 24 * time.Hour},
	"M5":  {"5m", 0, 60 * 24 * time.Hour},
	"M15": {"15m", 0, 60 * 24 * time.Hour},
	"M30": {"30m", 0, 60 * 24 * time.Hour},
	"H1":  {"60m", 0, 730 * 24 * time.Hour},
	"H4":  {"60m", 4 * time.Hour, 730 * 24 * time.Hour},
	"D1":  {"1d", 0, 0},
}

var yahooRanges = []struct {
	name string
	span time.Duration
}{
	{"1d", 24 * time.Hour},
	{"5d", 5 * 24 * time.Hour},
	{"1mo", 30 * 24 * time.Hour},
	{"3mo", 90 * 24 * time.Hour},
	{"6mo", 180 * 24 * time.Hour},
	{"1y", 365 * 24 * time.Hour},
	{"2y", 730 * 24 * time.Hour},
}

// chartRange picks the smallest Yahoo range covering count bars, allowing
// for weekends, capped by the interval's history limit.
func chartRange(tf time.Duration, count int, limit time.Duration) string {
	want := tf * time.Duration(count) * 3 / 2
	for _, r := range yahooRanges {
		if limit > 0 && r.span > limit {
			break
		}
		if r.span >= want {
			return r.name
		}
	}
	for i := len(yahooRanges) - 1; i >= 0; i-- {
		if limit == 0 || yahooRanges[i].span <= limit {
			return yahooRanges[i].name
		}
	}
	return "1d"
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}

func (f *YahooFetcher) FetchBars(ctx context.Context, symbol, timeframe string, count int) ([]model.Bar, error) {
	tf, err := TimeframeDuration(timeframe)
	if err != nil {
		return nil, err
	}
	iv := yahooIntervals[strings.ToUpper(timeframe)]

	need := count
	if iv.aggregate > 0 {
		need = count * int(iv.aggregate/time.Hour)
	}
	bars, err := f.fetchChart(ctx, symbol, iv.interval, chartRange(tf, need, iv.maxRange))
	if err != nil {
		return nil, err
	}
	if iv.aggregate > 0 {
		bars = aggregateBars(bars, iv.aggregate)
	}
	return tail(bars, count), nil
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) ([]model.Bar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(yahooSymbol(symbol)), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.Bar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o, h, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == 0 || h == 0 || l == 0 || c == 0 {
			continue // market closed
		}
		bars = append(bars, model.Bar{
			Timestamp: ts * 1000,
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    at(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	return bars, nil
}
