package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ForexSentinel/internal/model"
)

func minuteBars(start int64, n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		p := 1.1000 + 0.0001*float64(i)
		bars[i] = model.Bar{
			Timestamp: start + int64(i)*60000,
			Open:      p,
			High:      p + 0.0002,
			Low:       p - 0.0002,
			Close:     p + 0.0001,
			Volume:    10,
		}
	}
	return bars
}

func TestTimeframeDuration(t *testing.T) {
	d, err := TimeframeDuration("h1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)

	_, err = TimeframeDuration("W1")
	assert.Error(t, err)
}

func TestAggregateBars(t *testing.T) {
	bars := minuteBars(0, 10)
	out := aggregateBars(bars, 5*time.Minute)
	require.Len(t, out, 2)

	first := out[0]
	assert.Equal(t, int64(0), first.Timestamp)
	assert.Equal(t, bars[0].Open, first.Open)
	assert.Equal(t, bars[4].Close, first.Close)
	assert.Equal(t, bars[4].High, first.High)
	assert.Equal(t, bars[0].Low, first.Low)
	assert.Equal(t, 50.0, first.Volume)
	assert.Equal(t, int64(5*60000), out[1].Timestamp)

	assert.Nil(t, aggregateBars(nil, time.Hour))
}

func TestYahooSymbolAndRange(t *testing.T) {
	assert.Equal(t, "EURUSD=X", yahooSymbol("EURUSD"))
	assert.Equal(t, "GBPUSD=X", yahooSymbol("gbp/usd"))
	assert.Equal(t, "EURUSD=X", yahooSymbol("EURUSD=X"))

	assert.Equal(t, "1mo", chartRange(time.Hour, 200, 730*24*time.Hour))
	assert.Equal(t, "1d", chartRange(time.Minute, 200, 7*24*time.Hour))
	assert.Equal(t, "5d", chartRange(time.Minute, 20000, 7*24*time.Hour))
	assert.Equal(t, "1y", chartRange(24*time.Hour, 200, 0))
}

func TestYahooFetcher_FetchBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/EURUSD=X", r.URL.Path)
		assert.Equal(t, "60m", r.URL.Query().Get("interval"))
		w.Write([]byte(`{"chart":{"result":[{"timestamp":[7200,3600,10800],
			"indicators":{"quote":[{
				"open":[1.1010,1.1000,null],
				"high":[1.1020,1.1015,null],
				"low":[1.1005,1.0995,null],
				"close":[1.1012,1.1010,null],
				"volume":[0,0,null]}]}}],"error":null}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	bars, err := f.FetchBars(context.Background(), "EURUSD", "H1", 200)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, int64(3600000), bars[0].Timestamp)
	assert.Equal(t, 1.1012, bars[1].Close)
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	_, err := f.FetchBars(context.Background(), "EURUSD", "H1", 10)
	assert.ErrorContains(t, err, "No data found")
}

func TestFeedFetcher_FallsBackToMinuteBars(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		tf := r.URL.Query().Get("timeframe")
		calls = append(calls, tf+"/"+r.URL.Query().Get("limit"))
		if tf != "M1" {
			http.Error(w, "unsupported timeframe", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(minuteBars(0, 30))
	}))
	defer srv.Close()

	f := NewFeedFetcher(srv.URL, "secret", "")
	bars, err := f.FetchBars(context.Background(), "EURUSD", "M15", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"M15/2", "M1/30"}, calls)
	require.Len(t, bars, 2)
	assert.Equal(t, int64(15*60000), bars[1].Timestamp)
}

func TestFeedFetcher_BothFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewFeedFetcher(srv.URL, "", "").FetchBars(context.Background(), "EURUSD", "H1", 5)
	assert.ErrorContains(t, err, "M1 fallback also failed")
}

func TestMockFetcher_Deterministic(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	m := &MockFetcher{Now: func() time.Time { return now }}

	a, err := m.FetchBars(context.Background(), "EURUSD", "M15", 100)
	require.NoError(t, err)
	b, err := m.FetchBars(context.Background(), "EURUSD", "M15", 50)
	require.NoError(t, err)

	assert.Len(t, a, 100)
	assert.Equal(t, a[50:], b)
	for _, bar := range a {
		assert.LessOrEqual(t, bar.Low, min(bar.Open, bar.Close))
		assert.GreaterOrEqual(t, bar.High, max(bar.Open, bar.Close))
	}
}

func TestCollector_RollingWindow(t *testing.T) {
	m := &MockFetcher{Bars: minuteBars(0, 4)}
	c := NewCollector(m, "EURUSD", "M1", 6)

	bars, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, bars, 4)

	next := minuteBars(2*60000, 4)
	next[0].Close = 1.2
	m.Bars = next
	bars, err = c.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, bars, 6)
	assert.Equal(t, int64(0), bars[0].Timestamp)
	assert.Equal(t, 1.2, bars[2].Close)

	m.Bars = minuteBars(6*60000, 3)
	bars, err = c.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, bars, 6)
	assert.Equal(t, int64(3*60000), bars[0].Timestamp)
	assert.Equal(t, bars, c.Bars())
}

type failingFetcher struct{}

func (failingFetcher) Name() string { return "failing" }
func (failingFetcher) FetchBars(context.Context, string, string, int) ([]model.Bar, error) {
	return nil, assert.AnError
}

func TestCollector_FetchError(t *testing.T) {
	c := NewCollector(failingFetcher{}, "EURUSD", "H1", 0)
	assert.Equal(t, 200, c.Window)
	_, err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}
