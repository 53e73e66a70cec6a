package collector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"ForexSentinel/internal/model"
)

// MockFetcher returns deterministic bars for development and testing. Prices
// are a function of the bar timestamp, so overlapping fetches agree.
type MockFetcher struct {
	Base float64
	Now  func() time.Time
	Bars []model.Bar // served as-is when set
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _ string, timeframe string, count int) ([]model.Bar, error) {
	if m.Bars != nil {
		return tail(m.Bars, count), nil
	}
	tf, err := TimeframeDuration(timeframe)
	if err != nil {
		return nil, err
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	base := m.Base
	if base == 0 {
		base = 1.1000
	}
	return generateMockBars(base, now().Truncate(tf), tf, count), nil
}

func mockPrice(base float64, ts int64, tf time.Duration) float64 {
	x := float64(ts / tf.Milliseconds())
	return base * (1 + 0.004*math.Sin(x/9) + 0.0015*math.Sin(x/2.3))
}

func generateMockBars(base float64, end time.Time, tf time.Duration, count int) []model.Bar {
	bars := make([]model.Bar, count)
	step := tf.Milliseconds()
	last := end.UnixMilli()
	for i := 0; i < count; i++ {
		ts := last - int64(count-1-i)*step
		open := mockPrice(base, ts-step, tf)
		c := mockPrice(base, ts, tf)
		wick := base * 0.0004
		bars[i] = model.Bar{
			Timestamp: ts,
			Open:      open,
			High:      math.Max(open, c) + wick,
			Low:       math.Min(open, c) - wick,
			Close:     c,
			Volume:    1000 + float64(ts/step%5)*1000,
		}
	}
	return bars
}

// Collector keeps a rolling window of bars for one symbol and timeframe.
type Collector struct {
	Fetcher   Fetcher
	Symbol    string
	Timeframe string
	Window    int

	mu   sync.RWMutex
	bars []model.Bar
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol, timeframe string, window int) *Collector {
	if window <= 0 {
		window = 200
	}
	return &Collector{Fetcher: fetcher, Symbol: symbol, Timeframe: timeframe, Window: window}
}

// Refresh fetches the latest bars, merges them into the window by timestamp
// (fetched bars replace stored ones) and returns a copy of the window.
func (c *Collector) Refresh(ctx context.Context) ([]model.Bar, error) {
	fetched, err := c.Fetcher.FetchBars(ctx, c.Symbol, c.Timeframe, c.Window)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s bars from %s: %w", c.Symbol, c.Timeframe, c.Fetcher.Name(), err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.bars = mergeBars(c.bars, fetched, c.Window)

	log.Debug().
		Str("component", "collector").
		Str("source", c.Fetcher.Name()).
		Int("fetched", len(fetched)).
		Int("window", len(c.bars)).
		Msg("bars refreshed")

	return append([]model.Bar{}, c.bars...), nil
}

// Bars returns a copy of the current window.
func (c *Collector) Bars() []model.Bar {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Bar{}, c.bars...)
}

func mergeBars(existing, fetched []model.Bar, window int) []model.Bar {
	byTS := make(map[int64]model.Bar, len(existing)+len(fetched))
	for _, b := range existing {
		byTS[b.Timestamp] = b
	}
	for _, b := range fetched {
		byTS[b.Timestamp] = b
	}

	merged := make([]model.Bar, 0, len(byTS))
	for _, b := range byTS {
		merged = append(merged, b)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Timestamp < merged[j].Timestamp })
	return tail(merged, window)
}
