package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ForexSentinel/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchBars returns up to count bars of the given timeframe, oldest first.
	FetchBars(ctx context.Context, symbol, timeframe string, count int) ([]model.Bar, error)
	Name() string
}

var timeframes = map[string]time.Duration{
	"M1":  time.Minute,
	"M5":  5 * time.Minute,
	"M15": 15 * time.Minute,
	"M30": 30 * time.Minute,
	"H1":  time.Hour,
	"H4":  4 * time.Hour,
	"D1":  24 * time.Hour,
}

// TimeframeDuration returns the bar length of a timeframe code such as M15 or H1.
func TimeframeDuration(timeframe string) (time.Duration, error) {
	d, ok := timeframes[strings.ToUpper(timeframe)]
	if !ok {
		return 0, fmt.Errorf("unknown timeframe %q", timeframe)
	}
	return d, nil
}

// aggregateBars folds bars into buckets of length d aligned to the Unix epoch.
// The input must be oldest first.
func aggregateBars(bars []model.Bar, d time.Duration) []model.Bar {
	if len(bars) == 0 {
		return nil
	}
	step := d.Milliseconds()

	var out []model.Bar
	var cur model.Bar
	var bucket int64
	started := false

	for _, b := range bars {
		key := b.Timestamp - b.Timestamp%step
		if !started || key != bucket {
			if started {
				out = append(out, cur)
			}
			cur = model.Bar{Timestamp: key, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
			bucket = key
			started = true
			continue
		}
		cur.High = max(cur.High, b.High)
		cur.Low = min(cur.Low, b.Low)
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	return append(out, cur)
}

func tail(bars []model.Bar, count int) []model.Bar {
	if count > 0 && len(bars) > count {
		return bars[len(bars)-count:]
	}
	return bars
}
