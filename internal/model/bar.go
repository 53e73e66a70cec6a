package model

import "time"

// Bar represents a single OHLCV candlestick. Timestamp is milliseconds since the Unix epoch.
type Bar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Time returns the bar timestamp as a time.Time.
func (b Bar) Time() time.Time { return time.UnixMilli(b.Timestamp) }

// Bullish reports whether the bar closed above its open.
func (b Bar) Bullish() bool { return b.Close > b.Open }

// Bearish reports whether the bar closed below its open.
func (b Bar) Bearish() bool { return b.Close < b.Open }

// Body is the absolute distance between open and close.
func (b Bar) Body() float64 {
	if b.Close > b.Open {
		return b.Close - b.Open
	}
	return b.Open - b.Close
}

// Range is the distance between high and low.
func (b Bar) Range() float64 { return b.High - b.Low }

// UpperShadow is the distance from the top of the body to the high.
func (b Bar) UpperShadow() float64 { return b.High - max(b.Open, b.Close) }

// LowerShadow is the distance from the bottom of the body to the low.
func (b Bar) LowerShadow() float64 { return min(b.Open, b.Close) - b.Low }

// Closes extracts the close prices of a bar series.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the most recent bar and false when the series is empty.
func Last(bars []Bar) (Bar, bool) {
	if len(bars) == 0 {
		return Bar{}, false
	}
	return bars[len(bars)-1], true
}
