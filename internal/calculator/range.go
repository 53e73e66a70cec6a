package calculator

import (
	"math"

	"ForexSentinel/internal/model"
)

// CalculateATR returns the mean of the last `period` true ranges.
// Returns 0 when fewer than period+1 bars are available.
func CalculateATR(bars []model.Bar, period int) float64 {
	if period <= 0 || len(bars) < period+1 {
		return 0
	}
	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		sum += trueRange(bars[i], bars[i-1])
	}
	return sum / float64(period)
}

// SupportResistance scans the most recent `lookback` bars and returns the lowest
// low as support and the highest high as resistance.
func SupportResistance(bars []model.Bar, lookback int) model.Levels {
	if len(bars) == 0 || lookback <= 0 {
		return model.Levels{}
	}
	start := len(bars) - lookback
	if start < 0 {
		start = 0
	}
	high, low := highestLowest(bars[start:])
	return model.Levels{Support: low, Resistance: high}
}

// CandleBodyPercent returns the body as a percentage of the bar range (0 for a flat bar).
func CandleBodyPercent(b model.Bar) float64 {
	rng := b.Range()
	if rng <= 0 {
		return 0
	}
	return b.Body() / rng * 100
}

func trueRange(cur, prev model.Bar) float64 {
	return math.Max(cur.High-cur.Low, math.Max(math.Abs(cur.High-prev.Close), math.Abs(cur.Low-prev.Close)))
}

func highestLowest(bars []model.Bar) (high, low float64) {
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low
}
