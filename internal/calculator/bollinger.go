package calculator

import (
	"math"

	"ForexSentinel/internal/model"
)

// CalculateBollinger computes Bollinger Bands: middle = SMA(period), bands at
// middle ± mult × population standard deviation of the same window.
func CalculateBollinger(bars []model.Bar, period int, mult float64) model.BollingerResult {
	res := model.BollingerResult{Upper: []float64{}, Middle: []float64{}, Lower: []float64{}}
	closes := model.Closes(bars)
	middle := SMAOf(closes, period)
	if len(middle) == 0 {
		return res
	}

	upper := make([]float64, len(middle))
	lower := make([]float64, len(middle))
	for i, mean := range middle {
		sd := populationStdDev(closes[i:i+period], mean)
		upper[i] = mean + sd*mult
		lower[i] = mean - sd*mult
	}

	res.Upper = upper
	res.Middle = middle
	res.Lower = lower
	res.Current = model.BandValue{
		Upper:  upper[len(upper)-1],
		Middle: middle[len(middle)-1],
		Lower:  lower[len(lower)-1],
	}
	return res
}

// BandPosition classifies price against the current bands.
func BandPosition(price float64, band model.BandValue) string {
	switch {
	case price >= band.Upper:
		return model.BandUpper
	case price <= band.Lower:
		return model.BandLower
	case price > band.Middle:
		return model.BandUpperMiddle
	default:
		return model.BandLowerMiddle
	}
}

func populationStdDev(window []float64, mean float64) float64 {
	if len(window) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range window {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(window)))
}
