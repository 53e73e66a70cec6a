package calculator

import (
	"math"

	"ForexSentinel/internal/model"
)

// cciConstant is Lambert's scaling constant.
const cciConstant = 0.015

// CalculateCCI computes the Commodity Channel Index of the typical price.
// A window with zero mean deviation reads 0.
func CalculateCCI(bars []model.Bar, period int) model.SeriesResult {
	res := model.SeriesResult{Values: []float64{}}
	if period <= 0 || len(bars) < period {
		return res
	}

	typical := make([]float64, len(bars))
	for i, b := range bars {
		typical[i] = (b.High + b.Low + b.Close) / 3
	}
	sma := SMAOf(typical, period)

	values := make([]float64, len(sma))
	for i, mean := range sma {
		deviation := 0.0
		for _, tp := range typical[i : i+period] {
			deviation += math.Abs(tp - mean)
		}
		deviation /= float64(period)
		if deviation == 0 {
			continue
		}
		values[i] = (typical[i+period-1] - mean) / (cciConstant * deviation)
	}

	res.Values = values
	res.Current = last(values, 0)
	return res
}
