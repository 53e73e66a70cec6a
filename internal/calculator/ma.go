package calculator

import "ForexSentinel/internal/model"

// CalculateSMA computes the simple moving average of closes over the given period.
// The result has len(bars)-period+1 values, or none when there is not enough data.
func CalculateSMA(bars []model.Bar, period int) []float64 {
	return SMAOf(model.Closes(bars), period)
}

// CalculateEMA computes the exponential moving average of closes, seeded with the
// SMA of the first period closes. The result has len(bars)-period+1 values.
func CalculateEMA(bars []model.Bar, period int) []float64 {
	return EMAOf(model.Closes(bars), period)
}

// SMAOf is CalculateSMA over an arbitrary value series.
func SMAOf(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return []float64{}
	}
	out := make([]float64, 0, len(values)-period+1)
	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		for _, v := range values[i-period+1 : i+1] {
			sum += v
		}
		out = append(out, sum/float64(period))
	}
	return out
}

// EMAOf is CalculateEMA over an arbitrary value series.
func EMAOf(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return []float64{}
	}
	k := 2.0 / float64(period+1)
	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	out := make([]float64, 0, len(values)-period+1)
	out = append(out, seed/float64(period))
	for i := period; i < len(values); i++ {
		prev := out[len(out)-1]
		out = append(out, values[i]*k+prev*(1-k))
	}
	return out
}
