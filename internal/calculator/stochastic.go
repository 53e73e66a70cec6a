package calculator

import "ForexSentinel/internal/model"

// CalculateStochastic computes %K over kPeriod bars and %D as the SMA(dPeriod) of %K.
// A flat window (highest high == lowest low) reads 50.
func CalculateStochastic(bars []model.Bar, kPeriod, dPeriod int) model.StochasticResult {
	res := model.StochasticResult{
		K:       []float64{},
		D:       []float64{},
		Current: model.StochasticValue{K: 50, D: 50},
	}
	if kPeriod <= 0 || len(bars) < kPeriod {
		return res
	}

	k := make([]float64, 0, len(bars)-kPeriod+1)
	for i := kPeriod - 1; i < len(bars); i++ {
		hh, ll := highestLowest(bars[i-kPeriod+1 : i+1])
		rng := hh - ll
		if rng <= 0 {
			k = append(k, 50)
			continue
		}
		k = append(k, clamp((bars[i].Close-ll)/rng*100, 0, 100))
	}
	d := SMAOf(k, dPeriod)

	res.K = k
	res.D = d
	res.Current = model.StochasticValue{K: last(k, 50), D: last(d, 50)}
	return res
}

// CalculateWilliamsR computes Williams %R in [-100, 0]. A flat window reads -50.
func CalculateWilliamsR(bars []model.Bar, period int) model.SeriesResult {
	res := model.SeriesResult{Values: []float64{}, Current: -50}
	if period <= 0 || len(bars) < period {
		return res
	}

	values := make([]float64, 0, len(bars)-period+1)
	for i := period - 1; i < len(bars); i++ {
		hh, ll := highestLowest(bars[i-period+1 : i+1])
		rng := hh - ll
		if rng <= 0 {
			values = append(values, -50)
			continue
		}
		values = append(values, clamp((hh-bars[i].Close)/rng*-100, -100, 0))
	}

	res.Values = values
	res.Current = last(values, -50)
	return res
}
