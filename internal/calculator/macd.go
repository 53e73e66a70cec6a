package calculator

import "ForexSentinel/internal/model"

// CalculateMACD computes the MACD line (fast EMA - slow EMA), its signal line
// (EMA of the MACD line) and the histogram (MACD - signal). Returns empty series
// and Current=0 when there are fewer than slowPeriod bars.
func CalculateMACD(bars []model.Bar, fastPeriod, slowPeriod, signalPeriod int) model.MACDResult {
	res := model.MACDResult{MACD: []float64{}, Signal: []float64{}, Histogram: []float64{}}
	if fastPeriod <= 0 || slowPeriod <= 0 || len(bars) < slowPeriod || len(bars) < fastPeriod {
		return res
	}

	closes := model.Closes(bars)
	fast, slow := AlignSuffix(EMAOf(closes, fastPeriod), EMAOf(closes, slowPeriod))

	macd := make([]float64, len(slow))
	for i := range macd {
		macd[i] = fast[i] - slow[i]
	}
	signal := EMAOf(macd, signalPeriod)

	line, sig := AlignSuffix(macd, signal)
	histogram := make([]float64, len(sig))
	for i := range histogram {
		histogram[i] = line[i] - sig[i]
	}

	res.MACD = macd
	res.Signal = signal
	res.Histogram = histogram
	res.Current = last(macd, 0)
	return res
}
