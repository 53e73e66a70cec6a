package calculator

import "ForexSentinel/internal/model"

// rsiLossFloor replaces a zero average loss so that rs stays finite.
const rsiLossFloor = 1e-4

// CalculateRSI computes the Wilder-smoothed RSI over the given period.
// Requires at least period+1 bars; otherwise the series is empty and Current is 50.
func CalculateRSI(bars []model.Bar, period int) model.RSIResult {
	res := model.RSIResult{Values: []float64{}, Current: 50}
	if period <= 0 || len(bars) < period+1 {
		return res
	}

	gains := make([]float64, len(bars)-1)
	losses := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	// Initial average gain/loss over the first `period` changes
	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	res.Values = append(res.Values, rsiValue(avgGain, avgLoss))

	// Wilder smoothing for remaining changes
	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		res.Values = append(res.Values, rsiValue(avgGain, avgLoss))
	}

	res.Current = res.Values[len(res.Values)-1]
	return res
}

func rsiValue(avgGain, avgLoss float64) float64 {
	// A flat window reads 50. Applying the loss floor here would give 0 and
	// report a motionless market as oversold.
	if avgGain == 0 && avgLoss == 0 {
		return 50
	}
	if avgLoss == 0 {
		avgLoss = rsiLossFloor
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
