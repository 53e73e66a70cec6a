package calculator

import (
	"math"

	"ForexSentinel/internal/model"
)

// CalculateADX computes DI+, DI- and the ADX using simple averages of true range
// and directional movement. Current defaults to 25 until enough DX values exist.
func CalculateADX(bars []model.Bar, period int) model.ADXResult {
	res := model.ADXResult{ADX: []float64{}, DIPlus: []float64{}, DIMinus: []float64{}, Current: 25}
	if period <= 0 || len(bars) < period+1 {
		return res
	}

	n := len(bars) - 1
	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < len(bars); i++ {
		cur, prev := bars[i], bars[i-1]
		tr[i-1] = trueRange(cur, prev)

		up := cur.High - prev.High
		down := prev.Low - cur.Low
		if up > down && up > 0 {
			plusDM[i-1] = up
		}
		if down > up && down > 0 {
			minusDM[i-1] = down
		}
	}

	sTR := SMAOf(tr, period)
	sPlus := SMAOf(plusDM, period)
	sMinus := SMAOf(minusDM, period)

	diPlus := make([]float64, len(sTR))
	diMinus := make([]float64, len(sTR))
	dx := make([]float64, len(sTR))
	for i := range sTR {
		if sTR[i] > 0 {
			diPlus[i] = sPlus[i] / sTR[i] * 100
			diMinus[i] = sMinus[i] / sTR[i] * 100
		}
		if sum := diPlus[i] + diMinus[i]; sum != 0 {
			dx[i] = math.Abs(diPlus[i]-diMinus[i]) / sum * 100
		}
	}
	adx := SMAOf(dx, period)

	res.ADX = adx
	res.DIPlus = diPlus
	res.DIMinus = diMinus
	res.Current = last(adx, 25)
	return res
}
