package strategy

import (
	"fmt"

	"ForexSentinel/internal/model"
)

// scorecard accumulates the signed strength and unsigned confidence of one
// composition along with the reasons that produced them.
type scorecard struct {
	strength   float64
	confidence float64
	reasons    []string
}

func (s *scorecard) bullish(reason string, points float64) {
	s.reasons = append(s.reasons, reason)
	s.strength += points
	s.confidence += points * 0.8
}

func (s *scorecard) bearish(reason string, points float64) {
	s.reasons = append(s.reasons, reason)
	s.strength -= points
	s.confidence += points * 0.8
}

// scoreRSI: overbought/oversold dominate the milder 60/40 readings.
func scoreRSI(s *scorecard, rsi float64) {
	switch {
	case rsi >= 70:
		s.bearish("RSI em sobrecompra (>70)", 15)
	case rsi <= 30:
		s.bullish("RSI em sobrevenda (<30)", 15)
	case rsi >= 60:
		s.bullish("RSI bullish (>60)", 8)
	case rsi <= 40:
		s.bearish("RSI bearish (<40)", 8)
	}
}

// scoreMACD scores the MACD sign and a zero cross of the histogram.
func scoreMACD(s *scorecard, macd model.MACDResult) {
	if macd.Current > 0 {
		s.bullish("MACD positivo", 10)
	} else {
		s.bearish("MACD negativo", 10)
	}

	hist := macd.Histogram
	if len(hist) < 2 {
		return
	}
	cur, prev := hist[len(hist)-1], hist[len(hist)-2]
	switch {
	case cur > 0 && prev <= 0:
		s.bullish("MACD cruzamento bullish", 20)
	case cur < 0 && prev >= 0:
		s.bearish("MACD cruzamento bearish", 20)
	}
}

// scoreBollinger scores the close against the current bands.
func scoreBollinger(s *scorecard, price float64, band model.BandValue) {
	switch {
	case price >= band.Upper:
		s.bearish("Preço na banda superior", 12)
	case price <= band.Lower:
		s.bullish("Preço na banda inferior", 12)
	case price > band.Middle:
		s.bullish("Preço acima da média móvel", 5)
	default:
		s.bearish("Preço abaixo da média móvel", 5)
	}
}

// patternPoints maps reliability to points. Unknown reliabilities score 10.
func patternPoints(r model.Reliability) float64 {
	switch r {
	case model.ReliabilityHigh:
		return 25
	case model.ReliabilityMedium:
		return 15
	case model.ReliabilityLow:
		return 8
	}
	return 10
}

// scorePatterns records every pattern; only patterns with a direction move the score.
func scorePatterns(s *scorecard, patterns []model.Pattern) {
	for _, p := range patterns {
		reason := fmt.Sprintf("Padrão: %s", p.Name)
		points := patternPoints(p.Reliability)
		switch {
		case p.Type.Bullish():
			s.bullish(reason, points)
		case p.Type.Bearish():
			s.bearish(reason, points)
		default:
			s.reasons = append(s.reasons, reason)
		}
	}
}

// scoreStochastic applies the zone rule and the crossover rule independently.
func scoreStochastic(s *scorecard, st model.StochasticValue) {
	switch {
	case st.K >= 80 && st.D >= 80:
		s.bearish("Stochastic em sobrecompra", 10)
	case st.K <= 20 && st.D <= 20:
		s.bullish("Stochastic em sobrevenda", 10)
	}

	switch {
	case st.K > st.D && st.K > 50:
		s.bullish("Stochastic cruzamento bullish", 8)
	case st.K < st.D && st.K < 50:
		s.bearish("Stochastic cruzamento bearish", 8)
	}
}

// scoreADX only moves confidence.
func scoreADX(s *scorecard, adx float64) {
	if adx >= 25 {
		s.reasons = append(s.reasons, "Tendência forte (ADX > 25)")
		s.confidence += 15
		return
	}
	s.reasons = append(s.reasons, "Tendência fraca (ADX < 25)")
	s.confidence -= 10
}
