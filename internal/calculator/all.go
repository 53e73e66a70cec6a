package calculator

import "ForexSentinel/internal/model"

// Params holds the indicator periods used by CalculateAllWith.
type Params struct {
	RSIPeriod       int     `yaml:"rsi_period"`
	MACDFast        int     `yaml:"macd_fast"`
	MACDSlow        int     `yaml:"macd_slow"`
	MACDSignal      int     `yaml:"macd_signal"`
	BollingerPeriod int     `yaml:"bollinger_period"`
	BollingerStdDev float64 `yaml:"bollinger_std_dev"`
	StochasticK     int     `yaml:"stochastic_k"`
	StochasticD     int     `yaml:"stochastic_d"`
	WilliamsPeriod  int     `yaml:"williams_period"`
	ADXPeriod       int     `yaml:"adx_period"`
	CCIPeriod       int     `yaml:"cci_period"`
	ATRPeriod       int     `yaml:"atr_period"`
}

// DefaultParams returns the standard indicator periods.
func DefaultParams() Params {
	return Params{
		RSIPeriod:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BollingerPeriod: 20,
		BollingerStdDev: 2,
		StochasticK:     14,
		StochasticD:     3,
		WilliamsPeriod:  14,
		ADXPeriod:       14,
		CCIPeriod:       20,
		ATRPeriod:       14,
	}
}

// WithDefaults fills every non-positive field from DefaultParams.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	fill := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&p.RSIPeriod, d.RSIPeriod)
	fill(&p.MACDFast, d.MACDFast)
	fill(&p.MACDSlow, d.MACDSlow)
	fill(&p.MACDSignal, d.MACDSignal)
	fill(&p.BollingerPeriod, d.BollingerPeriod)
	fill(&p.StochasticK, d.StochasticK)
	fill(&p.StochasticD, d.StochasticD)
	fill(&p.WilliamsPeriod, d.WilliamsPeriod)
	fill(&p.ADXPeriod, d.ADXPeriod)
	fill(&p.CCIPeriod, d.CCIPeriod)
	fill(&p.ATRPeriod, d.ATRPeriod)
	if p.BollingerStdDev <= 0 {
		p.BollingerStdDev = d.BollingerStdDev
	}
	return p
}

// CalculateAll computes every indicator with the default periods.
func CalculateAll(bars []model.Bar) model.IndicatorSnapshot {
	return CalculateAllWith(bars, DefaultParams())
}

// CalculateAllWith computes every indicator with the given periods.
func CalculateAllWith(bars []model.Bar, p Params) model.IndicatorSnapshot {
	return model.IndicatorSnapshot{
		RSI:        CalculateRSI(bars, p.RSIPeriod),
		MACD:       CalculateMACD(bars, p.MACDFast, p.MACDSlow, p.MACDSignal),
		Bollinger:  CalculateBollinger(bars, p.BollingerPeriod, p.BollingerStdDev),
		Stochastic: CalculateStochastic(bars, p.StochasticK, p.StochasticD),
		WilliamsR:  CalculateWilliamsR(bars, p.WilliamsPeriod),
		ADX:        CalculateADX(bars, p.ADXPeriod),
		CCI:        CalculateCCI(bars, p.CCIPeriod),
		ATR:        CalculateATR(bars, p.ATRPeriod),
	}
}

// DetermineTrend votes RSI, MACD and %K for a direction; ADX above 25 marks it strong.
func DetermineTrend(s model.IndicatorSnapshot) model.Trend {
	bullish, bearish := 0, 0
	vote := func(up bool) {
		if up {
			bullish++
		} else {
			bearish++
		}
	}
	vote(s.RSI.Current > 50)
	vote(s.MACD.Current > 0)
	vote(s.Stochastic.Current.K > 50)

	strength := "weak"
	if s.ADX.Current > 25 {
		strength = "strong"
	}

	switch {
	case bullish > bearish:
		return model.Trend{Direction: "bullish", Strength: strength}
	case bearish > bullish:
		return model.Trend{Direction: "bearish", Strength: strength}
	default:
		return model.Trend{Direction: "neutral", Strength: "weak"}
	}
}
