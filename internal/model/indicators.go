package model

// RSIResult holds the RSI series aligned to the tail of the input bars.
type RSIResult struct {
	Values  []float64 `json:"values"`
	Current float64   `json:"current"`
}

// MACDResult holds the MACD line, its signal line and the histogram.
// Each series is aligned to the tail of the input bars.
type MACDResult struct {
	MACD      []float64 `json:"macd"`
	Signal    []float64 `json:"signal"`
	Histogram []float64 `json:"histogram"`
	Current   float64   `json:"current"`
}

// BandValue is one point of the Bollinger envelope.
type BandValue struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

type BollingerResult struct {
	Upper   []float64 `json:"upper"`
	Middle  []float64 `json:"middle"`
	Lower   []float64 `json:"lower"`
	Current BandValue `json:"current"`
}

type StochasticValue struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

type StochasticResult struct {
	K       []float64       `json:"k"`
	D       []float64       `json:"d"`
	Current StochasticValue `json:"current"`
}

// SeriesResult is used by single-line oscillators (Williams %R, CCI).
type SeriesResult struct {
	Values  []float64 `json:"values"`
	Current float64   `json:"current"`
}

type ADXResult struct {
	ADX     []float64 `json:"adx"`
	DIPlus  []float64 `json:"di_plus"`
	DIMinus []float64 `json:"di_minus"`
	Current float64   `json:"current"`
}

// IndicatorSnapshot is the full set of indicators computed once per analysis cycle.
type IndicatorSnapshot struct {
	RSI        RSIResult        `json:"rsi"`
	MACD       MACDResult       `json:"macd"`
	Bollinger  BollingerResult  `json:"bollinger"`
	Stochastic StochasticResult `json:"stochastic"`
	WilliamsR  SeriesResult     `json:"williams_r"`
	ADX        ADXResult        `json:"adx"`
	CCI        SeriesResult     `json:"cci"`
	ATR        float64          `json:"atr"`
}

// Trend is the coarse market direction voted from the oscillators.
type Trend struct {
	Direction string `json:"direction"` // "bullish", "bearish" or "neutral"
	Strength  string `json:"strength"`  // "strong" or "weak"
}

// Levels are the simple support/resistance extremes of the recent bars.
type Levels struct {
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}
