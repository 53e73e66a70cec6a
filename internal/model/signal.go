package model

// SignalType is the directional call of a signal.
type SignalType string

const (
	SignalBuy     SignalType = "buy"
	SignalSell    SignalType = "sell"
	SignalNeutral SignalType = "neutral"
)

// Bollinger band positions reported in the technical snapshot.
const (
	BandUpper       = "upper"
	BandLower       = "lower"
	BandUpperMiddle = "upper_middle"
	BandLowerMiddle = "lower_middle"
)

// TechnicalSnapshot is the subset of indicator readings stored with a signal.
type TechnicalSnapshot struct {
	RSI               float64   `json:"rsi"`
	MACD              float64   `json:"macd"`
	BollingerPosition string    `json:"bollinger_position"`
	Patterns          []Pattern `json:"patterns"`
}

// TradingSignal is the composite output of the signal composer. It is never
// mutated after it has been produced. BarTime is the open time of the scored
// bar and Timestamp the wall clock of the scoring.
type TradingSignal struct {
	ID         string            `json:"id"`
	Timestamp  int64             `json:"timestamp"`
	BarTime    int64             `json:"bar_time"`
	Pair       string            `json:"pair"`
	Timeframe  string            `json:"timeframe"`
	Price      float64           `json:"price"`
	Type       SignalType        `json:"type"`
	Strength   float64           `json:"strength"`
	Confidence float64           `json:"confidence"`
	Reasons    []string          `json:"reasons"`
	Technical  TechnicalSnapshot `json:"technical_analysis"`
}

// Alert is an alert-worthy event handed to the notification layer.
type Alert struct {
	Pair       string     `json:"pair"`
	Type       SignalType `json:"type"`
	Strength   float64    `json:"strength"`
	Confidence float64    `json:"confidence"`
	Reasons    []string   `json:"reasons"`
	Message    string     `json:"message"`
}

// SignalStats summarizes the retained signal history.
type SignalStats struct {
	Total               int     `json:"total"`
	Buy                 int     `json:"buy"`
	Sell                int     `json:"sell"`
	Neutral             int     `json:"neutral"`
	AvgStrength         float64 `json:"avg_strength"`
	AvgConfidence       float64 `json:"avg_confidence"`
	HighConfidenceRatio float64 `json:"high_confidence_ratio"`
}
