package model

// PullbackLevel is a broken price waiting to be retested. Owned by a single breakout engine.
type PullbackLevel struct {
	ID           string  `json:"id"`
	Price        float64 `json:"price"`
	Direction    int     `json:"direction"` // +1 long, -1 short
	CreatedAt    int64   `json:"created_at"`
	ATR          float64 `json:"atr"`
	BreakoutSize float64 `json:"breakout_size"`
}

// PullbackSignal is emitted when a level is retested by an agreeing candle.
type PullbackSignal struct {
	Type       SignalType    `json:"type"`
	Price      float64       `json:"price"`
	Time       int64         `json:"time"`
	ArrowPrice float64       `json:"arrow_price"`
	Confidence float64       `json:"confidence"`
	Level      PullbackLevel `json:"level"`
}

// PullbackStats summarizes the signals an engine has emitted since its last reset.
type PullbackStats struct {
	TotalSignals      int     `json:"total_signals"`
	BuySignals        int     `json:"buy_signals"`
	SellSignals       int     `json:"sell_signals"`
	ActiveLevels      int     `json:"active_levels"`
	AverageConfidence float64 `json:"average_confidence"`
	AverageConfirmed  float64 `json:"average_confirmed,omitempty"`
}

// ConfluenceChecks records which of the four pullback checks confirmed.
type ConfluenceChecks struct {
	EMA       bool `json:"ema"`
	Fibonacci bool `json:"fibonacci"`
	RSICandle bool `json:"rsi_candle"`
	Bollinger bool `json:"bollinger"`
}

// Count returns the number of confirmed checks.
func (c ConfluenceChecks) Count() int {
	n := 0
	for _, ok := range []bool{c.EMA, c.Fibonacci, c.RSICandle, c.Bollinger} {
		if ok {
			n++
		}
	}
	return n
}

// ConfluenceSignal is emitted by the multi-factor pullback engine.
type ConfluenceSignal struct {
	Type       SignalType       `json:"type"`
	Price      float64          `json:"price"`
	Time       int64            `json:"time"`
	Confirmed  int              `json:"confirmed"`
	Checks     ConfluenceChecks `json:"checks"`
	Confidence float64          `json:"confidence"`
	Bar        Bar              `json:"bar"`
}
