package recorder

import "ForexSentinel/internal/model"

// Event identifies the pair and timeframe a recorded row belongs to.
type Event struct {
	Pair      string
	Timeframe string
}

// DivergenceEvent records a divergence seen on the closing bar of a cycle.
type DivergenceEvent struct {
	Event
	BarTime int64
	Summary model.DivergenceSummary
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordSignal(sig *model.TradingSignal) error
	RecordPullback(evt Event, sig *model.PullbackSignal) error
	RecordConfluence(evt Event, sig *model.ConfluenceSignal) error
	RecordDivergence(evt *DivergenceEvent) error
	Close() error
}
