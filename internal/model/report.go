package model

// AnalysisReport is everything one analysis cycle produced for a pair and timeframe.
type AnalysisReport struct {
	Pair       string            `json:"pair"`
	Timeframe  string            `json:"timeframe"`
	Timestamp  int64             `json:"timestamp"`
	Price      float64           `json:"price"`
	Bars       int               `json:"bars"`
	Indicators IndicatorSnapshot `json:"indicators"`
	Trend      Trend             `json:"trend"`
	Levels     Levels            `json:"levels"`
	Patterns   []Pattern         `json:"patterns"`
	Divergence DivergenceSummary `json:"divergence"`
	Pullbacks  []PullbackSignal  `json:"pullbacks"`
	Active     []PullbackLevel   `json:"active_levels"`
	Confluence *ConfluenceSignal `json:"confluence,omitempty"`
	Signal     *TradingSignal    `json:"signal,omitempty"`
	Alert      *Alert            `json:"alert,omitempty"`
}
