package model

// PatternType combines the category with its directional qualifier.
type PatternType string

const (
	PatternBullishReversal     PatternType = "bullish_reversal"
	PatternBearishReversal     PatternType = "bearish_reversal"
	PatternBullishContinuation PatternType = "bullish_continuation"
	PatternBearishContinuation PatternType = "bearish_continuation"
	PatternIndecision          PatternType = "indecision"
	PatternReversal            PatternType = "reversal"
)

// Bullish reports whether the pattern carries a bullish qualifier.
func (t PatternType) Bullish() bool {
	return t == PatternBullishReversal || t == PatternBullishContinuation
}

// Bearish reports whether the pattern carries a bearish qualifier.
func (t PatternType) Bearish() bool {
	return t == PatternBearishReversal || t == PatternBearishContinuation
}

type Reliability string

const (
	ReliabilityLow    Reliability = "low"
	ReliabilityMedium Reliability = "medium"
	ReliabilityHigh   Reliability = "high"
)

// Pattern is a recognized candlestick formation on the tail of a bar series.
type Pattern struct {
	Name        string      `json:"name"`
	Type        PatternType `json:"type"`
	Reliability Reliability `json:"reliability"`
	Description string      `json:"description"`
}
