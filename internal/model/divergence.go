package model

type DivergenceKind string

const (
	BullishRegular DivergenceKind = "bullish_regular"
	BearishRegular DivergenceKind = "bearish_regular"
	BullishHidden  DivergenceKind = "bullish_hidden"
	BearishHidden  DivergenceKind = "bearish_hidden"
)

// Regular reports whether the kind is a reversal (regular) divergence.
func (k DivergenceKind) Regular() bool {
	return k == BullishRegular || k == BearishRegular
}

// Divergence is a single RSI/price pivot disagreement.
type Divergence struct {
	Kind       DivergenceKind `json:"kind"`
	Strength   float64        `json:"strength"`
	Confidence string         `json:"confidence"` // very_high, high, medium, low
	Signal     SignalType     `json:"signal"`
}

// DivergenceSummary is what callers display for the current bar window.
type DivergenceSummary struct {
	HasDivergence bool           `json:"has_divergence"`
	Kind          DivergenceKind `json:"kind,omitempty"`
	Signal        SignalType     `json:"signal,omitempty"`
	Strength      float64        `json:"strength"`
	Confidence    string         `json:"confidence,omitempty"`
	Description   string         `json:"description"`
}
