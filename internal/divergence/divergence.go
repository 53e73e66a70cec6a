// Package divergence finds disagreements between RSI pivots and price over a
// short trailing window.
package divergence

import (
	"math"

	"ForexSentinel/internal/calculator"
	"ForexSentinel/internal/model"
)

// hiddenStrength is the fixed weight given to continuation divergences.
const hiddenStrength = 2.5

// pivotWing is the number of neighbours on each side a pivot must beat.
const pivotWing = 2

type Config struct {
	Lookback    int     `yaml:"lookback"`
	MinStrength float64 `yaml:"min_strength"`
}

func DefaultConfig() Config {
	return Config{Lookback: 15, MinStrength: 2.0}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Lookback <= 0 {
		c.Lookback = d.Lookback
	}
	if c.MinStrength <= 0 {
		c.MinStrength = d.MinStrength
	}
	return c
}

// Detect compares the two most recent RSI pivot bottoms and tops inside the
// lookback window. rsi and closes are aligned on their tails first. Regular
// divergences win over hidden ones; among regular candidates the stronger one
// is returned. Nil means no divergence.
func Detect(rsi, closes []float64, cfg Config) *model.Divergence {
	cfg = cfg.WithDefaults()
	rsi, closes = calculator.AlignSuffix(rsi, closes)
	if len(rsi) > cfg.Lookback {
		rsi = rsi[len(rsi)-cfg.Lookback:]
		closes = closes[len(closes)-cfg.Lookback:]
	}
	if len(rsi) < 2*pivotWing+1 {
		return nil
	}

	var regular, hidden []candidate
	if c, ok := fromBottoms(rsi, closes, cfg); ok {
		if c.div.Kind.Regular() {
			regular = append(regular, c)
		} else {
			hidden = append(hidden, c)
		}
	}
	if c, ok := fromTops(rsi, closes, cfg); ok {
		if c.div.Kind.Regular() {
			regular = append(regular, c)
		} else {
			hidden = append(hidden, c)
		}
	}

	if best, ok := pick(regular, func(a, b candidate) bool { return a.div.Strength > b.div.Strength }); ok {
		return &best.div
	}
	if best, ok := pick(hidden, func(a, b candidate) bool { return a.at > b.at }); ok {
		return &best.div
	}
	return nil
}

// Summary wraps Detect into the display record.
func Summary(rsi, closes []float64, cfg Config) model.DivergenceSummary {
	d := Detect(rsi, closes, cfg)
	if d == nil {
		return model.DivergenceSummary{Description: "Nenhuma divergência"}
	}
	return model.DivergenceSummary{
		HasDivergence: true,
		Kind:          d.Kind,
		Signal:        d.Signal,
		Strength:      d.Strength,
		Confidence:    d.Confidence,
		Description:   Describe(d.Kind),
	}
}

// ConfidenceTier maps a divergence strength onto its tier name.
func ConfidenceTier(strength float64) string {
	switch {
	case strength >= 4.0:
		return "very_high"
	case strength >= 3.0:
		return "high"
	case strength >= 2.0:
		return "medium"
	default:
		return "low"
	}
}

func Describe(kind model.DivergenceKind) string {
	switch kind {
	case model.BullishRegular:
		return "Divergência de alta regular"
	case model.BearishRegular:
		return "Divergência de baixa regular"
	case model.BullishHidden:
		return "Divergência de alta oculta"
	case model.BearishHidden:
		return "Divergência de baixa oculta"
	}
	return "Nenhuma divergência"
}

type candidate struct {
	div model.Divergence
	at  int // index of the most recent pivot
}

func pick(cs []candidate, better func(a, b candidate) bool) (candidate, bool) {
	if len(cs) == 0 {
		return candidate{}, false
	}
	best := cs[0]
	for _, c := range cs[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best, true
}

func fromBottoms(rsi, closes []float64, cfg Config) (candidate, bool) {
	bottoms := pivots(rsi, func(v, n float64) bool { return v < n }, func(v float64) bool { return v < 50 })
	if len(bottoms) < 2 {
		return candidate{}, false
	}
	prev, cur := bottoms[len(bottoms)-2], bottoms[len(bottoms)-1]
	dPrice, dRSI := closes[cur]-closes[prev], rsi[cur]-rsi[prev]

	switch {
	case dPrice < 0 && dRSI > 0:
		s := math.Abs(dRSI / dPrice)
		if s < cfg.MinStrength {
			return candidate{}, false
		}
		return newCandidate(model.BullishRegular, model.SignalBuy, s, cur), true
	case dPrice > 0 && dRSI < 0:
		return newCandidate(model.BullishHidden, model.SignalBuy, hiddenStrength, cur), true
	}
	return candidate{}, false
}

func fromTops(rsi, closes []float64, cfg Config) (candidate, bool) {
	tops := pivots(rsi, func(v, n float64) bool { return v > n }, func(v float64) bool { return v > 50 })
	if len(tops) < 2 {
		return candidate{}, false
	}
	prev, cur := tops[len(tops)-2], tops[len(tops)-1]
	dPrice, dRSI := closes[cur]-closes[prev], rsi[cur]-rsi[prev]

	switch {
	case dPrice > 0 && dRSI < 0:
		s := math.Abs(dRSI / dPrice)
		if s < cfg.MinStrength {
			return candidate{}, false
		}
		return newCandidate(model.BearishRegular, model.SignalSell, s, cur), true
	case dPrice < 0 && dRSI > 0:
		return newCandidate(model.BearishHidden, model.SignalSell, hiddenStrength, cur), true
	}
	return candidate{}, false
}

func newCandidate(kind model.DivergenceKind, signal model.SignalType, strength float64, at int) candidate {
	return candidate{
		div: model.Divergence{
			Kind:       kind,
			Strength:   strength,
			Confidence: ConfidenceTier(strength),
			Signal:     signal,
		},
		at: at,
	}
}

// pivots returns the indices whose value beats pivotWing neighbours on both
// sides and passes the zone filter.
func pivots(values []float64, beats func(v, neighbour float64) bool, zone func(float64) bool) []int {
	var idx []int
	for i := pivotWing; i < len(values)-pivotWing; i++ {
		v := values[i]
		if !zone(v) {
			continue
		}
		ok := true
		for j := 1; j <= pivotWing; j++ {
			if !beats(v, values[i-j]) || !beats(v, values[i+j]) {
				ok = false
				break
			}
		}
		if ok {
			idx = append(idx, i)
		}
	}
	return idx
}
