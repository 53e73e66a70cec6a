// Package pattern recognizes one-, two- and three-bar candlestick formations
// on the tail of a bar series. Every detector is a pure function of its bars.
package pattern

import "ForexSentinel/internal/model"

type (
	singleDetector func(model.Bar) *model.Pattern
	doubleDetector func(prev, cur model.Bar) *model.Pattern
	tripleDetector func(c1, c2, c3 model.Bar) *model.Pattern
)

var (
	singleDetectors = []singleDetector{DetectDoji, DetectHammer, DetectShootingStar, DetectSpinningTop, DetectMarubozu}
	doubleDetectors = []doubleDetector{DetectEngulfing, DetectHarami, DetectPiercingLine, DetectDarkCloudCover}
	tripleDetectors = []tripleDetector{DetectThreeWhiteSoldiers, DetectThreeBlackCrows}
)

// Detect returns every formation matched by the last one, two and three bars,
// in single, double, triple order. The result is empty (never nil) for an empty series.
func Detect(bars []model.Bar) []model.Pattern {
	patterns := []model.Pattern{}
	n := len(bars)
	if n < 1 {
		return patterns
	}

	cur := bars[n-1]
	for _, d := range singleDetectors {
		if p := d(cur); p != nil {
			patterns = append(patterns, *p)
		}
	}

	if n >= 2 {
		prev := bars[n-2]
		for _, d := range doubleDetectors {
			if p := d(prev, cur); p != nil {
				patterns = append(patterns, *p)
			}
		}
	}

	if n >= 3 {
		c1, c2 := bars[n-3], bars[n-2]
		for _, d := range tripleDetectors {
			if p := d(c1, c2, cur); p != nil {
				patterns = append(patterns, *p)
			}
		}
	}

	return patterns
}

// Strength scores a pattern 0-100 from its reliability, the bar volume and the bar range.
func Strength(p model.Pattern, b model.Bar) float64 {
	strength := 50.0

	switch p.Reliability {
	case model.ReliabilityHigh:
		strength += 20
	case model.ReliabilityMedium:
		strength += 10
	}

	switch {
	case b.Volume > 5000:
		strength += 15
	case b.Volume > 2000:
		strength += 10
	case b.Volume > 1000:
		strength += 5
	}

	switch rng := b.Range(); {
	case rng > 0.002:
		strength += 10
	case rng > 0.001:
		strength += 5
	}

	return max(0, min(100, strength))
}
