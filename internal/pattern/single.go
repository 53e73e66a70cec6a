package pattern

import "ForexSentinel/internal/model"

// dojiThreshold is the maximum body/range ratio of a doji.
const dojiThreshold = 0.1

func isDoji(b model.Bar) bool {
	rng := b.Range()
	return rng > 0 && b.Body()/rng <= dojiThreshold
}

// DetectDoji matches a bar whose body is at most 10% of its range.
func DetectDoji(b model.Bar) *model.Pattern {
	if !isDoji(b) {
		return nil
	}
	return &model.Pattern{
		Name:        "Doji",
		Type:        model.PatternReversal,
		Reliability: model.ReliabilityMedium,
		Description: "Indecisão do mercado, possível reversão",
	}
}

func hammerShape(b model.Bar) bool {
	body, rng := b.Body(), b.Range()
	if rng <= 0 {
		return false
	}
	return b.LowerShadow() >= body*2 && b.UpperShadow() <= body*0.1 && body/rng >= 0.1
}

func shootingStarShape(b model.Bar) bool {
	body, rng := b.Body(), b.Range()
	if rng <= 0 {
		return false
	}
	return b.UpperShadow() >= body*2 && b.LowerShadow() <= body*0.1 && body/rng >= 0.1
}

// DetectHammer matches a long lower shadow under a small body near the high.
func DetectHammer(b model.Bar) *model.Pattern {
	if !hammerShape(b) {
		return nil
	}
	return &model.Pattern{
		Name:        "Hammer",
		Type:        model.PatternBullishReversal,
		Reliability: model.ReliabilityHigh,
		Description: "Forte sinal de reversão de alta",
	}
}

// DetectHangingMan relabels the hammer shape as bearish. The prior trend is not
// evaluated, so it matches exactly when DetectHammer does; it is therefore left
// out of Detect.
func DetectHangingMan(b model.Bar) *model.Pattern {
	if !hammerShape(b) {
		return nil
	}
	return &model.Pattern{
		Name:        "Hanging Man",
		Type:        model.PatternBearishReversal,
		Reliability: model.ReliabilityHigh,
		Description: "Forte sinal de reversão de baixa",
	}
}

// DetectShootingStar matches a long upper shadow over a small body near the low.
func DetectShootingStar(b model.Bar) *model.Pattern {
	if !shootingStarShape(b) {
		return nil
	}
	return &model.Pattern{
		Name:        "Shooting Star",
		Type:        model.PatternBearishReversal,
		Reliability: model.ReliabilityHigh,
		Description: "Sinal de reversão de baixa",
	}
}

// DetectInvertedHammer relabels the shooting star shape as bullish. Like
// DetectHangingMan it ignores the prior trend and is left out of Detect.
func DetectInvertedHammer(b model.Bar) *model.Pattern {
	if !shootingStarShape(b) {
		return nil
	}
	return &model.Pattern{
		Name:        "Inverted Hammer",
		Type:        model.PatternBullishReversal,
		Reliability: model.ReliabilityMedium,
		Description: "Possível reversão de alta",
	}
}

// DetectSpinningTop matches a small body with shadows at least as long as the body on both sides.
func DetectSpinningTop(b model.Bar) *model.Pattern {
	body, rng := b.Body(), b.Range()
	if rng <= 0 {
		return nil
	}
	if body/rng <= 0.3 && b.UpperShadow() >= body && b.LowerShadow() >= body {
		return &model.Pattern{
			Name:        "Spinning Top",
			Type:        model.PatternIndecision,
			Reliability: model.ReliabilityLow,
			Description: "Indecisão do mercado",
		}
	}
	return nil
}

// DetectMarubozu matches a bar with both shadows at most 1% of its range.
func DetectMarubozu(b model.Bar) *model.Pattern {
	rng := b.Range()
	if rng <= 0 {
		return nil
	}
	if b.UpperShadow()/rng > 0.01 || b.LowerShadow()/rng > 0.01 {
		return nil
	}
	t := model.PatternBearishContinuation
	if b.Bullish() {
		t = model.PatternBullishContinuation
	}
	return &model.Pattern{
		Name:        "Marubozu",
		Type:        t,
		Reliability: model.ReliabilityHigh,
		Description: "Forte continuação da tendência",
	}
}
